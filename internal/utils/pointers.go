// Package utils holds small helpers for optional JSON fields, which the API
// models as pointers.
package utils

// Value dereferences v, giving the zero value for nil.
func Value[T any](v *T) T {
	var zero T
	if v == nil {
		return zero
	}
	return *v
}

// Ptr returns a pointer to a copy of v.
func Ptr[T any](v T) *T {
	return &v
}

// NonEmpty is Ptr for strings that treats "" as absent.
func NonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
