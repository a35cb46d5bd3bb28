package users

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// User is the CRM user as served by /users/me.
type User struct {
	MongoID    string `json:"_id,omitempty"`        // Identifier as issued by the API
	ID         string `json:"id,omitempty"`         // Identifier used by fixtures
	FirstName  string `json:"firstname,omitempty"`  // First name of the user
	LastName   string `json:"lastname,omitempty"`   // Last name of the user
	Name       string `json:"name,omitempty"`       // Display name, fixtures only
	Email      string `json:"email,omitempty"`      // Login email
	Avatar     string `json:"avatar,omitempty"`     // Avatar URL
	Role       string `json:"role,omitempty"`       // e.g. "admin", "Sales Manager"
	Phone      string `json:"phone,omitempty"`      // Optional contact number
	JobTitle   string `json:"job_title,omitempty"`  // Optional job title
	Company    string `json:"company,omitempty"`    // Optional company name
	Department string `json:"department,omitempty"` // Optional department
}

// Identifier returns whichever of _id or id is set.
func (u User) Identifier() string {
	if u.MongoID != "" {
		return u.MongoID
	}
	return u.ID
}

// DisplayName prefers "firstname lastname" and falls back to name, then email.
func (u User) DisplayName() string {
	if full := strings.TrimSpace(u.FirstName + " " + u.LastName); full != "" {
		return full
	}
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// Account is a user together with its login secret, as held by the fixture backend.
type Account struct {
	User         User
	PasswordHash string
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
