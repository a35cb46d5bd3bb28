package repofake

import (
	"context"
	"maps"
	"sync"

	"github.com/jrsteele09/go-crm-session/storage"
)

var _ storage.Repo = (*FakeStorageRepo)(nil)

// FakeStorageRepo is an in-memory storage.Repo. It backs the fixture mode and tests.
type FakeStorageRepo struct {
	values  map[string]string
	setErr  error
	// failAt counts down to a single failing Set; zero disables it
	failAt  int
	failErr error
	lock    sync.RWMutex
}

func NewFakeStorageRepo() *FakeStorageRepo {
	return &FakeStorageRepo{
		values: make(map[string]string),
	}
}

// NewFakeStorageRepoWith returns a repo pre-populated with a copy of values.
func NewFakeStorageRepoWith(values map[string]string) *FakeStorageRepo {
	r := NewFakeStorageRepo()
	maps.Copy(r.values, values)
	return r
}

func (r *FakeStorageRepo) Get(_ context.Context, key string) (string, bool, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	v, ok := r.values[key]
	return v, ok, nil
}

func (r *FakeStorageRepo) Set(_ context.Context, key, value string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.setErr != nil {
		return r.setErr
	}
	if r.failAt > 0 {
		r.failAt--
		if r.failAt == 0 {
			return r.failErr
		}
	}
	r.values[key] = value
	return nil
}

func (r *FakeStorageRepo) Remove(_ context.Context, key string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	delete(r.values, key)
	return nil
}

// FailSets makes every subsequent Set return err. Pass nil to clear.
func (r *FakeStorageRepo) FailSets(err error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.setErr = err
}

// FailNthSet makes only the n-th Set from now return err; later Sets succeed again.
func (r *FakeStorageRepo) FailNthSet(n int, err error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.failAt = n
	r.failErr = err
}

// Snapshot returns a copy of everything currently stored.
func (r *FakeStorageRepo) Snapshot() map[string]string {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return maps.Clone(r.values)
}
