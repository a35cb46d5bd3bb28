package fakeaccountrepo

import (
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-crm-session/users"
)

var _ users.AccountRepo = (*FakeAccountRepo)(nil)

var ErrNotFound = errors.New("not found")

type FakeAccountRepo struct {
	accounts map[string]*users.Account
	emailIds map[string]string // email to user id
	lock     sync.RWMutex
}

func NewFakeAccountRepo() users.AccountRepo {
	return &FakeAccountRepo{
		accounts: make(map[string]*users.Account),
		emailIds: make(map[string]string),
	}
}

func (ar *FakeAccountRepo) Upsert(account *users.Account) error {
	ar.lock.Lock()
	defer ar.lock.Unlock()

	if account.User.ID == "" {
		account.User.ID = uuid.New().String()
	}
	copied := *account
	ar.accounts[account.User.ID] = &copied
	ar.emailIds[normalise(account.User.Email)] = account.User.ID
	return nil
}

func (ar *FakeAccountRepo) GetByEmail(email string) (*users.Account, error) {
	ar.lock.RLock()
	defer ar.lock.RUnlock()

	id, ok := ar.emailIds[normalise(email)]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *ar.accounts[id]
	return &copied, nil
}

func (ar *FakeAccountRepo) GetByID(id string) (*users.Account, error) {
	ar.lock.RLock()
	defer ar.lock.RUnlock()

	account, ok := ar.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *account
	return &copied, nil
}

// UpdateUser replaces the profile of the account registered under email.
// The identifier and the email itself are kept.
func (ar *FakeAccountRepo) UpdateUser(email string, user users.User) error {
	ar.lock.Lock()
	defer ar.lock.Unlock()

	id, ok := ar.emailIds[normalise(email)]
	if !ok {
		return ErrNotFound
	}
	account := ar.accounts[id]
	user.ID = account.User.ID
	user.MongoID = account.User.MongoID
	user.Email = account.User.Email
	account.User = user
	return nil
}

func normalise(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
