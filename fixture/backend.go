// Package fixture provides an in-process auth backend with a single static user.
// It issues real JWT access tokens and opaque refresh tokens so the session
// lifecycle can be exercised without the CRM API.
package fixture

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"time"

	apperrors "github.com/jrsteele09/go-crm-session/internal/errors"
	"github.com/jrsteele09/go-crm-session/oauth2"
	"github.com/jrsteele09/go-crm-session/token/jwt"
	"github.com/jrsteele09/go-crm-session/token/refresh"
	refreshrepofake "github.com/jrsteele09/go-crm-session/token/refresh/repofake"
	"github.com/jrsteele09/go-crm-session/users"
	fakeaccountrepo "github.com/jrsteele09/go-crm-session/users/repofake"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	DefaultEmail    = "john@company.com"
	DefaultPassword = "password"

	defaultAccessTokenTTL = 15 * time.Minute
)

// DefaultUser is the static dummy user served by the fixture backend.
var DefaultUser = users.User{
	ID:     "1",
	Name:   "John Doe",
	Email:  DefaultEmail,
	Avatar: "https://images.pexels.com/photos/2379004/pexels-photo-2379004.jpeg?auto=compress&cs=tinysrgb&w=150&h=150&dpr=2",
	Role:   "Sales Manager",
}

// Backend implements the session backend against in-memory accounts.
type Backend struct {
	accounts      users.AccountRepo
	refreshTokens *refresh.Manager
	creator       *jwt.Creator
	logger        zerolog.Logger
}

type config struct {
	user            users.User
	password        string
	secret          []byte
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
	nowFunc         func() time.Time
	logger          zerolog.Logger
}

// Option defines a function type to modify the fixture configuration.
type Option func(*config)

// WithAccount replaces the static user and its password.
func WithAccount(user users.User, password string) Option {
	return func(c *config) {
		c.user = user
		c.password = password
	}
}

// WithSecret sets the HS256 signing secret. A random secret is used otherwise.
func WithSecret(secret []byte) Option {
	return func(c *config) {
		c.secret = secret
	}
}

func WithAccessTokenTTL(ttl time.Duration) Option {
	return func(c *config) {
		c.accessTokenTTL = ttl
	}
}

// WithRefreshTokenTTL limits refresh token lifetime. Zero (the default) never expires.
func WithRefreshTokenTTL(ttl time.Duration) Option {
	return func(c *config) {
		c.refreshTokenTTL = ttl
	}
}

func WithNowFunc(now func() time.Time) Option {
	return func(c *config) {
		c.nowFunc = now
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// New creates a fixture backend seeded with one account.
func New(options ...Option) (*Backend, error) {
	cfg := config{
		user:           DefaultUser,
		password:       DefaultPassword,
		accessTokenTTL: defaultAccessTokenTTL,
		nowFunc:        time.Now,
		logger:         log.Logger,
	}
	for _, opt := range options {
		opt(&cfg)
	}

	if len(cfg.secret) == 0 {
		cfg.secret = make([]byte, 32)
		if _, err := rand.Read(cfg.secret); err != nil {
			return nil, errors.Wrap(err, "[fixture.New] generate secret")
		}
	}

	creator, err := jwt.NewCreator(cfg.secret, cfg.accessTokenTTL, jwt.WithNowFunc(cfg.nowFunc))
	if err != nil {
		return nil, errors.Wrap(err, "[fixture.New]")
	}

	hash, err := users.HashPassword(cfg.password)
	if err != nil {
		return nil, errors.Wrap(err, "[fixture.New] hash password")
	}
	accounts := fakeaccountrepo.NewFakeAccountRepo()
	if err := accounts.Upsert(&users.Account{User: cfg.user, PasswordHash: hash}); err != nil {
		return nil, errors.Wrap(err, "[fixture.New] seed account")
	}

	return &Backend{
		accounts:      accounts,
		refreshTokens: refresh.NewManager(refreshrepofake.NewFakeRefreshTokenRepo(), 32, cfg.refreshTokenTTL),
		creator:       creator,
		logger:        cfg.logger,
	}, nil
}

func (b *Backend) Login(ctx context.Context, email, password string) (oauth2.Credentials, error) {
	if err := ctx.Err(); err != nil {
		return oauth2.Credentials{}, errors.Wrap(apperrors.ErrTransport, err.Error())
	}
	account, err := b.accounts.GetByEmail(email)
	if err != nil || !users.CheckPasswordHash(password, account.PasswordHash) {
		b.logger.Debug().Str("email", email).Msg("fixture login rejected")
		return oauth2.Credentials{}, apperrors.ErrInvalidCredentials
	}

	access, err := b.creator.CreateAccessToken(account.User.ID)
	if err != nil {
		return oauth2.Credentials{}, errors.Wrap(apperrors.ErrUnexpected, err.Error())
	}
	refreshToken, err := b.refreshTokens.Create(account.User.ID)
	if err != nil {
		return oauth2.Credentials{}, errors.Wrap(apperrors.ErrUnexpected, err.Error())
	}
	return oauth2.Credentials{AccessToken: access, RefreshToken: refreshToken}, nil
}

// Refresh mints a new access token. The refresh token itself is not rotated.
func (b *Backend) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", errors.Wrap(apperrors.ErrTransport, err.Error())
	}
	if refreshToken == "" {
		return "", apperrors.ErrInvalidRefreshToken
	}
	stored, err := b.refreshTokens.Validate(refreshToken)
	if err != nil {
		return "", errors.Wrap(apperrors.ErrInvalidRefreshToken, err.Error())
	}
	if _, err := b.accounts.GetByID(stored.UserID); err != nil {
		return "", errors.Wrap(apperrors.ErrInvalidRefreshToken, "user no longer exists")
	}
	access, err := b.creator.CreateAccessToken(stored.UserID)
	if err != nil {
		return "", errors.Wrap(apperrors.ErrUnexpected, err.Error())
	}
	return access, nil
}

func (b *Backend) Profile(ctx context.Context, accessToken string) (users.Profile, error) {
	account, err := b.authenticate(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	return users.NewProfile(account.User)
}

// UpdateProfile merges fields into the stored user. "_id", "id" and "email" are ignored.
func (b *Backend) UpdateProfile(ctx context.Context, accessToken string, fields map[string]any) (users.Profile, error) {
	account, err := b.authenticate(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	current, err := users.NewProfile(account.User)
	if err != nil {
		return nil, errors.Wrap(apperrors.ErrUnexpected, err.Error())
	}
	merged, err := current.Fields()
	if err != nil {
		return nil, errors.Wrap(apperrors.ErrUnexpected, err.Error())
	}
	for k, v := range fields {
		switch k {
		case "_id", "id", "email":
			continue
		}
		merged[k] = v
	}

	data, err := json.Marshal(merged)
	if err != nil {
		return nil, errors.Wrap(apperrors.ErrUnexpected, err.Error())
	}
	var updated users.User
	if err := json.Unmarshal(data, &updated); err != nil {
		return nil, errors.Wrapf(apperrors.ErrUnexpected, "invalid profile update: %v", err)
	}
	if err := b.accounts.UpdateUser(account.User.Email, updated); err != nil {
		return nil, errors.Wrap(apperrors.ErrUnexpected, err.Error())
	}

	account, err = b.accounts.GetByID(account.User.ID)
	if err != nil {
		return nil, errors.Wrap(apperrors.ErrUnexpected, err.Error())
	}
	return users.NewProfile(account.User)
}

func (b *Backend) authenticate(ctx context.Context, accessToken string) (*users.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(apperrors.ErrTransport, err.Error())
	}
	subject, err := b.creator.Verify(accessToken)
	if err != nil {
		return nil, errors.Wrap(apperrors.ErrInvalidToken, err.Error())
	}
	account, err := b.accounts.GetByID(subject)
	if err != nil {
		return nil, errors.Wrap(apperrors.ErrInvalidToken, "unknown subject")
	}
	return account, nil
}
