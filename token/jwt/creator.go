package jwt

import (
	"errors"
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Creator issues and verifies HS256 access tokens for in-process backends.
type Creator struct {
	secret  []byte
	issuer  string
	expiry  time.Duration
	nowFunc func() time.Time
}

type CreatorOption func(*Creator)

func WithNowFunc(now func() time.Time) CreatorOption {
	return func(c *Creator) {
		c.nowFunc = now
	}
}

func WithIssuer(issuer string) CreatorOption {
	return func(c *Creator) {
		c.issuer = issuer
	}
}

func NewCreator(secret []byte, expiry time.Duration, options ...CreatorOption) (*Creator, error) {
	if len(secret) == 0 {
		return nil, errors.New("[NewCreator] secret is required")
	}
	if expiry <= 0 {
		return nil, errors.New("[NewCreator] expiry must be positive")
	}
	c := &Creator{
		secret:  secret,
		issuer:  "crm-fixture",
		expiry:  expiry,
		nowFunc: time.Now,
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// CreateAccessToken signs a token for subject that expires after the configured expiry.
func (c *Creator) CreateAccessToken(subject string) (string, error) {
	now := c.nowFunc()
	claims := jwtlib.MapClaims{
		"iss":        c.issuer,                        // The issuer of the token
		"sub":        subject,                         // The user the token was issued to
		"iat":        now.Unix(),                      // Issued At
		"exp":        now.Add(c.expiry).Unix(),        // Expiry
		"jti":        uuid.New().String(),             // Unique token ID
		"token_type": "access",                        // Distinguishes access from refresh material
	}
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign JWT token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, issuer and expiry and returns the subject.
func (c *Creator) Verify(rawToken string) (string, error) {
	parsed, err := jwtlib.Parse(rawToken, func(t *jwtlib.Token) (any, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	},
		jwtlib.WithIssuer(c.issuer),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithTimeFunc(c.nowFunc),
	)
	if err != nil {
		return "", err
	}
	sub, err := parsed.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", errors.New("token has no subject")
	}
	return sub, nil
}
