// Package identity connects a wallet address to an opaque, signed account
// handle. The handle only gates play; it is never used to move tokens.
package identity

import (
	"context"
	crand "crypto/rand"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrAddressRequired = errors.New("wallet address is required")
	ErrInvalidAddress  = errors.New("wallet address is invalid")
	ErrInvalidToken    = errors.New("account token is invalid")
	ErrTokenExpired    = errors.New("account token is expired")
)

// accountNamespace scopes the account IDs derived from wallet addresses.
var accountNamespace = uuid.MustParse("6f1d4c3e-9a52-4b7e-8d1a-2c5e7f90b314")

var addressPattern = regexp.MustCompile(`^0x[0-9a-f]{40}$`)

// Account is the handle returned by a successful connection.
type Account struct {
	ID           string    `json:"accountId"`
	Address      string    `json:"address"`
	ShortAddress string    `json:"shortAddress"`
	Token        string    `json:"token,omitempty"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// Provider is the identity collaborator consumed by handlers and clients.
type Provider interface {
	Connect(ctx context.Context, address string) (Account, error)
	Verify(ctx context.Context, token string) (Account, error)
}

// Config controls how handles are signed.
type Config struct {
	SigningKey []byte
	Issuer     string
	TTL        time.Duration
	Now        func() time.Time
}

// Service issues and verifies HS256 account tokens.
type Service struct {
	key    []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

type accountClaims struct {
	jwt.RegisteredClaims
	Address string `json:"address"`
}

// NewService builds an identity service. Without a signing key an ephemeral
// one is generated, so tokens do not survive a restart.
func NewService(cfg Config) (*Service, error) {
	key := cfg.SigningKey
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := crand.Read(key); err != nil {
			return nil, fmt.Errorf("generate signing key: %w", err)
		}
		log.Println("[identity] no signing key configured, using an ephemeral key")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 12 * time.Hour
	}
	if cfg.Issuer == "" {
		cfg.Issuer = "trust-tavern"
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Service{key: key, issuer: cfg.Issuer, ttl: cfg.TTL, now: cfg.Now}, nil
}

// Connect validates a wallet address and issues a signed handle for it. The
// same address always maps to the same account ID.
func (s *Service) Connect(_ context.Context, address string) (Account, error) {
	normalized, err := NormalizeAddress(address)
	if err != nil {
		return Account{}, err
	}

	now := s.now().UTC()
	account := Account{
		ID:           uuid.NewSHA1(accountNamespace, []byte(normalized)).String(),
		Address:      normalized,
		ShortAddress: ShortAddress(normalized),
		ExpiresAt:    now.Add(s.ttl),
	}

	claims := accountClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   account.ID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(account.ExpiresAt),
		},
		Address: normalized,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return Account{}, fmt.Errorf("sign account token: %w", err)
	}
	account.Token = token

	log.Printf("[identity] connected account=%s wallet=%s", account.ID, account.ShortAddress)
	return account, nil
}

// Verify resolves a token issued by Connect back to its account.
func (s *Service) Verify(_ context.Context, token string) (Account, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Account{}, ErrInvalidToken
	}

	var parsed accountClaims
	_, err := jwt.ParseWithClaims(token, &parsed, func(*jwt.Token) (any, error) {
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Account{}, ErrTokenExpired
		}
		return Account{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	address, err := NormalizeAddress(parsed.Address)
	if err != nil || parsed.Subject == "" {
		return Account{}, ErrInvalidToken
	}

	return Account{
		ID:           parsed.Subject,
		Address:      address,
		ShortAddress: ShortAddress(address),
		ExpiresAt:    parsed.ExpiresAt.Time.UTC(),
	}, nil
}

// NormalizeAddress lowercases a 0x-prefixed, 20-byte hex address.
func NormalizeAddress(address string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(address))
	if normalized == "" {
		return "", ErrAddressRequired
	}
	if !addressPattern.MatchString(normalized) {
		return "", ErrInvalidAddress
	}
	return normalized, nil
}

// ShortAddress renders an address as "0x1234...abcd".
func ShortAddress(address string) string {
	if len(address) <= 10 {
		return address
	}
	return address[:6] + "..." + address[len(address)-4:]
}
