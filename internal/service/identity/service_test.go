package identity

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

const wallet = "0xAbCdEf0123456789aBcDeF0123456789ABCDEF01"

func newTestService(t *testing.T, now func() time.Time) *Service {
	t.Helper()
	svc, err := NewService(Config{SigningKey: []byte("test-key"), Issuer: "test", TTL: time.Hour, Now: now})
	if err != nil {
		t.Fatalf("NewService err: %v", err)
	}
	return svc
}

func TestConnectAndVerify(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	account, err := svc.Connect(ctx, wallet)
	if err != nil {
		t.Fatalf("Connect err: %v", err)
	}
	if account.Token == "" || account.ID == "" {
		t.Fatalf("expected token and id, got %+v", account)
	}
	if account.Address != strings.ToLower(wallet) {
		t.Fatalf("expected normalized address, got %s", account.Address)
	}
	if account.ShortAddress != "0xabcd...ef01" {
		t.Fatalf("unexpected short address %s", account.ShortAddress)
	}

	got, err := svc.Verify(ctx, account.Token)
	if err != nil {
		t.Fatalf("Verify err: %v", err)
	}
	if got.ID != account.ID || got.Address != account.Address {
		t.Fatalf("verified account mismatch: %+v vs %+v", got, account)
	}
}

func TestConnectIsStablePerWallet(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	a, err := svc.Connect(ctx, wallet)
	if err != nil {
		t.Fatalf("Connect err: %v", err)
	}
	b, err := svc.Connect(ctx, strings.ToLower(wallet))
	if err != nil {
		t.Fatalf("Connect err: %v", err)
	}
	if a.ID != b.ID {
		t.Fatalf("expected same account id, got %s and %s", a.ID, b.ID)
	}
}

func TestConnectRejectsBadAddresses(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	if _, err := svc.Connect(ctx, "  "); !errors.Is(err, ErrAddressRequired) {
		t.Fatalf("expected ErrAddressRequired, got %v", err)
	}
	for _, addr := range []string{"0x123", "abcdef0123456789abcdef0123456789abcdef01", "0xzzcdef0123456789abcdef0123456789abcdef01"} {
		if _, err := svc.Connect(ctx, addr); !errors.Is(err, ErrInvalidAddress) {
			t.Fatalf("%s: expected ErrInvalidAddress, got %v", addr, err)
		}
	}
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	account, err := svc.Connect(ctx, wallet)
	if err != nil {
		t.Fatalf("Connect err: %v", err)
	}

	other, err := NewService(Config{SigningKey: []byte("other-key"), Issuer: "test", TTL: time.Hour})
	if err != nil {
		t.Fatalf("NewService err: %v", err)
	}
	if _, err := other.Verify(ctx, account.Token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if _, err := svc.Verify(ctx, "not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if _, err := svc.Verify(ctx, ""); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for empty token, got %v", err)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	issued := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	current := issued
	svc := newTestService(t, func() time.Time { return current })
	ctx := context.Background()

	account, err := svc.Connect(ctx, wallet)
	if err != nil {
		t.Fatalf("Connect err: %v", err)
	}

	current = issued.Add(2 * time.Hour)
	if _, err := svc.Verify(ctx, account.Token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestNewServiceGeneratesKey(t *testing.T) {
	svc, err := NewService(Config{})
	if err != nil {
		t.Fatalf("NewService err: %v", err)
	}
	account, err := svc.Connect(context.Background(), wallet)
	if err != nil {
		t.Fatalf("Connect err: %v", err)
	}
	if _, err := svc.Verify(context.Background(), account.Token); err != nil {
		t.Fatalf("Verify err: %v", err)
	}
}
