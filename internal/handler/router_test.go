package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	personaModel "github.com/zhouzirui/trust-tavern/backend/internal/model/persona"
	gameService "github.com/zhouzirui/trust-tavern/backend/internal/service/game"
	"github.com/zhouzirui/trust-tavern/backend/internal/service/identity"
)

const testAddress = "0x52908400098527886E0F7030069857D2E4169EE7"

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	personas := personaModel.NewMemoryStore(personaModel.Seed())
	identitySvc, err := identity.NewService(identity.Config{SigningKey: []byte("router-test-key")})
	if err != nil {
		t.Fatalf("identity.NewService err: %v", err)
	}
	return NewRouter(personas, identitySvc, gameService.NewService(personas), nil)
}

func do(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouterHealthz(t *testing.T) {
	rec := do(t, newTestRouter(t), http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRouterGamesRequireAccount(t *testing.T) {
	rec := do(t, newTestRouter(t), http.MethodPost, "/api/games", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRouterFullGame(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/api/personas", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list personas expected 200, got %d", rec.Code)
	}

	rec = do(t, h, http.MethodPost, "/api/identity/connect", "", map[string]string{"address": testAddress})
	if rec.Code != http.StatusOK {
		t.Fatalf("connect expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var account identity.Account
	if err := json.Unmarshal(rec.Body.Bytes(), &account); err != nil {
		t.Fatalf("decode account: %v", err)
	}

	rec = do(t, h, http.MethodPost, "/api/games", account.Token, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create game expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created struct {
		Game struct {
			ID string `json:"id"`
		} `json:"game"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode game: %v", err)
	}
	base := "/api/games/" + created.Game.ID

	rec = do(t, h, http.MethodPost, base+"/role", account.Token, map[string]string{"role": "Trustee"})
	if rec.Code != http.StatusOK {
		t.Fatalf("role expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	for i := 0; i < 5; i++ {
		rec = do(t, h, http.MethodPost, base+"/rounds", account.Token, map[string]any{"amount": 10})
		if rec.Code != http.StatusOK {
			t.Fatalf("round %d expected 200, got %d: %s", i+1, rec.Code, rec.Body.String())
		}
	}

	rec = do(t, h, http.MethodPost, base+"/rounds", account.Token, map[string]any{"amount": 10})
	if rec.Code != http.StatusConflict {
		t.Fatalf("sixth round expected 409, got %d", rec.Code)
	}

	rec = do(t, h, http.MethodGet, base, account.Token, nil)
	var snap struct {
		Phase       string `json:"phase"`
		AIBalance   *int   `json:"aiBalance"`
		FinalWinner string `json:"finalWinner"`
		Log         []any  `json:"log"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snap.Phase != "complete" || snap.AIBalance == nil || snap.FinalWinner == "" || len(snap.Log) != 5 {
		t.Fatalf("unexpected final snapshot: %s", rec.Body.String())
	}
}
