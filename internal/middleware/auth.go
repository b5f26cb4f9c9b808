package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/zhouzirui/trust-tavern/backend/internal/service/identity"
	"github.com/zhouzirui/trust-tavern/backend/pkg/utils"
)

// Verifier resolves account tokens.
type Verifier interface {
	Verify(ctx context.Context, token string) (identity.Account, error)
}

type accountKey struct{}

// WithAccount stores a connected account on the context.
func WithAccount(ctx context.Context, account identity.Account) context.Context {
	return context.WithValue(ctx, accountKey{}, account)
}

// AccountFrom returns the account set by RequireAccount.
func AccountFrom(ctx context.Context) (identity.Account, bool) {
	account, ok := ctx.Value(accountKey{}).(identity.Account)
	return account, ok && account.ID != ""
}

// RequireAccount rejects requests without a valid account token. The token
// is read from the Authorization bearer header, or the "token" query
// parameter for clients that cannot set headers (EventSource, WebSocket).
func RequireAccount(verifier Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r)
			if token == "" {
				utils.RespondError(w, http.StatusUnauthorized, "connect a wallet to play")
				return
			}

			account, err := verifier.Verify(r.Context(), token)
			if err != nil {
				log.Printf("[auth] rejected token: %v", err)
				utils.RespondError(w, http.StatusUnauthorized, "connect a wallet to play")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithAccount(r.Context(), account)))
		})
	}
}

func tokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}
