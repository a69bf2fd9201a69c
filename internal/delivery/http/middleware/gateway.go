package middleware

import (
	"net/http"

	h "eventparticipation/internal/delivery/http/helpers"
)

// GatewayTokenHeader carries the payment gateway's shared token.
const GatewayTokenHeader = "X-Gateway-Token"

// TokenMatcher checks a presented shared token.
type TokenMatcher interface {
	Matches(token string) bool
}

// RequireGatewayToken rejects requests whose X-Gateway-Token does not match.
// A nil matcher lets every request through.
func RequireGatewayToken(matcher TokenMatcher) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		if matcher == nil {
			return next
		}
		return func(w http.ResponseWriter, r *http.Request) {
			if !matcher.Matches(r.Header.Get(GatewayTokenHeader)) {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid gateway token")
				return
			}
			next(w, r)
		}
	}
}
