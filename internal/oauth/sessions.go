package oauth

import (
	"time"

	"edgegate/gateway/internal/token"
)

// Sessions wraps the signer with the session-token lifecycle: issue at
// callback, verify on every protected request.
type Sessions struct {
	signer *token.Signer
}

func NewSessions(signer *token.Signer) *Sessions {
	return &Sessions{signer: signer}
}

// Issue wraps a token set into a signed session token with exp = now +
// expires_in.
func (s *Sessions) Issue(ts *TokenSet) (string, error) {
	exp := time.Now().Add(time.Duration(ts.ExpiresIn) * time.Second)
	return s.signer.Sign(ts.AccessToken, ts.RefreshToken, exp)
}

// Verify re-checks a session token. See token.Signer.Verify for the
// (claims, ok, err) contract.
func (s *Sessions) Verify(raw string) (*token.SessionClaims, bool, error) {
	return s.signer.Verify(raw)
}
