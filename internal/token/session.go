package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ---- Public types ----

// SessionClaims is the payload of the signed session cookie: the OAuth token
// pair plus the registered expiry.
type SessionClaims struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	jwt.RegisteredClaims
}

type Signer struct {
	Alg     string
	Key     []byte
	SkewSec int
}

// ---- Errors ----

var (
	ErrEmptyToken  = errors.New("empty token")
	ErrKeyTooShort = errors.New("signing key too short; need >=16 bytes")
)

// ---- Constructors ----

// NewSigner prepares an HMAC signer/verifier for session tokens.
func NewSigner(alg string, key []byte, skewSec int) (*Signer, error) {
	switch alg {
	case "HS256", "HS384", "HS512":
	default:
		return nil, errors.New("unsupported alg (expected HS256/384/512)")
	}
	if len(key) < 16 {
		return nil, ErrKeyTooShort
	}
	return &Signer{Alg: alg, Key: key, SkewSec: skewSec}, nil
}

// ---- Operations ----

// Sign mints a session token carrying the OAuth token pair, expiring at exp.
func (s *Signer) Sign(accessToken, refreshToken string, exp time.Time) (string, error) {
	claims := SessionClaims{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	t := jwt.NewWithClaims(jwt.GetSigningMethod(s.Alg), claims)
	return t.SignedString(s.Key)
}

// Verify checks signature and expiry. It returns (claims, ok, err):
// ok=true means the token grants access. ok=false with err=nil means the
// signature is good but the token has expired; that is the only state a
// refresh grant may act on. Any other failure returns err and must be
// treated as no token at all.
func (s *Signer) Verify(tok string) (*SessionClaims, bool, error) {
	if tok == "" {
		return nil, false, ErrEmptyToken
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{s.Alg}),
		jwt.WithStrictDecoding(),
		jwt.WithLeeway(time.Duration(s.SkewSec)*time.Second),
	)
	var claims SessionClaims
	parsed, err := parser.ParseWithClaims(tok, &claims, func(t *jwt.Token) (interface{}, error) {
		return s.Key, nil
	})
	if err != nil {
		// Expired-only failures keep the claims: the signature already
		// checked out before claim validation ran.
		if errors.Is(err, jwt.ErrTokenExpired) && !errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return &claims, false, nil
		}
		return nil, false, err
	}
	if !parsed.Valid {
		return nil, false, errors.New("invalid token")
	}
	if claims.ExpiresAt == nil {
		return nil, false, errors.New("exp missing")
	}
	return &claims, true, nil
}
