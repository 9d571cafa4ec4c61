package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned by Parse for every verification failure.
// Malformed input, a bad signature, and expiry are deliberately
// indistinguishable to callers.
var ErrInvalidToken = errors.New("invalid session token")

// Config holds the signing secret and validity window.
type Config struct {
	// Secret is the HS256 key used for both signing and verification.
	Secret []byte
	// TTL is the fixed token lifetime.
	TTL time.Duration
	// Leeway is the clock-skew tolerance applied to exp and iat checks.
	Leeway time.Duration
	// MaxFutureIAT rejects tokens whose issued-at lies further than this
	// in the future. Zero selects a 10 minute default.
	MaxFutureIAT time.Duration
	// Issuer, when set, is stamped on issued tokens and required on parse.
	Issuer string
}

// Manager signs and verifies session tokens. Immutable after construction.
type Manager struct {
	config Config
}

// SessionClaims is the engine's token payload: the owner identity and the
// credential the session was opened against.
type SessionClaims struct {
	UID string `json:"uid"`
	CID string `json:"cid"`
	jwt.RegisteredClaims
}

// NewManager validates cfg and returns a Manager.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("hs256 requires a secret")
	}
	if cfg.TTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	if cfg.MaxFutureIAT == 0 {
		cfg.MaxFutureIAT = 10 * time.Minute
	}
	if cfg.MaxFutureIAT < 0 || cfg.MaxFutureIAT > 24*time.Hour {
		return nil, errors.New("invalid MaxFutureIAT configuration")
	}

	return &Manager{config: cfg}, nil
}

// Issue signs a token binding ownerID and credentialID for the configured
// TTL. The returned expiry matches the token's exp claim.
func (m *Manager) Issue(ownerID, credentialID string) (string, time.Time, error) {
	if ownerID == "" || credentialID == "" {
		return "", time.Time{}, errors.New("owner and credential identifiers are required")
	}

	now := time.Now()
	expiresAt := now.Add(m.config.TTL)

	claims := SessionClaims{
		UID: ownerID,
		CID: credentialID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    m.config.Issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.config.Secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

// Parse verifies signature and expiry and returns the claims. Every
// failure mode collapses to ErrInvalidToken.
func (m *Manager) Parse(tokenStr string) (*SessionClaims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if m.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(m.config.Leeway))
	}
	if m.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.config.Issuer))
	}

	parser := jwt.NewParser(options...)
	token, err := parser.ParseWithClaims(tokenStr, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		return m.config.Secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UID == "" || claims.CID == "" {
		return nil, ErrInvalidToken
	}
	if claims.IssuedAt != nil && m.config.MaxFutureIAT > 0 {
		if claims.IssuedAt.Time.After(time.Now().Add(m.config.MaxFutureIAT)) {
			return nil, ErrInvalidToken
		}
	}

	return claims, nil
}

// TTL exposes the configured token lifetime for cookie max-age alignment.
func (m *Manager) TTL() time.Duration {
	return m.config.TTL
}
