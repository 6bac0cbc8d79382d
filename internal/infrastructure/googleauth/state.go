package googleauth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const stateIssuer = "slash-podcast"

// issueState mints a short-lived signed state token. The callback rejects
// states it did not issue, which ties each exchange to this deployment.
func (m *Manager) issueState() (string, error) {
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    stateIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.cfg.StateTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.cfg.StateSecret))
}

// VerifyState validates the state parameter echoed by the provider.
func (m *Manager) VerifyState(state string) error {
	if state == "" {
		return ErrInvalidState
	}
	parsed, err := jwt.ParseWithClaims(state, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(m.cfg.StateSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(stateIssuer))
	if err != nil || !parsed.Valid {
		return ErrInvalidState
	}
	return nil
}
