package config

type Security struct{}

var _ SecurityConfig = Security{}

// GetJWTSecret is the HMAC secret shared with the back-office auth layer
// that mints the caller bearer tokens.
func (Security) GetJWTSecret() string {
	return GetEnv("JWT_SECRET", "dev-secret-change-me")
}
