package config

import "time"

// AuthConfig groups session and identity configuration.
//
// Identity is first-party: every visitor gets an anonymous session
// automatically, and email/password accounts can be registered on top.
// An optional bootstrap token (HS256 JWT with a uid claim) allows a
// deployment to mint credentialed sessions out of band.
type AuthConfig struct {
	// SessionTTL is the lifetime of a credentialed session.
	SessionTTL time.Duration `env:"AUTH_SESSION_TTL" envDefault:"720h"`

	// AnonymousSessionTTL is the lifetime of an auto-provisioned anonymous session.
	AnonymousSessionTTL time.Duration `env:"AUTH_ANON_SESSION_TTL" envDefault:"720h"`

	// BcryptCost is the bcrypt work factor for password hashing.
	BcryptCost int `env:"AUTH_BCRYPT_COST" envDefault:"10"`

	// BootstrapTokenKey is the HS256 signing key for bootstrap token exchange.
	// When empty, POST /auth/token is disabled.
	BootstrapTokenKey string `env:"AUTH_BOOTSTRAP_TOKEN_KEY"`

	// MinPasswordLength is the minimum accepted password length at registration.
	MinPasswordLength int `env:"AUTH_MIN_PASSWORD_LENGTH" envDefault:"6"`
}

// Sanitize applies guardrails to auth configuration values.
func (a *AuthConfig) Sanitize() {
	if a.SessionTTL < time.Hour {
		a.SessionTTL = time.Hour
	}
	if a.AnonymousSessionTTL < time.Hour {
		a.AnonymousSessionTTL = time.Hour
	}
	// bcrypt panics outside 4..31; clamp to the library's valid range
	if a.BcryptCost < 4 {
		a.BcryptCost = 4
	}
	if a.BcryptCost > 31 {
		a.BcryptCost = 31
	}
	if a.MinPasswordLength < 1 {
		a.MinPasswordLength = 1
	}
}
