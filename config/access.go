package config

// AccessConfig controls the shared site access code gate.
//
// The gate is a client-convenience barrier, not an authentication
// mechanism: the code is shared by all users and grants are stored per
// browser with no expiry. It deliberately carries no rate limiting.
type AccessConfig struct {
	// Code is the shared access code visitors must enter before content
	// routes become reachable.
	Code string `env:"ACCESS_CODE" envDefault:"1234"`
}

// Sanitize applies guardrails to access gate configuration values.
func (a *AccessConfig) Sanitize() {
	if a.Code == "" {
		a.Code = "1234"
	}
}
