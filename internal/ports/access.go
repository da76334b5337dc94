package ports

import "context"

// GrantStore tracks which gate identities currently hold an access
// grant for which code. Granting for one code revokes any grant the
// same gate identity held for a different code.
type GrantStore interface {
	Grant(ctx context.Context, gateID, code string) error
	HasGrant(ctx context.Context, gateID, code string) (bool, error)
	Revoke(ctx context.Context, gateID string) error
}
