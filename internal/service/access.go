package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"

	"github.com/skyemovie/skyemovie/config"
	apperrors "github.com/skyemovie/skyemovie/internal/errors"
	"github.com/skyemovie/skyemovie/internal/ports"
)

// AccessServiceOptions groups dependencies for AccessService.
type AccessServiceOptions struct {
	Grants ports.GrantStore
	Config config.AccessConfig
}

// AccessService enforces the shared access-code gate that sits in front
// of the catalog. The gate is deliberately weak (a shared code with a
// length hint on failure); it keeps out drive-by visitors, not
// attackers.
type AccessService struct {
	grants ports.GrantStore
	code   string
}

// NewAccessService constructs a new AccessService.
func NewAccessService(opts AccessServiceOptions) *AccessService {
	return &AccessService{
		grants: opts.Grants,
		code:   opts.Config.Code,
	}
}

// Submit checks code against the configured access code. On success a
// grant is recorded for gateID, revoking any grant the same gateID held
// for a previous code. On failure the error carries the code-length
// hint shown to the visitor.
func (s *AccessService) Submit(ctx context.Context, gateID, code string) error {
	if gateID == "" {
		return apperrors.Validation("gate identity is required")
	}

	code = strings.TrimSpace(code)
	if subtle.ConstantTimeCompare([]byte(code), []byte(s.code)) != 1 {
		return apperrors.AuthHint("Invalid code.", fmt.Sprintf("Hint: %d digits.", len(s.code)))
	}

	if err := s.grants.Grant(ctx, gateID, s.code); err != nil {
		return fmt.Errorf("record grant: %w", err)
	}
	return nil
}

// Check reports whether gateID holds a grant for the currently
// configured code. Grants for older codes do not count, so rotating the
// code locks everyone out again.
func (s *AccessService) Check(ctx context.Context, gateID string) (bool, error) {
	if gateID == "" {
		return false, nil
	}
	return s.grants.HasGrant(ctx, gateID, s.code)
}
