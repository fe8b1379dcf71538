package gateway

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// ExternalReference is the decoded form of the reference string this system
// encodes when creating a payment and the gateway echoes back. Format:
// "<tenantId>_<entityId>[_<kindHint>]". Tenant ids are opaque tokens and must
// not contain underscores; entity ids are UUIDs. The kind hint is best effort
// and never authoritative.
type ExternalReference struct {
	TenantID string
	EntityID string
	KindHint string
}

// ParseExternalReference splits and validates an external reference. Neither
// segment before the entity id may contain an underscore, so a plain 3-way
// split is unambiguous.
func ParseExternalReference(ref string) (*ExternalReference, error) {
	parts := strings.SplitN(strings.TrimSpace(ref), "_", 3)
	if len(parts) < 2 {
		return nil, errors.New("external reference must contain tenant and entity id")
	}

	out := &ExternalReference{
		TenantID: strings.TrimSpace(parts[0]),
		EntityID: strings.TrimSpace(parts[1]),
	}
	if len(parts) == 3 {
		out.KindHint = strings.ToLower(strings.TrimSpace(parts[2]))
	}

	if out.TenantID == "" {
		return nil, errors.New("external reference tenant id is empty")
	}
	if _, err := uuid.Parse(out.EntityID); err != nil {
		return nil, errors.New("external reference entity id is not a valid identifier")
	}
	return out, nil
}
