// Package activitypub holds the ActivityPub client. Federation is not built
// yet; the placeholder reports ErrNotImplemented so callers can tell it apart
// from an empty audience.
package activitypub

import (
	"context"
	"fmt"

	"github.com/bayleafwalker/quire/internal/capability"
	"github.com/bayleafwalker/quire/internal/domain"
)

type Placeholder struct{}

var _ capability.ActivityPubClient = Placeholder{}

func (Placeholder) Audience(_ context.Context, handle string) ([]domain.AudienceMember, error) {
	return nil, fmt.Errorf("activitypub audience for %q: %w", handle, capability.ErrNotImplemented)
}
