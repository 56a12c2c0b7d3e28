package billing

import (
	"context"

	"github.com/bayleafwalker/quire/internal/capability"
	"github.com/bayleafwalker/quire/internal/domain"
)

// Stub is the biller of platforms that sell nothing. Every user is on the
// free tier and purchases fail with ErrBillingUnsupported.
type Stub struct{}

var _ capability.SubscriptionBiller = Stub{}

func (Stub) Products(context.Context) ([]domain.Product, error) {
	return []domain.Product{}, nil
}

func (Stub) Purchase(context.Context, string) (domain.PurchaseResult, error) {
	return domain.PurchaseResult{}, capability.ErrBillingUnsupported
}

func (Stub) ActiveSubscription(context.Context) (domain.Subscription, error) {
	return domain.Subscription{}, nil
}
