// Package billing provides the SubscriptionBiller variants: the Play Store
// biller reached through the Android shell, and the stub registered on
// platforms without a store integration.
package billing

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-logr/logr"
	"github.com/tidwall/gjson"

	"github.com/bayleafwalker/quire/internal/adapters/bridge"
	"github.com/bayleafwalker/quire/internal/capability"
	"github.com/bayleafwalker/quire/internal/domain"
)

// PlayStore delegates to Play Billing through the shell bridge.
type PlayStore struct {
	bridge *bridge.Client
}

var _ capability.SubscriptionBiller = (*PlayStore)(nil)

func NewPlayStore(b *bridge.Client) *PlayStore {
	return &PlayStore{bridge: b}
}

func (p *PlayStore) Products(ctx context.Context) ([]domain.Product, error) {
	data, err := p.bridge.Call(ctx, http.MethodGet, "/billing/products", nil, nil)
	if err != nil {
		return nil, mapError(err)
	}
	var products []domain.Product
	if err := bridge.Decode(data, &products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	return products, nil
}

func (p *PlayStore) Purchase(ctx context.Context, productID string) (domain.PurchaseResult, error) {
	logger := logr.FromContextOrDiscard(ctx).WithValues("productId", productID)

	data, err := p.bridge.Call(ctx, http.MethodPost, "/billing/purchases", nil, map[string]string{"productId": productID})
	if err != nil {
		err = mapError(err)
		if errors.Is(err, capability.ErrPurchaseCancelled) {
			logger.Info("purchase cancelled by user")
		}
		return domain.PurchaseResult{}, err
	}
	var result domain.PurchaseResult
	if err := bridge.Decode(data, &result); err != nil {
		return domain.PurchaseResult{}, fmt.Errorf("decode purchase: %w", err)
	}
	if result.ProductID == "" {
		result.ProductID = productID
	}
	logger.Info("purchase finished", "status", result.Status)
	return result, nil
}

func (p *PlayStore) ActiveSubscription(ctx context.Context) (domain.Subscription, error) {
	data, err := p.bridge.Call(ctx, http.MethodGet, "/billing/subscription", nil, nil)
	if err != nil {
		err = mapError(err)
		if errors.Is(err, capability.ErrNotFound) {
			return domain.Subscription{}, nil
		}
		return domain.Subscription{}, err
	}
	if !data.Exists() || data.Type == gjson.Null {
		return domain.Subscription{}, nil
	}
	var sub domain.Subscription
	if err := bridge.Decode(data, &sub); err != nil {
		return domain.Subscription{}, fmt.Errorf("decode subscription: %w", err)
	}
	return sub, nil
}

func mapError(err error) error {
	switch bridge.CodeOf(err) {
	case bridge.CodeCancelled:
		return fmt.Errorf("%w: %v", capability.ErrPurchaseCancelled, err)
	case bridge.CodeUnsupported:
		return fmt.Errorf("%w: %v", capability.ErrBillingUnsupported, err)
	case bridge.CodeNotFound:
		return fmt.Errorf("%w: %v", capability.ErrNotFound, err)
	default:
		return err
	}
}
