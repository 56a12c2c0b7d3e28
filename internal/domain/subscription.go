package domain

import (
	"fmt"
	"time"
)

type Tier string

const (
	TierFree Tier = "free"
	TierPlus Tier = "plus"
	TierPro  Tier = "pro"
)

// Unlimited is the entry limit of tiers without a quota.
const Unlimited = -1

var tierEntryLimits = map[Tier]int{
	TierFree: 50,
	TierPlus: 1000,
	TierPro:  Unlimited,
}

// ParseTier maps a store or config value to a Tier. Empty means free.
func ParseTier(raw string) (Tier, error) {
	if raw == "" {
		return TierFree, nil
	}
	t := Tier(raw)
	if _, ok := tierEntryLimits[t]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownTier, raw)
	}
	return t, nil
}

// EntryLimit is the number of journal entries the tier allows.
func (t Tier) EntryLimit() int {
	if limit, ok := tierEntryLimits[t]; ok {
		return limit
	}
	return tierEntryLimits[TierFree]
}

type Product struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Tier     Tier   `json:"tier"`
	Price    string `json:"price"`
	Period   string `json:"period,omitempty"`
	Currency string `json:"currency,omitempty"`
}

type Subscription struct {
	ProductID string    `json:"productId"`
	Tier      Tier      `json:"tier"`
	ExpiresAt time.Time `json:"expiresAt"`
	AutoRenew bool      `json:"autoRenew"`
}

// Active reports whether the subscription grants its tier at now.
func (s Subscription) Active(now time.Time) bool {
	return s.ProductID != "" && (s.ExpiresAt.IsZero() || now.Before(s.ExpiresAt))
}

type PurchaseStatus string

const (
	PurchaseCompleted PurchaseStatus = "completed"
	PurchasePending   PurchaseStatus = "pending"
)

type PurchaseResult struct {
	ProductID string         `json:"productId"`
	Status    PurchaseStatus `json:"status"`
	Token     string         `json:"token,omitempty"`
}

// Quota is the entry allowance of the current subscription.
type Quota struct {
	Used  int  `json:"used"`
	Limit int  `json:"limit"`
	Tier  Tier `json:"tier"`
}

func NewQuota(used int, tier Tier) Quota {
	return Quota{Used: used, Limit: tier.EntryLimit(), Tier: tier}
}

// Remaining returns the entries left, or Unlimited.
func (q Quota) Remaining() int {
	if q.Limit == Unlimited {
		return Unlimited
	}
	if q.Used >= q.Limit {
		return 0
	}
	return q.Limit - q.Used
}

func (q Quota) Exceeded() bool {
	return q.Limit != Unlimited && q.Used >= q.Limit
}
