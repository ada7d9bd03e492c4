package entitlement

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/eedition-gateway/internal/domain"
	"github.com/spec-kit/eedition-gateway/internal/repository"
)

// SubscriptionCapability answers "does this reader hold an active
// subscription to plan X". Nil means the subscription add-on is not
// deployed and the rule is skipped entirely.
type SubscriptionCapability interface {
	HasActiveSubscription(ctx context.Context, readerID, planID string) (bool, error)
}

// MembershipCapability lists the reader's active membership plans. Nil
// means the membership add-on is not deployed and the rule is skipped.
type MembershipCapability interface {
	ActiveMembershipPlans(ctx context.Context, readerID string) ([]string, error)
}

// Engine evaluates a reader against the configured access policy. Every
// evaluation is stateless and recomputed; decisions are never cached
// because commerce state can change between requests.
type Engine struct {
	readers     repository.ReaderRepository
	subs        SubscriptionCapability
	memberships MembershipCapability
}

// NewEngine builds the engine. Capability arguments may be nil.
func NewEngine(readers repository.ReaderRepository, subs SubscriptionCapability, memberships MembershipCapability) *Engine {
	return &Engine{readers: readers, subs: subs, memberships: memberships}
}

// HasAccess runs the layered policy rules in order, short-circuiting on the
// first grant. An unknown or empty reader id denies access; only
// persistence faults surface as errors.
func (e *Engine) HasAccess(ctx context.Context, readerID string, policy domain.EntitlementPolicy) (bool, error) {
	if readerID == "" {
		return false, nil
	}

	// The all-registered switch overrides every other rule, so it is decided
	// before any lookup happens.
	if policy.AllowAllRegistered {
		return true, nil
	}

	reader, err := e.readers.GetByID(ctx, readerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}

	for _, role := range policy.AllowedRoles {
		if reader.HasRole(role) {
			return true, nil
		}
	}

	if e.subs != nil {
		for _, planID := range policy.AllowedSubscriptionPlans {
			ok, err := e.subs.HasActiveSubscription(ctx, readerID, planID)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
	}

	if e.memberships != nil && len(policy.AllowedMembershipPlans) > 0 {
		activePlans, err := e.memberships.ActiveMembershipPlans(ctx, readerID)
		if err != nil {
			return false, err
		}
		allowed := make(map[string]struct{}, len(policy.AllowedMembershipPlans))
		for _, planID := range policy.AllowedMembershipPlans {
			allowed[planID] = struct{}{}
		}
		for _, planID := range activePlans {
			if _, ok := allowed[planID]; ok {
				return true, nil
			}
		}
	}

	return false, nil
}
