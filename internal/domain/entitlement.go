package domain

// SubscriptionStatus represents lifecycle states for a subscription.
type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "ACTIVE"
	SubscriptionStatusCancelled SubscriptionStatus = "CANCELLED"
	SubscriptionStatusExpired   SubscriptionStatus = "EXPIRED"
)

// MembershipStatus represents lifecycle states for a membership.
type MembershipStatus string

const (
	MembershipStatusActive    MembershipStatus = "ACTIVE"
	MembershipStatusPaused    MembershipStatus = "PAUSED"
	MembershipStatusCancelled MembershipStatus = "CANCELLED"
)

// EntitlementPolicy is the configured access policy for the e-edition.
// It is read once from configuration and treated as an immutable snapshot
// for the duration of an evaluation.
type EntitlementPolicy struct {
	AllowAllRegistered       bool
	AllowedRoles             []string
	AllowedSubscriptionPlans []string
	AllowedMembershipPlans   []string
}
