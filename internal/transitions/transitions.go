package transitions

import (
	"github.com/harborwell/insurance-backend/internal/types"
)

// EntityKind selects which status machine applies.
type EntityKind string

const (
	KindClaim  EntityKind = "claim"
	KindPolicy EntityKind = "policy"
)

// Required field names reported by RequiredFields.
const (
	FieldApprovedAmount = "approvedAmount"
	FieldDenialReason   = "denialReason"
)

// claimTransitions is the directed transition table for claims. DENIED and
// PAID are terminal.
var claimTransitions = map[string][]string{
	types.ClaimStatusSubmitted:   {types.ClaimStatusUnderReview, types.ClaimStatusDenied},
	types.ClaimStatusUnderReview: {types.ClaimStatusApproved, types.ClaimStatusDenied},
	types.ClaimStatusApproved:    {types.ClaimStatusPaid},
	types.ClaimStatusDenied:      {},
	types.ClaimStatusPaid:        {},
}

var claimRequiredFields = map[string][]string{
	types.ClaimStatusApproved: {FieldApprovedAmount},
	types.ClaimStatusDenied:   {FieldDenialReason},
}

// CanTransition reports whether the move from current to requested is legal
// for the given entity kind. Policy transitions are permissive: any valid
// status can move to any other valid status. Only claims carry a real table.
func CanTransition(kind EntityKind, current, requested string) bool {
	switch kind {
	case KindClaim:
		for _, next := range claimTransitions[current] {
			if next == requested {
				return true
			}
		}
		return false
	case KindPolicy:
		return types.IsValidPolicyStatus(current) && types.IsValidPolicyStatus(requested)
	}
	return false
}

// RequiredFields lists the field names that must be present on a request
// targeting the given status.
func RequiredFields(kind EntityKind, requested string) []string {
	if kind != KindClaim {
		return nil
	}
	return claimRequiredFields[requested]
}

// AllowedNext returns the set of statuses reachable from current.
func AllowedNext(kind EntityKind, current string) []string {
	if kind != KindClaim {
		return nil
	}
	next := claimTransitions[current]
	out := make([]string, len(next))
	copy(out, next)
	return out
}

// IsTerminal reports whether no further transitions are possible.
func IsTerminal(kind EntityKind, current string) bool {
	if kind != KindClaim {
		return false
	}
	next, ok := claimTransitions[current]
	return ok && len(next) == 0
}
