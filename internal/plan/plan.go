// Package plan is the single implementation of plan-tier gating rules.
// Services consult it at the moment an action is attempted; the user's
// current plan is always loaded from storage, never cached in tokens.
package plan

// Plan is a subscription tier.
type Plan string

const (
	Free  Plan = "free"
	Pro   Plan = "pro"
	Admin Plan = "admin"
)

func Valid(p Plan) bool {
	switch p {
	case Free, Pro, Admin:
		return true
	default:
		return false
	}
}

// Paid reports whether the plan grants pro features.
func (p Plan) Paid() bool { return p == Pro || p == Admin }

// Unlimited marks plans without a page cap.
const Unlimited = -1

// MaxPages returns the page cap for a plan, Unlimited for paid tiers.
func MaxPages(p Plan) int {
	if p.Paid() {
		return Unlimited
	}
	return 1
}

// CanCreatePage decides whether a user owning `owned` pages may create another.
func CanCreatePage(p Plan, owned int) bool {
	max := MaxPages(p)
	return max == Unlimited || owned < max
}

var proOnlyBlockTypes = map[string]struct{}{
	"product_card":  {},
	"dynamic_feed":  {},
	"paywall":       {},
	"custom_domain": {},
}

// BlockTypeAllowed reports whether a plan may create a block of the given type.
func BlockTypeAllowed(p Plan, blockType string) bool {
	if p.Paid() {
		return true
	}
	_, pro := proOnlyBlockTypes[blockType]
	return !pro
}

// DefaultBlockTypes are seeded, in order, onto a free user's first page.
func DefaultBlockTypes() []string {
	return []string{"links_block", "social_block", "contact_block"}
}
