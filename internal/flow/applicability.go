package flow

import "context"

// Planner decides whether a provider's authorization flow reference can
// be instantiated for the current user. Full per-stage policy
// evaluation (group membership, time windows) is out of scope; this
// seam only covers the binary applicable/non-applicable outcome
// AuthorizeInit needs before it commits to a plan.
type Planner interface {
	Applicable(ctx context.Context, userID, flowSlug string) (bool, error)
}

// AllowAllFlows is a Planner that treats every flow reference as
// applicable. It is the default when no flow registry is configured.
type AllowAllFlows struct{}

func (AllowAllFlows) Applicable(context.Context, string, string) (bool, error) {
	return true, nil
}

// Registry restricts applicability to a known set of enabled flow
// slugs, denying any provider that references a flow that doesn't
// exist or has been disabled.
type Registry struct {
	enabled map[string]struct{}
}

// NewRegistry builds a Registry from the given enabled flow slugs.
func NewRegistry(slugs ...string) *Registry {
	r := &Registry{enabled: make(map[string]struct{}, len(slugs))}
	for _, s := range slugs {
		r.enabled[s] = struct{}{}
	}
	return r
}

func (r *Registry) Applicable(_ context.Context, _ string, flowSlug string) (bool, error) {
	_, ok := r.enabled[flowSlug]
	return ok, nil
}
