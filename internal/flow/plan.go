// Package flow implements a stage-pipeline executor for the
// authorization flow: a Plan carries an ordered list of Stages and an
// opaque context map, and an Executor walks the stages in order,
// stopping whenever one needs the browser's attention.
package flow

import "github.com/google/uuid"

// Plan context keys. Stable strings rather than typed keys so the same
// context map can cross a stage boundary without every stage needing to
// import every other stage's key type.
const (
	CtxParams             = "params"
	CtxApplication        = "application"
	CtxSSO                = "sso"
	CtxConsentHeader      = "consent_header"
	CtxConsentPermissions = "consent_permissions"
	CtxTitle              = "title"
)

// Plan is one authorization attempt's stage pipeline plus the context
// those stages share.
type Plan struct {
	ID      string
	Stages  []Stage
	Current int
	Context map[string]any
}

// NewPlan starts an empty plan with a fresh ID.
func NewPlan() *Plan {
	return &Plan{ID: uuid.New().String(), Context: map[string]any{}}
}

// Append adds s as the next stage.
func (p *Plan) Append(s Stage) {
	p.Stages = append(p.Stages, s)
}

// HasStage reports whether a stage named name is already in the plan.
func (p *Plan) HasStage(name string) bool {
	for _, s := range p.Stages {
		if s.Name() == name {
			return true
		}
	}
	return false
}

// Get reads a context value, returning ok=false if the key is absent or
// holds a different type than T.
func Get[T any](p *Plan, key string) (T, bool) {
	v, ok := p.Context[key]
	if !ok {
		var zero T
		return zero, false
	}
	typed, ok := v.(T)
	return typed, ok
}
