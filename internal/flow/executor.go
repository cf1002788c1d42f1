package flow

import "net/http"

// Executor walks a Plan's stages in sequence. It never owns session or HTTP transport state
// beyond what a Stage writes directly to w.
type Executor struct {
	// SilentBypass is true when the response_mode doesn't require a
	// browser page for the final delivery: query and fragment can jump
	// straight to FulfillmentStage; form_post needs a page to submit, so
	// UI-bearing stages may not be skipped.
	SilentBypass bool
}

// NewExecutor derives SilentBypass from the request's effective
// response_mode.
func NewExecutor(responseMode string) *Executor {
	return &Executor{SilentBypass: responseMode == "query" || responseMode == "fragment"}
}

// Skippable lets a stage opt into the step-11 bypass: when nothing it
// would otherwise prompt for is actually outstanding, and the executor
// is allowed to skip silently, the stage can decline its own turn
// instead of rendering a transitional page.
type Skippable interface {
	CanSkipSilently(plan *Plan) bool
}

// Run advances plan from its current stage until a stage returns
// ResultInteractive or the plan is exhausted.
func (e *Executor) Run(w http.ResponseWriter, r *http.Request, plan *Plan) error {
	for plan.Current < len(plan.Stages) {
		stage := plan.Stages[plan.Current]
		isTerminal := plan.Current == len(plan.Stages)-1

		if e.SilentBypass && !isTerminal {
			if skippable, ok := stage.(Skippable); ok && skippable.CanSkipSilently(plan) {
				plan.Current++
				continue
			}
		}

		result, err := stage.Run(w, r, plan)
		if err != nil {
			return err
		}
		if result == ResultInteractive {
			return nil
		}
		plan.Current++
	}
	return nil
}
