package flow

import "net/http"

// Result is what a Stage tells the Executor to do next.
type Result int

const (
	// ResultContinue means the stage's work is done; advance to the
	// next stage without involving the browser.
	ResultContinue Result = iota
	// ResultInteractive means the stage wrote a response (a redirect
	// or an HTML page) that requires the browser's participation; the
	// executor stops and leaves the plan parked at this stage.
	ResultInteractive
)

// Stage is one step of a Plan. A stage either
// completes silently (ResultContinue) or takes over the response
// (ResultInteractive), in which case it must have written to w itself.
type Stage interface {
	Name() string
	Run(w http.ResponseWriter, r *http.Request, plan *Plan) (Result, error)
}

// StageFunc adapts a function to Stage for stages with no state of
// their own (mirrors http.HandlerFunc).
type StageFunc struct {
	StageName string
	Fn        func(w http.ResponseWriter, r *http.Request, plan *Plan) (Result, error)
}

func (f StageFunc) Name() string { return f.StageName }

func (f StageFunc) Run(w http.ResponseWriter, r *http.Request, plan *Plan) (Result, error) {
	return f.Fn(w, r, plan)
}
