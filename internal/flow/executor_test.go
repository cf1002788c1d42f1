package flow

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingStage struct {
	name   string
	result Result
	ran    *[]string
}

func (s recordingStage) Name() string { return s.name }

func (s recordingStage) Run(w http.ResponseWriter, r *http.Request, plan *Plan) (Result, error) {
	*s.ran = append(*s.ran, s.name)
	return s.result, nil
}

func TestExecutor_RunsStagesInOrderUntilInteractive(t *testing.T) {
	var ran []string
	plan := NewPlan()
	plan.Append(recordingStage{name: "a", result: ResultContinue, ran: &ran})
	plan.Append(recordingStage{name: "b", result: ResultInteractive, ran: &ran})
	plan.Append(recordingStage{name: "c", result: ResultContinue, ran: &ran})

	exec := NewExecutor("query")
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/authorize", nil)
	require.NoError(t, exec.Run(rec, req, plan))

	assert.Equal(t, []string{"a", "b"}, ran)
	assert.Equal(t, 1, plan.Current, "plan should park at the interactive stage")
}

type skippableStage struct {
	recordingStage
	skip bool
}

func (s skippableStage) CanSkipSilently(plan *Plan) bool { return s.skip }

func TestExecutor_SkipsSkippableStageWhenBypassAllowed(t *testing.T) {
	var ran []string
	plan := NewPlan()
	plan.Append(skippableStage{recordingStage{name: "consent", result: ResultInteractive, ran: &ran}, true})
	plan.Append(recordingStage{name: "fulfillment", result: ResultContinue, ran: &ran})

	exec := NewExecutor("query")
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/authorize", nil)
	require.NoError(t, exec.Run(rec, req, plan))

	assert.Equal(t, []string{"fulfillment"}, ran, "skippable consent stage must not run")
}

func TestExecutor_NeverSkipsTheTerminalStage(t *testing.T) {
	var ran []string
	plan := NewPlan()
	plan.Append(skippableStage{recordingStage{name: "only", result: ResultInteractive, ran: &ran}, true})

	exec := NewExecutor("query")
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/authorize", nil)
	require.NoError(t, exec.Run(rec, req, plan))

	assert.Equal(t, []string{"only"}, ran)
}

func TestExecutor_FormPostNeverSkipsEvenIfSkippable(t *testing.T) {
	var ran []string
	plan := NewPlan()
	plan.Append(skippableStage{recordingStage{name: "consent", result: ResultContinue, ran: &ran}, true})
	plan.Append(recordingStage{name: "fulfillment", result: ResultContinue, ran: &ran})

	exec := NewExecutor("form_post")
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/authorize", nil)
	require.NoError(t, exec.Run(rec, req, plan))

	assert.Equal(t, []string{"consent", "fulfillment"}, ran)
}

func TestPlan_HasStage(t *testing.T) {
	plan := NewPlan()
	var ran []string
	plan.Append(recordingStage{name: "consent", ran: &ran})
	assert.True(t, plan.HasStage("consent"))
	assert.False(t, plan.HasStage("login"))
}

func TestPlanGet_TypeMismatchReturnsNotOK(t *testing.T) {
	plan := NewPlan()
	plan.Context[CtxTitle] = 5
	_, ok := Get[string](plan, CtxTitle)
	assert.False(t, ok)
}
