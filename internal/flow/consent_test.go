package flow

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvin/hosting/internal/model"
)

type fakeConsentRecorder struct {
	record *model.ConsentRecord
	saved  *model.ConsentRecord
}

func (f *fakeConsentRecorder) Find(ctx context.Context, clientID, userID string) (*model.ConsentRecord, error) {
	return f.record, nil
}

func (f *fakeConsentRecorder) Save(ctx context.Context, rec *model.ConsentRecord) error {
	f.saved = rec
	return nil
}

func TestConsentStage_CanSkipSilently_AlwaysRequireNeverSkips(t *testing.T) {
	s := &ConsentStage{Mode: ConsentAlwaysRequire, Recorder: &fakeConsentRecorder{}}
	assert.False(t, s.CanSkipSilently(NewPlan()))
}

func TestConsentStage_CanSkipSilently_PriorApprovalCoversRequest(t *testing.T) {
	rec := &model.ConsentRecord{
		Scope:     []string{"openid", "profile"},
		ExpiresAt: time.Now().Add(time.Hour),
	}
	s := &ConsentStage{Mode: ConsentIfNotRecorded, Recorder: &fakeConsentRecorder{record: rec}, Scope: []string{"openid"}}
	assert.True(t, s.CanSkipSilently(NewPlan()))
}

func TestConsentStage_CanSkipSilently_ExpiredApprovalDoesNotSkip(t *testing.T) {
	rec := &model.ConsentRecord{
		Scope:     []string{"openid"},
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	s := &ConsentStage{Mode: ConsentIfNotRecorded, Recorder: &fakeConsentRecorder{record: rec}, Scope: []string{"openid"}}
	assert.False(t, s.CanSkipSilently(NewPlan()))
}

func TestConsentStage_Run_RendersPromptOnGet(t *testing.T) {
	s := &ConsentStage{Mode: ConsentAlwaysRequire, Recorder: &fakeConsentRecorder{}}
	plan := NewPlan()
	plan.Context[CtxConsentHeader] = "Example RP wants to:"
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/authorize", nil)

	result, err := s.Run(rec, req, plan)
	require.NoError(t, err)
	assert.Equal(t, ResultInteractive, result)
	assert.Contains(t, rec.Body.String(), "Example RP wants to:")
}

func TestConsentStage_Run_AllowSavesRecordAndContinues(t *testing.T) {
	recorder := &fakeConsentRecorder{}
	s := &ConsentStage{Mode: ConsentAlwaysRequire, Recorder: recorder, ClientID: "client-1", UserID: "user-1", Scope: []string{"openid"}, TTL: time.Hour}
	plan := NewPlan()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/authorize", strings.NewReader(url.Values{"consent": {"allow"}}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	result, err := s.Run(rec, req, plan)
	require.NoError(t, err)
	assert.Equal(t, ResultContinue, result)
	require.NotNil(t, recorder.saved)
	assert.Equal(t, "client-1", recorder.saved.ClientID)
}

func TestConsentStage_Run_DenyRendersDeniedPage(t *testing.T) {
	s := &ConsentStage{Mode: ConsentAlwaysRequire, Recorder: &fakeConsentRecorder{}}
	plan := NewPlan()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/authorize", strings.NewReader(url.Values{"consent": {"deny"}}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	result, err := s.Run(rec, req, plan)
	require.NoError(t, err)
	assert.Equal(t, ResultInteractive, result)
	assert.Contains(t, rec.Body.String(), "Access denied")
}
