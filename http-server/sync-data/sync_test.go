package sync_data

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Rainbow-Platypus/projet-facturation-clients-script/internal/service/reconcile"
)

type MockSyncer struct {
	mock.Mock
}

func (m *MockSyncer) Sync(ctx context.Context) (reconcile.Result, error) {
	args := m.Called(ctx)
	return args.Get(0).(reconcile.Result), args.Error(1)
}

func serve(s Syncer) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/sync", nil)
	rr := httptest.NewRecorder()
	SyncData(slog.Default(), s, time.Second).ServeHTTP(rr, req)
	return rr
}

func TestSyncData_Success(t *testing.T) {
	s := new(MockSyncer)
	s.On("Sync", mock.Anything).Return(reconcile.Result{RunID: "run-1", Companies: 2, Equipment: 5, Billable: 3}, nil)

	rr := serve(s)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{
		"message": "Synchronisation réussie",
		"result": {"runId": "run-1", "resumed": false, "companies": 2, "skipped": 0, "equipment": 5, "billable": 3}
	}`, rr.Body.String())
	s.AssertExpectations(t)
}

func TestSyncData_Failure(t *testing.T) {
	s := new(MockSyncer)
	s.On("Sync", mock.Anything).Return(reconcile.Result{}, errors.New("servicenav: connection refused"))

	rr := serve(s)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error": "Erreur lors de la synchronisation"}`, rr.Body.String())
}

func TestSyncData_AlreadyRunning(t *testing.T) {
	s := new(MockSyncer)
	s.On("Sync", mock.Anything).Return(reconcile.Result{}, reconcile.ErrSyncInProgress)

	rr := serve(s)

	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "error")
}

func TestSyncData_HasDeadline(t *testing.T) {
	s := new(MockSyncer)
	s.On("Sync", mock.MatchedBy(func(ctx context.Context) bool {
		_, ok := ctx.Deadline()
		return ok
	})).Return(reconcile.Result{}, nil)

	rr := serve(s)

	assert.Equal(t, http.StatusOK, rr.Code)
	s.AssertExpectations(t)
}
