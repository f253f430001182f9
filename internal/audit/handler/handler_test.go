package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/sullis/logging-log4j-audit/internal/audit"
	"github.com/sullis/logging-log4j-audit/internal/audit/handler/mocks"
	dErrors "github.com/sullis/logging-log4j-audit/pkg/domain-errors"
	"github.com/sullis/logging-log4j-audit/pkg/requestcontext"
	"github.com/sullis/logging-log4j-audit/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/handler-mocks.go -package=mocks EventLogger,MessageStore
type AuditHandlerSuite struct {
	suite.Suite
	ctx context.Context
}

func (s *AuditHandlerSuite) SetupSuite() {
	s.ctx = context.Background()
}

func TestAuditHandlerSuite(t *testing.T) {
	suite.Run(t, new(AuditHandlerSuite))
}

func newTestHandler(t *testing.T) (http.Handler, *mocks.MockEventLogger, *mocks.MockMessageStore) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	mockEvents := mocks.NewMockEventLogger(ctrl)
	mockStore := mocks.NewMockMessageStore(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := chi.NewRouter()
	New(mockEvents, mockStore, logger).Register(r)
	RegisterHealth(r)
	return r, mockEvents, mockStore
}

func (s *AuditHandlerSuite) postEvent(router http.Handler, body string) *httptest.ResponseRecorder {
	req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/event/log", body)
	return testutil.DoRequest(router, req)
}

func (s *AuditHandlerSuite) TestLogEventSuccess() {
	router, mockEvents, _ := newTestHandler(s.T())
	mockEvents.EXPECT().
		LogEventInCatalog(gomock.Any(), "UserLogin", "", map[string]string{"userId": "alice"}).
		Return(nil)

	w := s.postEvent(router, `{"eventName":"UserLogin","attributes":{"userId":"alice"}}`)

	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"status":"logged"}`, w.Body.String())
}

func (s *AuditHandlerSuite) TestLogEventExplicitCatalog() {
	router, mockEvents, _ := newTestHandler(s.T())
	mockEvents.EXPECT().
		LogEventInCatalog(gomock.Any(), "Transfer", "BANKING", map[string]string{"amount": "10"}).
		Return(nil)

	w := s.postEvent(router, `{"eventName":"Transfer","catalogId":"BANKING","attributes":{"amount":"10"}}`)

	s.Equal(http.StatusOK, w.Code)
}

func (s *AuditHandlerSuite) TestLogEventBodyContextMerged() {
	router, mockEvents, _ := newTestHandler(s.T())
	mockEvents.EXPECT().
		LogEventInCatalog(gomock.Any(), "UserLogin", "", gomock.Nil()).
		DoAndReturn(func(ctx context.Context, _, _ string, _ map[string]string) error {
			s.Equal("r-7", requestcontext.Value(ctx, "requestId"))
			return nil
		})

	w := s.postEvent(router, `{"eventName":"UserLogin","requestContext":{"requestId":"r-7"}}`)

	s.Equal(http.StatusOK, w.Code)
}

func (s *AuditHandlerSuite) TestLogEventMalformedBody() {
	router, _, _ := newTestHandler(s.T())

	w := s.postEvent(router, `{"eventName":`)

	s.Equal(http.StatusBadRequest, w.Code)
	var body map[string]string
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&body))
	s.Equal("bad_request", body["error"])
}

func (s *AuditHandlerSuite) TestLogEventMissingName() {
	router, _, _ := newTestHandler(s.T())

	w := s.postEvent(router, `{"attributes":{"userId":"alice"}}`)

	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *AuditHandlerSuite) TestLogEventValidationErrorsMapped() {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"unknown event", dErrors.New(dErrors.CodeUnknownEvent, "unable to locate definition of audit event Nope"), http.StatusNotFound, "unknown_event"},
		{"invalid attributes", dErrors.New(dErrors.CodeInvalidAttributes, "event UserLogin is missing required attribute(s) userId"), http.StatusBadRequest, "invalid_attributes"},
		{"missing context", dErrors.New(dErrors.CodeMissingContext, "event UserLogin is missing required request context values for requestId"), http.StatusUnprocessableEntity, "missing_context"},
		{"sink failure", dErrors.New(dErrors.CodeSinkFailure, "error logging event UserLogin"), http.StatusBadGateway, "sink_failure"},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			router, mockEvents, _ := newTestHandler(s.T())
			mockEvents.EXPECT().
				LogEventInCatalog(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
				Return(tc.err)

			w := s.postEvent(router, `{"eventName":"UserLogin"}`)

			testutil.AssertStatusAndError(s.T(), w, tc.wantStatus, tc.wantCode)
		})
	}
}

func (s *AuditHandlerSuite) TestListEvents() {
	router, _, mockStore := newTestHandler(s.T())
	stored := []audit.Message{
		{ID: "m-1", Name: "UserLogin", CatalogID: "DEFAULT", Timestamp: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)},
	}
	mockStore.EXPECT().ListRecent(gomock.Any(), 100).Return(stored, nil)

	w := testutil.DoRequest(router, testutil.NewRequest(s.T(), http.MethodGet, "/events"))

	testutil.AssertStatusOK(s.T(), w)
	got := testutil.UnmarshalResponse[[]audit.Message](s.T(), w)
	s.Require().Len(*got, 1)
	s.Equal("UserLogin", (*got)[0].Name)
}

func (s *AuditHandlerSuite) TestListEventsCustomLimit() {
	router, _, mockStore := newTestHandler(s.T())
	mockStore.EXPECT().ListRecent(gomock.Any(), 5).Return(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/events?limit=5", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`[]`, w.Body.String())
}

func (s *AuditHandlerSuite) TestListEventsBadLimit() {
	router, _, _ := newTestHandler(s.T())

	req := httptest.NewRequest(http.MethodGet, "/events?limit=zero", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *AuditHandlerSuite) TestListEventsStoreFailure() {
	router, _, mockStore := newTestHandler(s.T())
	mockStore.EXPECT().ListRecent(gomock.Any(), 100).Return(nil, errors.New("connection refused"))

	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	s.Equal(http.StatusInternalServerError, w.Code)
	var body map[string]string
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&body))
	s.Equal("internal_error", body["error"])
	s.NotContains(w.Body.String(), "connection refused")
}

func (s *AuditHandlerSuite) TestHealthz() {
	router, _, _ := newTestHandler(s.T())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"status":"ok"}`, w.Body.String())
}
