package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"

	"guichet/internal/booking/service"
	"guichet/internal/booking/validator"
	apperrors "guichet/pkg/errors"
	"guichet/pkg/logger"
	"guichet/pkg/model"
)

// Mock service for testing
type mockBookingService struct {
	bookFunc       func(ctx context.Context, siteID string, ref model.CaseRef, opts service.BookOptions) (*model.BookingResult, error)
	confirmFunc    func(ctx context.Context, result *model.BookingResult) error
	addSlotsFunc   func(ctx context.Context, req *validator.AddSlotsRequest) ([]*model.Slot, error)
	listFunc       func(ctx context.Context, siteID string, filter service.ListFilter) ([]*model.Slot, error)
	reserveAllFunc func(ctx context.Context, slotIDs []string, ref model.CaseRef) ([]*model.Slot, error)
	releaseFunc    func(ctx context.Context, slotID string) (*model.Slot, error)
}

func (m *mockBookingService) Book(ctx context.Context, siteID string, ref model.CaseRef, opts service.BookOptions) (*model.BookingResult, error) {
	if m.bookFunc != nil {
		return m.bookFunc(ctx, siteID, ref, opts)
	}
	return &model.BookingResult{}, nil
}

func (m *mockBookingService) Confirm(ctx context.Context, result *model.BookingResult) error {
	if m.confirmFunc != nil {
		return m.confirmFunc(ctx, result)
	}
	result.Confirmed = true
	return nil
}

func (m *mockBookingService) Cancel(ctx context.Context, result *model.BookingResult) error {
	return nil
}

func (m *mockBookingService) ReserveAll(ctx context.Context, slotIDs []string, ref model.CaseRef) ([]*model.Slot, error) {
	if m.reserveAllFunc != nil {
		return m.reserveAllFunc(ctx, slotIDs, ref)
	}
	return nil, nil
}

func (m *mockBookingService) ReleaseSlot(ctx context.Context, slotID string) (*model.Slot, error) {
	if m.releaseFunc != nil {
		return m.releaseFunc(ctx, slotID)
	}
	return &model.Slot{}, nil
}

func (m *mockBookingService) AddSlots(ctx context.Context, req *validator.AddSlotsRequest) ([]*model.Slot, error) {
	if m.addSlotsFunc != nil {
		return m.addSlotsFunc(ctx, req)
	}
	return nil, nil
}

func (m *mockBookingService) ListUpcomingSlots(ctx context.Context, siteID string, filter service.ListFilter) ([]*model.Slot, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, siteID, filter)
	}
	return []*model.Slot{}, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:   logger.LevelError,
		Format:  logger.FormatJSON,
		Service: "test",
	})
}

func newRouter(svc service.BookingService) *httprouter.Router {
	router := httprouter.New()
	NewBookingHandler(svc, testLogger()).RegisterRoutes(router)
	return router
}

func TestBook_SatisfiedReturns201(t *testing.T) {
	start := time.Date(2026, time.March, 4, 9, 0, 0, 0, time.UTC)
	var receivedSite string
	var receivedRef model.CaseRef
	var receivedOpts service.BookOptions

	mock := &mockBookingService{
		bookFunc: func(ctx context.Context, siteID string, ref model.CaseRef, opts service.BookOptions) (*model.BookingResult, error) {
			receivedSite = siteID
			receivedRef = ref
			receivedOpts = opts
			return &model.BookingResult{
				Satisfied: true,
				Slots: []*model.Slot{{
					Meta:      model.Meta{ID: "slot-001", Version: 2},
					SiteID:    siteID,
					StartTime: start,
					EndTime:   start.Add(30 * time.Minute),
					Reserved:  true,
					CaseRef:   &ref,
				}},
			}, nil
		},
	}

	body := `{"case_kind":"recueil_da","case_id":"dossier-42","family":true,"max_days_ahead":5}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sites/site-001/bookings", strings.NewReader(body))
	rec := httptest.NewRecorder()
	newRouter(mock).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if receivedSite != "site-001" {
		t.Errorf("expected site from path, got %q", receivedSite)
	}
	if receivedRef.Kind != model.CaseRecueil || receivedRef.ID != "dossier-42" {
		t.Errorf("case ref not passed through: %+v", receivedRef)
	}
	if !receivedOpts.Family || receivedOpts.MaxDaysAhead != 5 {
		t.Errorf("options not passed through: %+v", receivedOpts)
	}

	var resp struct {
		Data struct {
			Satisfied bool          `json:"satisfied"`
			Confirmed bool          `json:"confirmed"`
			Slots     []*model.Slot `json:"slots"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if !resp.Data.Satisfied || !resp.Data.Confirmed || len(resp.Data.Slots) != 1 {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestBook_UnsatisfiedReturns200(t *testing.T) {
	mock := &mockBookingService{
		bookFunc: func(ctx context.Context, siteID string, ref model.CaseRef, opts service.BookOptions) (*model.BookingResult, error) {
			return &model.BookingResult{Satisfied: false}, nil
		},
	}

	body := `{"case_kind":"recueil_da","case_id":"dossier-42"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sites/site-001/bookings", strings.NewReader(body))
	rec := httptest.NewRecorder()
	newRouter(mock).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"satisfied":false`) {
		t.Errorf("expected unsatisfied response, got %s", rec.Body.String())
	}
}

func TestBook_ErrorsMappedToStatus(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{"unknown site", apperrors.NotFoundWithID("Site", "x"), http.StatusNotFound},
		{"bad case kind", apperrors.InvalidInput("Unknown case kind"), http.StatusBadRequest},
		{"exhausted retries", apperrors.PreconditionFailed("conflicts", nil), http.StatusPreconditionFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockBookingService{
				bookFunc: func(ctx context.Context, siteID string, ref model.CaseRef, opts service.BookOptions) (*model.BookingResult, error) {
					return nil, tt.serviceErr
				},
			}

			body := `{"case_kind":"recueil_da","case_id":"d1"}`
			req := httptest.NewRequest(http.MethodPost, "/api/v1/sites/site-001/bookings", strings.NewReader(body))
			rec := httptest.NewRecorder()
			newRouter(mock).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestBook_InvalidBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sites/site-001/bookings", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	newRouter(&mockBookingService{}).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAddSlots_SiteFromPath(t *testing.T) {
	var received *validator.AddSlotsRequest
	mock := &mockBookingService{
		addSlotsFunc: func(ctx context.Context, req *validator.AddSlotsRequest) ([]*model.Slot, error) {
			received = req
			return []*model.Slot{}, nil
		},
	}

	body := `{"window_start":"2026-03-04T09:00:00Z","window_end":"2026-03-04T12:00:00Z","duration_minutes":30,"desks":2}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sites/site-007/slots", strings.NewReader(body))
	rec := httptest.NewRecorder()
	newRouter(mock).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if received == nil || received.SiteID != "site-007" {
		t.Errorf("expected site ID injected from path, got %+v", received)
	}
	if received.DurationMinutes != 30 || received.Desks != 2 {
		t.Errorf("request body not decoded: %+v", received)
	}
}

func TestListSlots_QueryParameters(t *testing.T) {
	var receivedFilter service.ListFilter
	mock := &mockBookingService{
		listFunc: func(ctx context.Context, siteID string, filter service.ListFilter) ([]*model.Slot, error) {
			receivedFilter = filter
			return []*model.Slot{}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/sites/site-001/slots?free_only=true&limit=5&from=2026-03-04T00:00:00Z", nil)
	rec := httptest.NewRecorder()
	newRouter(mock).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !receivedFilter.FreeOnly || receivedFilter.Limit != 5 {
		t.Errorf("filter not passed through: %+v", receivedFilter)
	}
	if receivedFilter.From.IsZero() {
		t.Error("from parameter not parsed")
	}
}

func TestListSlots_InvalidLimit(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/sites/site-001/slots?limit=abc", nil)
	rec := httptest.NewRecorder()
	newRouter(&mockBookingService{}).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestReserveAllEndpoint(t *testing.T) {
	var receivedIDs []string
	mock := &mockBookingService{
		reserveAllFunc: func(ctx context.Context, slotIDs []string, ref model.CaseRef) ([]*model.Slot, error) {
			receivedIDs = slotIDs
			return []*model.Slot{{}, {}}, nil
		},
	}

	body := `{"slot_ids":["a","b"],"case_kind":"droit","case_id":"d1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/reserve", strings.NewReader(body))
	rec := httptest.NewRecorder()
	newRouter(mock).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(receivedIDs) != 2 {
		t.Errorf("slot IDs not passed through: %v", receivedIDs)
	}
}

func TestReleaseEndpoint(t *testing.T) {
	mock := &mockBookingService{
		releaseFunc: func(ctx context.Context, slotID string) (*model.Slot, error) {
			if slotID != "slot-001" {
				t.Errorf("expected slot-001, got %s", slotID)
			}
			return &model.Slot{Meta: model.Meta{ID: slotID}}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/slots/slot-001/release", nil)
	rec := httptest.NewRecorder()
	newRouter(mock).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
