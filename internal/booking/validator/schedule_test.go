package validator

import (
	"errors"
	"strings"
	"testing"
	"time"

	"guichet/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:   logger.LevelError,
		Format:  logger.FormatJSON,
		Service: "test",
	})
}

func validRequest() AddSlotsRequest {
	start := time.Date(2026, time.March, 4, 9, 0, 0, 0, time.UTC)
	return AddSlotsRequest{
		SiteID:          "site-0001",
		WindowStart:     start,
		WindowEnd:       start.Add(3 * time.Hour),
		DurationMinutes: 30,
		Desks:           2,
	}
}

func TestValidateAddSlotsRequest(t *testing.T) {
	v := NewScheduleValidator(testLogger())

	tests := []struct {
		name      string
		mutate    func(*AddSlotsRequest)
		wantError bool
		wantField string
	}{
		{
			name:      "valid request",
			mutate:    func(r *AddSlotsRequest) {},
			wantError: false,
		},
		{
			name:      "minimum duration accepted",
			mutate:    func(r *AddSlotsRequest) { r.DurationMinutes = 10 },
			wantError: false,
		},
		{
			name: "full day duration accepted",
			mutate: func(r *AddSlotsRequest) {
				r.DurationMinutes = 24 * 60
				r.WindowEnd = r.WindowStart.Add(48 * time.Hour)
			},
			wantError: false,
		},
		{
			name:      "duration too short",
			mutate:    func(r *AddSlotsRequest) { r.DurationMinutes = 9 },
			wantError: true,
			wantField: "DurationMinutes",
		},
		{
			name:      "duration too long",
			mutate:    func(r *AddSlotsRequest) { r.DurationMinutes = 24*60 + 1 },
			wantError: true,
			wantField: "DurationMinutes",
		},
		{
			name:      "missing site",
			mutate:    func(r *AddSlotsRequest) { r.SiteID = "" },
			wantError: true,
			wantField: "SiteID",
		},
		{
			name:      "zero desks",
			mutate:    func(r *AddSlotsRequest) { r.Desks = 0 },
			wantError: true,
			wantField: "Desks",
		},
		{
			name:      "negative margin",
			mutate:    func(r *AddSlotsRequest) { r.Margin = -1 },
			wantError: true,
			wantField: "Margin",
		},
		{
			name: "window end equals start",
			mutate: func(r *AddSlotsRequest) {
				r.WindowEnd = r.WindowStart
			},
			wantError: true,
			wantField: "WindowEnd",
		},
		{
			name: "window end before start",
			mutate: func(r *AddSlotsRequest) {
				r.WindowEnd = r.WindowStart.Add(-time.Hour)
			},
			wantError: true,
			wantField: "WindowEnd",
		},
		{
			name: "window of exactly seven days accepted",
			mutate: func(r *AddSlotsRequest) {
				r.WindowEnd = r.WindowStart.Add(7 * 24 * time.Hour)
			},
			wantError: false,
		},
		{
			name: "window longer than seven days",
			mutate: func(r *AddSlotsRequest) {
				r.WindowEnd = r.WindowStart.Add(7*24*time.Hour + time.Minute)
			},
			wantError: true,
			wantField: "WindowEnd",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)

			err := v.Validate(&req)
			if !tt.wantError {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			if err == nil {
				t.Fatal("expected validation error")
			}
			var validationErrs ValidationErrors
			if !errors.As(err, &validationErrs) {
				t.Fatalf("expected ValidationErrors, got %T: %v", err, err)
			}
			found := false
			for _, ve := range validationErrs {
				if ve.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("expected error on field %s, got %v", tt.wantField, validationErrs)
			}
		})
	}
}

func TestValidationErrorsMessage(t *testing.T) {
	errs := ValidationErrors{
		{Field: "Desks", Message: "Desks is required"},
		{Field: "SiteID", Message: "SiteID is required"},
	}

	msg := errs.Error()
	if !strings.Contains(msg, "2 error(s)") {
		t.Errorf("expected error count in message, got %q", msg)
	}
	if !strings.Contains(msg, "Desks is required") {
		t.Errorf("expected field message, got %q", msg)
	}

	if (ValidationErrors{}).Error() != "" {
		t.Error("empty ValidationErrors should render empty string")
	}
}

func TestAddSlotsRequestDuration(t *testing.T) {
	req := AddSlotsRequest{DurationMinutes: 45}
	if req.Duration() != 45*time.Minute {
		t.Errorf("expected 45m, got %v", req.Duration())
	}
}
