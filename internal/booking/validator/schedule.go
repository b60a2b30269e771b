package validator

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"guichet/pkg/logger"

	"github.com/go-playground/validator/v10"
)

// Slot generation hard limits. A desk cannot run appointments shorter
// than ten minutes or a window longer than a week in one batch.
const (
	MinSlotMinutes = 10
	MaxSlotMinutes = 24 * 60
	MaxWindowDays  = 7
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// AddSlotsRequest describes one bulk slot-generation batch: tile the
// window with back-to-back slots of the given duration, one run per
// desk. Margin minutes are added to each slot's booked span when the
// appointments need preparation time.
type AddSlotsRequest struct {
	SiteID          string    `json:"site_id" validate:"required"`
	WindowStart     time.Time `json:"window_start" validate:"required"`
	WindowEnd       time.Time `json:"window_end" validate:"required"`
	DurationMinutes int       `json:"duration_minutes" validate:"required,min=10,max=1440"`
	Desks           int       `json:"desks" validate:"required,min=1"`
	Margin          int       `json:"margin" validate:"min=0"`
	MarginFirstOnly bool      `json:"margin_first_only"`
}

func (r *AddSlotsRequest) Duration() time.Duration {
	return time.Duration(r.DurationMinutes) * time.Minute
}

type ScheduleValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewScheduleValidator(log *logger.Logger) *ScheduleValidator {
	v := validator.New()

	v.RegisterStructValidation(validateWindow, AddSlotsRequest{})

	log.Info("Schedule validator initialized successfully")

	return &ScheduleValidator{
		validate: v,
		logger:   log,
	}
}

func validateWindow(sl validator.StructLevel) {
	req := sl.Current().Interface().(AddSlotsRequest)

	if req.WindowStart.IsZero() || req.WindowEnd.IsZero() {
		return
	}
	if !req.WindowEnd.After(req.WindowStart) {
		sl.ReportError(req.WindowEnd, "WindowEnd", "window_end", "window_order", "")
		return
	}
	if req.WindowEnd.Sub(req.WindowStart) > MaxWindowDays*24*time.Hour {
		sl.ReportError(req.WindowEnd, "WindowEnd", "window_end", "window_span", "")
	}
}

func (v *ScheduleValidator) Validate(req *AddSlotsRequest) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *ScheduleValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "window_order":
			message = "window_end must be after window_start"
		case "window_span":
			message = fmt.Sprintf("window cannot span more than %d days", MaxWindowDays)
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
