package gateway

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type userCreateRequest struct {
	Name  string `json:"name" validate:"notblank"`
	Email string `json:"email" validate:"required,email"`
}

type userUpdateRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email" validate:"omitempty,email"`
}

type itemCreateRequest struct {
	Name        string `json:"name" validate:"notblank"`
	Description string `json:"description" validate:"notblank"`
	Available   *bool  `json:"available" validate:"required"`
	RequestID   *int64 `json:"requestId" validate:"omitempty,gt=0"`
}

type itemUpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Available   *bool   `json:"available"`
}

type requestCreateRequest struct {
	Description string `json:"description" validate:"notblank"`
}

type commentCreateRequest struct {
	Text string `json:"text" validate:"notblank"`
}

type bookingCreateRequest struct {
	ItemID int64      `json:"itemId" validate:"gt=0"`
	Start  *time.Time `json:"start" validate:"required"`
	End    *time.Time `json:"end" validate:"required"`
}

func (b *bookingCreateRequest) UnmarshalJSON(data []byte) error {
	var aux struct {
		ItemID int64             `json:"itemId"`
		Start  *models.Timestamp `json:"start"`
		End    *models.Timestamp `json:"end"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*b = bookingCreateRequest{ItemID: aux.ItemID, Start: aux.Start.TimePtr(), End: aux.End.TimePtr()}
	return nil
}

// Validator checks request bodies before they are forwarded.
type Validator struct {
	validate *validator.Validate
	now      func() time.Time
}

func NewValidator(now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	v := &Validator{validate: validator.New(validator.WithRequiredStructEnabled()), now: now}

	v.validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	v.validate.RegisterStructValidation(v.bookingDates, bookingCreateRequest{})
	return v
}

// bookingDates compares start and end against each other and the clock.
// Start is checked at second precision so a client sending "now" is not rejected.
func (v *Validator) bookingDates(sl validator.StructLevel) {
	req := sl.Current().Interface().(bookingCreateRequest)
	if req.Start == nil || req.End == nil {
		return
	}
	now := v.now()
	if req.Start.Before(now.Truncate(time.Second)) {
		sl.ReportError(req.Start, "start", "Start", "futureorpresent", "")
	}
	if !req.End.After(now) {
		sl.ReportError(req.End, "end", "End", "future", "")
	}
	if !req.Start.Before(*req.End) {
		sl.ReportError(req.Start, "start", "Start", "beforeend", "")
	}
}

// Struct validates s and converts failures to a BadRequest naming each field.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.BadRequest("Invalid request: %v", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return domain.BadRequest("Validation failed: %s", strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("field %s is required", field)
	case "notblank":
		return fmt.Sprintf("field %s must not be blank", field)
	case "email":
		return fmt.Sprintf("field %s must be a valid email", field)
	case "gt":
		return fmt.Sprintf("field %s must be greater than %s", field, fe.Param())
	case "futureorpresent":
		return fmt.Sprintf("field %s must not be in the past", field)
	case "future":
		return fmt.Sprintf("field %s must be in the future", field)
	case "beforeend":
		return fmt.Sprintf("field %s must be before end", field)
	default:
		return fmt.Sprintf("field %s is not valid", field)
	}
}
