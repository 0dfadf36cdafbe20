package checkout

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	pkgerrors "github.com/ginzapet/storefront/pkg/errors"
	"github.com/go-playground/validator/v10"
)

// TimeSlots is the fixed set of start times an order can be scheduled at.
var TimeSlots = []string{"09:00", "10:00", "11:00"}

// Cities is the fixed set of cities the shop delivers to.
var Cities = []string{
	"Jakarta", "Surabaya", "Bandung", "Medan", "Semarang",
	"Palembang", "Makassar", "Batam", "Pekanbaru", "Bogor",
	"Bandar Lampung", "Padang", "Denpasar", "Malang", "Samarinda",
	"Yogyakarta", "Manado", "Pontianak", "Banjarmasin", "Balikpapan",
}

// FieldErrors maps a form field (json name) to its validation messages.
type FieldErrors map[string][]string

func (f FieldErrors) Add(field, message string) {
	f[field] = append(f[field], message)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	v.RegisterValidation("timeslot", func(fl validator.FieldLevel) bool {
		return slices.Contains(TimeSlots, fl.Field().String())
	})
	v.RegisterValidation("city", func(fl validator.FieldLevel) bool {
		return slices.Contains(Cities, fl.Field().String())
	})
	return v
}

// ValidateDraft checks the draft as a whole record and returns every field
// failure at once, or nil when the draft is valid.
func ValidateDraft(draft OrderDraft) FieldErrors {
	err := validate.Struct(draft)
	if err == nil {
		return nil
	}
	fieldErrs := FieldErrors{}
	if errs, ok := err.(validator.ValidationErrors); ok {
		for _, fieldErr := range errs {
			fieldErrs.Add(fieldErr.Field(), validationMessage(fieldErr))
		}
		return fieldErrs
	}
	fieldErrs.Add("form", err.Error())
	return fieldErrs
}

// draftValidationError wraps field errors in the shared error taxonomy so
// callers can pull the per-field map back out of Details.
func draftValidationError(fieldErrs FieldErrors) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeValidation, "order form validation failed").WithDetails(fieldErrs)
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "timeslot":
		return fmt.Sprintf("must be one of %s", strings.Join(TimeSlots, ", "))
	case "city":
		return "is not a supported city"
	}
	return "is invalid"
}
