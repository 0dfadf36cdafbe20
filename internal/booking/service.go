// Package booking looks up submitted orders by transaction id and email.
package booking

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/ginzapet/storefront/internal/catalog"
	pkgerrors "github.com/ginzapet/storefront/pkg/errors"
	"github.com/go-playground/validator/v10"
)

// Query identifies one order: the transaction id from the confirmation plus
// the email it was placed under.
type Query struct {
	Email string `json:"email" validate:"required,email"`
	TrxID string `json:"booking_trx_id" validate:"required"`
}

type bookingChecker interface {
	CheckBooking(ctx context.Context, email, trxID string) (*catalog.OrderDetails, error)
}

// Service validates lookup queries and fetches order details.
type Service struct {
	api      bookingChecker
	validate *validator.Validate
}

func NewService(api bookingChecker) (*Service, error) {
	if api == nil {
		return nil, fmt.Errorf("catalog client required")
	}
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return &Service{api: api, validate: v}, nil
}

// Lookup returns the order details for the query, or a not-found error when
// the server does not recognize the transaction id / email pair.
func (s *Service) Lookup(ctx context.Context, query Query) (*catalog.OrderDetails, error) {
	if err := s.validate.Struct(query); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok {
			details := map[string]string{}
			for _, fieldErr := range errs {
				details[fieldErr.Field()] = "is invalid"
			}
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "booking lookup validation failed").WithDetails(details)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "booking lookup validation failed")
	}
	return s.api.CheckBooking(ctx, query.Email, query.TrxID)
}
