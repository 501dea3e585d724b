package handler

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	pkgerrors "github.com/honeynil/ShopLedgerService/pkg/errors"
)

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type purchaseRequest struct {
	ItemID   string  `json:"itemId" validate:"required,max=64"`
	Quantity int     `json:"quantity" validate:"gte=1,lte=99"`
	Coupon   *string `json:"coupon" validate:"omitempty,max=32"`
}

type cardTopupRequest struct {
	Telco  string `json:"telco" validate:"required"`
	Amount int64  `json:"amount" validate:"gt=0"`
	Serial string `json:"serial" validate:"required,max=64"`
	Pin    string `json:"pin" validate:"required,max=64"`
}

type momoCreateRequest struct {
	Amount int64 `json:"amount" validate:"gt=0"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateRequest checks a decoded request and folds the first violation into
// ErrInvalidPayload.
func (h *Handler) validateRequest(req any) error {
	err := h.validate.Struct(req)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if stderrors.As(err, &ve) && len(ve) > 0 {
		return fmt.Errorf("%w: %s", pkgerrors.ErrInvalidPayload, fieldMessage(ve[0]))
	}
	return fmt.Errorf("%w: %v", pkgerrors.ErrInvalidPayload, err)
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return field + " must be at least " + fe.Param() + " characters"
	case "max":
		return field + " must be at most " + fe.Param() + " characters"
	case "gt":
		return field + " must be greater than " + fe.Param()
	case "gte":
		return field + " must be greater than or equal to " + fe.Param()
	case "lte":
		return field + " must be less than or equal to " + fe.Param()
	default:
		return field + " is invalid"
	}
}
