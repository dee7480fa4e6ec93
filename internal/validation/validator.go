// Package validation checks a draft before it may be submitted. Checks run in
// a fixed order and stop at the first failure.
package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/message"

	"github.com/genzzone/storefront/internal/domain"
	"github.com/genzzone/storefront/internal/draft"
	"github.com/genzzone/storefront/internal/i18n"
)

// ErrInvalid matches every *Error with errors.Is.
var ErrInvalid = errors.New("validation failed")

// Error identifies the single offending field or line item. Item is -1 for
// customer fields.
type Error struct {
	Field   string
	Item    int
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Is(target error) bool { return target == ErrInvalid }

// Validator runs the pre-submit checks. It is safe for concurrent use.
type Validator struct {
	validate *validator.Validate
	phone    PhoneFormat
}

// New builds a Validator whose phone rule is phone.
func New(phone PhoneFormat) *Validator {
	v := validator.New()
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phone.Valid(fl.Field().String())
	})
	return &Validator{validate: v, phone: phone}
}

func (v *Validator) PhoneFormat() PhoneFormat { return v.phone }

// Validate returns nil or an *Error carrying a message rendered by p.
func (v *Validator) Validate(d *draft.Draft, p *message.Printer) error {
	if d.Lines.Len() == 0 {
		return fieldError("items", p.Sprintf(i18n.MsgNoItems))
	}

	c := d.Customer
	if v.validate.Var(strings.TrimSpace(c.Name), "required") != nil {
		return fieldError("customer_name", p.Sprintf(i18n.MsgNameRequired))
	}
	district := fmt.Sprintf("oneof=%s %s", domain.InsideDhaka, domain.OutsideDhaka)
	if v.validate.Var(string(c.District), "required,"+district) != nil {
		return fieldError("district", p.Sprintf(i18n.MsgDistrictMissing))
	}
	if v.validate.Var(strings.TrimSpace(c.Address), "required") != nil {
		return fieldError("address", p.Sprintf(i18n.MsgAddressRequired))
	}
	phone := strings.TrimSpace(c.Phone)
	if v.validate.Var(phone, "required") != nil {
		return fieldError("phone_number", p.Sprintf(i18n.MsgPhoneRequired))
	}
	if v.validate.Var(phone, "phone") != nil {
		return fieldError("phone_number", p.Sprintf(i18n.MsgPhoneInvalid, v.phone.Example))
	}

	for i, item := range d.Lines.Items() {
		if err := v.validateItem(i, item, p); err != nil {
			return err
		}
	}
	return nil
}

func (v *Validator) validateItem(i int, item draft.LineItem, p *message.Printer) error {
	name := item.Product.Name
	for _, g := range item.Product.SizeGroups() {
		if v.validate.Var(strings.TrimSpace(item.Sizes[g.Label]), "required") != nil {
			return &Error{
				Field:   "sizes." + g.Label,
				Item:    i,
				Message: p.Sprintf(i18n.MsgSizeRequired, name, g.Label),
			}
		}
	}
	if v.validate.Var(item.Quantity, "min=1") != nil {
		return &Error{Field: "quantity", Item: i, Message: p.Sprintf(i18n.MsgQuantityMin, name)}
	}
	if v.validate.Var(item.Quantity, fmt.Sprintf("max=%d", item.Product.Stock)) != nil {
		return &Error{Field: "quantity", Item: i, Message: p.Sprintf(i18n.MsgStockExceeded, name, item.Product.Stock)}
	}
	return nil
}

func fieldError(field, msg string) *Error {
	return &Error{Field: field, Item: -1, Message: msg}
}
