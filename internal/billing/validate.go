package billing

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FieldErrors maps a form field name to a user-facing validation message.
// These are expected user-input conditions, returned for re-rendering the
// form, never escalated as failures.
type FieldErrors map[string]string

// Any reports whether any field failed validation
func (fe FieldErrors) Any() bool { return len(fe) > 0 }

// Get returns the message for a field, or empty
func (fe FieldErrors) Get(field string) string { return fe[field] }

var emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

const dateInputFormat = "2006-01-02"

// DepositInput is a validated deposit creation request
type DepositInput struct {
	Amount      decimal.Decimal
	DepositDate time.Time
	Note        string
}

// ParseDepositInput validates raw form values for a new deposit. Amount must
// be a positive number and the date a valid calendar date. No upper bound is
// enforced against the remaining amount due: overpayment is permitted, and
// the derivation layer treats the resulting negative balance as paid.
func ParseDepositInput(amount, depositDate, note string) (DepositInput, FieldErrors) {
	errs := FieldErrors{}
	var in DepositInput

	amt, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil || !amt.IsPositive() {
		errs["amount"] = "Amount must be a positive number"
	} else {
		in.Amount = amt
	}

	day, err := time.Parse(dateInputFormat, strings.TrimSpace(depositDate))
	if err != nil {
		errs["depositDate"] = "Please enter a valid date"
	} else {
		in.DepositDate = day
	}

	in.Note = strings.TrimSpace(note)
	if errs.Any() {
		return DepositInput{}, errs
	}
	return in, nil
}

// CustomerInput is a validated customer creation request
type CustomerInput struct {
	Name  string
	Email string
}

// ParseCustomerInput validates raw form values for a new customer
func ParseCustomerInput(name, email string) (CustomerInput, FieldErrors) {
	errs := FieldErrors{}

	name = strings.TrimSpace(name)
	if name == "" {
		errs["name"] = "Please enter a valid name"
	}

	email = strings.TrimSpace(email)
	if !emailRe.MatchString(email) {
		errs["email"] = "Please enter a valid email"
	}

	if errs.Any() {
		return CustomerInput{}, errs
	}
	return CustomerInput{Name: name, Email: email}, nil
}
