package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDepositInput(t *testing.T) {
	tests := []struct {
		name       string
		amount     string
		date       string
		note       string
		wantErrs   []string
		wantAmount string
	}{
		{
			name:       "valid deposit",
			amount:     "25.50",
			date:       "2024-03-10",
			note:       "check #112",
			wantAmount: "25.5",
		},
		{
			name:       "overpayment-sized amount is accepted",
			amount:     "99999.99",
			date:       "2024-03-10",
			wantAmount: "99999.99",
		},
		{
			name:     "negative amount",
			amount:   "-5",
			date:     "2024-03-10",
			wantErrs: []string{"amount"},
		},
		{
			name:     "zero amount",
			amount:   "0",
			date:     "2024-03-10",
			wantErrs: []string{"amount"},
		},
		{
			name:     "non-numeric amount",
			amount:   "lots",
			date:     "2024-03-10",
			wantErrs: []string{"amount"},
		},
		{
			name:     "unparseable date",
			amount:   "10.00",
			date:     "not-a-date",
			wantErrs: []string{"depositDate"},
		},
		{
			name:     "both fields invalid",
			amount:   "",
			date:     "",
			wantErrs: []string{"amount", "depositDate"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, errs := ParseDepositInput(tt.amount, tt.date, tt.note)

			if len(tt.wantErrs) == 0 {
				require.False(t, errs.Any(), "unexpected errors: %v", errs)
				assert.True(t, in.Amount.Equal(dec(tt.wantAmount)))
				assert.Equal(t, tt.note, in.Note)
				return
			}

			assert.True(t, errs.Any())
			for _, field := range tt.wantErrs {
				assert.NotEmpty(t, errs.Get(field), "expected error on %q", field)
			}
		})
	}
}

func TestParseCustomerInput(t *testing.T) {
	tests := []struct {
		name     string
		custName string
		email    string
		wantErrs []string
	}{
		{name: "valid", custName: "Santa Monica", email: "sm@example.com"},
		{name: "trims whitespace", custName: "  Acme  ", email: " acme@example.com "},
		{name: "empty name", custName: "", email: "a@example.com", wantErrs: []string{"name"}},
		{name: "bad email", custName: "Acme", email: "not-an-email", wantErrs: []string{"email"}},
		{name: "both invalid", custName: " ", email: "@", wantErrs: []string{"name", "email"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, errs := ParseCustomerInput(tt.custName, tt.email)

			if len(tt.wantErrs) == 0 {
				require.False(t, errs.Any())
				assert.NotEmpty(t, in.Name)
				assert.NotContains(t, in.Email, " ")
				return
			}

			for _, field := range tt.wantErrs {
				assert.NotEmpty(t, errs.Get(field), "expected error on %q", field)
			}
		})
	}
}
