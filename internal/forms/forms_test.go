package forms

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
)

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	v, ok := core.AsValidation(err)
	require.True(t, ok, "expected validation error, got %v", err)
	return v.Fields
}

func TestRegisterForm(t *testing.T) {
	f := ParseRegister(url.Values{
		"email":            {"  A@X.com "},
		"password":         {"pw1234"},
		"confirm_password": {"pw1234"},
	})
	assert.Equal(t, "a@x.com", f.Email)
	require.NoError(t, f.Validate())

	cases := []struct {
		name  string
		form  RegisterForm
		field string
		msg   string
	}{
		{"missing email", RegisterForm{Password: "pw1234", ConfirmPassword: "pw1234"}, "email", MsgRequired},
		{"bad email", RegisterForm{Email: "nope", Password: "pw1234", ConfirmPassword: "pw1234"}, "email", MsgInvalidEmail},
		{"no domain dot", RegisterForm{Email: "a@x", Password: "pw1234", ConfirmPassword: "pw1234"}, "email", MsgInvalidEmail},
		{"display name", RegisterForm{Email: "Bob <b@x.com>", Password: "pw1234", ConfirmPassword: "pw1234"}, "email", MsgInvalidEmail},
		{"long email", RegisterForm{Email: strings.Repeat("a", 250) + "@x.com", Password: "pw1234", ConfirmPassword: "pw1234"}, "email", MsgEmailTooLong},
		{"short password", RegisterForm{Email: "a@x.com", Password: "pw1", ConfirmPassword: "pw1"}, "password", MsgPasswordShort},
		{"long password", RegisterForm{Email: "a@x.com", Password: strings.Repeat("p", 73), ConfirmPassword: strings.Repeat("p", 73)}, "password", MsgPasswordLong},
		{"mismatch", RegisterForm{Email: "a@x.com", Password: "pw1234", ConfirmPassword: "pw12345"}, "confirm_password", MsgPasswordMatch},
		{"missing confirm", RegisterForm{Email: "a@x.com", Password: "pw1234"}, "confirm_password", MsgRequired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fields := fieldErrors(t, tc.form.Validate())
			assert.Equal(t, tc.msg, fields[tc.field])
		})
	}
}

func TestLoginForm(t *testing.T) {
	f := ParseLogin(url.Values{"email": {"a@x.com"}, "password": {"pw1234"}, "remember_me": {"y"}})
	require.NoError(t, f.Validate())
	assert.True(t, f.RememberMe)

	f = ParseLogin(url.Values{"email": {"a@x.com"}})
	assert.False(t, f.RememberMe)
	fields := fieldErrors(t, f.Validate())
	assert.Equal(t, MsgRequired, fields["password"])
}

func TestEntryForm(t *testing.T) {
	choices := []core.Category{
		{ID: 1, Name: "Salary", IsIncome: true},
		{ID: 2, Name: "Food"},
	}

	f := ParseIncome(url.Values{
		"amount":      {"1000,00"},
		"description": {"January pay"},
		"date":        {"2024-01-01"},
		"category":    {"1"},
	})
	e, err := f.Validate(choices)
	require.NoError(t, err)
	assert.Equal(t, int64(100000), e.Amount.Cents)
	assert.Equal(t, "2024-01-01", e.Date.String())
	assert.Equal(t, int64(1), e.CategoryID)

	cases := []struct {
		name   string
		values url.Values
		field  string
		msg    string
	}{
		{"missing amount", url.Values{"description": {"x"}, "date": {"2024-01-01"}, "category": {"1"}}, "amount", MsgRequired},
		{"garbage amount", url.Values{"amount": {"ten"}, "description": {"x"}, "date": {"2024-01-01"}, "category": {"1"}}, "amount", MsgInvalidAmount},
		{"zero amount", url.Values{"amount": {"0"}, "description": {"x"}, "date": {"2024-01-01"}, "category": {"1"}}, "amount", MsgAmountRange},
		{"huge amount", url.Values{"amount": {"1000000.01"}, "description": {"x"}, "date": {"2024-01-01"}, "category": {"1"}}, "amount", MsgAmountRange},
		{"negative amount", url.Values{"amount": {"-5"}, "description": {"x"}, "date": {"2024-01-01"}, "category": {"1"}}, "amount", MsgInvalidAmount},
		{"missing description", url.Values{"amount": {"1"}, "date": {"2024-01-01"}, "category": {"1"}}, "description", MsgRequired},
		{"zero date", url.Values{"amount": {"1"}, "description": {"x"}, "date": {"0001-01-01"}, "category": {"1"}}, "date", MsgInvalidDate},
		{"long description", url.Values{"amount": {"1"}, "description": {strings.Repeat("d", core.MaxDescriptionLength+1)}, "date": {"2024-01-01"}, "category": {"1"}}, "description", MsgTooLong},
		{"bad date", url.Values{"amount": {"1"}, "description": {"x"}, "date": {"01/01/2024"}, "category": {"1"}}, "date", MsgInvalidDate},
		{"wrong kind", url.Values{"amount": {"1"}, "description": {"x"}, "date": {"2024-01-01"}, "category": {"2"}}, "category", MsgInvalidChoice},
		{"foreign category", url.Values{"amount": {"1"}, "description": {"x"}, "date": {"2024-01-01"}, "category": {"99"}}, "category", MsgInvalidChoice},
		{"non numeric category", url.Values{"amount": {"1"}, "description": {"x"}, "date": {"2024-01-01"}, "category": {"abc"}}, "category", MsgInvalidChoice},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseIncome(tc.values).Validate(choices)
			assert.Equal(t, tc.msg, fieldErrors(t, err)[tc.field])
		})
	}

	// the expense side accepts only expense categories
	_, err = ParseExpense(url.Values{"amount": {"5"}, "description": {"lunch"}, "date": {"2024-01-05"}, "category": {"2"}}).Validate(choices)
	require.NoError(t, err)
}

func TestEntryFormRoundTripFromIncome(t *testing.T) {
	in := core.Income{Amount: core.Money{Cents: 5000}, Description: "Gift", Date: core.NewDate(2024, 2, 3), CategoryID: 7}
	f := IncomeFormFrom(in)
	assert.Equal(t, "50.00", f.Amount)
	assert.Equal(t, "2024-02-03", f.Date)
	assert.Equal(t, "7", f.CategoryID)
}

func TestCategoryForm(t *testing.T) {
	f := ParseCategory(url.Values{"name": {" Salary "}, "is_income": {"y"}})
	require.NoError(t, f.Validate())
	assert.Equal(t, "Salary", f.Name)
	assert.True(t, f.IsIncome)

	f = ParseCategory(url.Values{"name": {"Food"}})
	assert.False(t, f.IsIncome)

	fields := fieldErrors(t, ParseCategory(url.Values{"name": {"  "}}).Validate())
	assert.Equal(t, MsgRequired, fields["name"])

	fields = fieldErrors(t, ParseCategory(url.Values{"name": {strings.Repeat("c", core.MaxCategoryName+1)}}).Validate())
	assert.Equal(t, MsgTooLong, fields["name"])
}
