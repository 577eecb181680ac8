// Package forms parses and validates the HTML forms of the application.
//
// Each form keeps the raw submitted strings so a rejected submission can be
// rendered back to the user unchanged, and exposes a Validate method that
// returns a *core.ValidationError keyed by field name.
package forms

import (
	"errors"
	"net/mail"
	"net/url"
	"strconv"
	"strings"

	"fintrack/internal/auth"
	"fintrack/internal/core"
)

const (
	MsgRequired      = "This field is required."
	MsgInvalidEmail  = "Invalid email address."
	MsgEmailTooLong  = "Email must be at most 255 characters."
	MsgPasswordShort = "Password must be at least 6 characters."
	MsgPasswordLong  = "Password must be at most 72 bytes."
	MsgPasswordMatch = "Passwords must match."
	MsgEmailTaken    = "Email is already registered."
	MsgInvalidAmount = "Not a valid amount."
	MsgAmountRange   = "Amount must be between 0.01 and 1000000.00."
	MsgInvalidDate   = "Not a valid date (YYYY-MM-DD)."
	MsgTooLong       = "Must be at most 255 characters."
	MsgInvalidChoice = "Not a valid choice."
)

const MinPasswordLength = 6

// clean trims the value and strips control characters other than tab and newlines.
func clean(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// checkbox reports whether an HTML checkbox was ticked. Browsers omit
// unticked boxes entirely.
func checkbox(v url.Values, key string) bool {
	switch strings.ToLower(strings.TrimSpace(v.Get(key))) {
	case "", "0", "false", "off":
		return false
	}
	return true
}

// NormalizeEmail lower-cases and trims an address.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func validateEmail(v *core.ValidationError, email string) {
	switch {
	case email == "":
		v.Add("email", MsgRequired)
	case len(email) > core.MaxEmailLength:
		v.Add("email", MsgEmailTooLong)
	default:
		addr, err := mail.ParseAddress(email)
		if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@")+1:], ".") {
			v.Add("email", MsgInvalidEmail)
		}
	}
}

type RegisterForm struct {
	Email           string
	Password        string
	ConfirmPassword string
}

func ParseRegister(v url.Values) RegisterForm {
	return RegisterForm{
		Email:           NormalizeEmail(clean(v.Get("email"))),
		Password:        v.Get("password"),
		ConfirmPassword: v.Get("confirm_password"),
	}
}

func (f RegisterForm) Validate() error {
	v := &core.ValidationError{}
	validateEmail(v, f.Email)
	switch {
	case f.Password == "":
		v.Add("password", MsgRequired)
	case len(f.Password) < MinPasswordLength:
		v.Add("password", MsgPasswordShort)
	case len(f.Password) > auth.MaxPasswordBytes:
		v.Add("password", MsgPasswordLong)
	}
	switch {
	case f.ConfirmPassword == "":
		v.Add("confirm_password", MsgRequired)
	case f.ConfirmPassword != f.Password:
		v.Add("confirm_password", MsgPasswordMatch)
	}
	return v.Err()
}

type LoginForm struct {
	Email      string
	Password   string
	RememberMe bool
}

func ParseLogin(v url.Values) LoginForm {
	return LoginForm{
		Email:      NormalizeEmail(clean(v.Get("email"))),
		Password:   v.Get("password"),
		RememberMe: checkbox(v, "remember_me"),
	}
}

func (f LoginForm) Validate() error {
	v := &core.ValidationError{}
	validateEmail(v, f.Email)
	if f.Password == "" {
		v.Add("password", MsgRequired)
	}
	return v.Err()
}

// EntryForm is the income and expense form. Kind selects which categories
// are valid choices.
type EntryForm struct {
	Kind        core.Kind
	Amount      string
	Description string
	Date        string
	CategoryID  string
}

// Entry is a validated EntryForm.
type Entry struct {
	Amount      core.Money
	Description string
	Date        core.Date
	CategoryID  int64
}

func ParseIncome(v url.Values) EntryForm  { return parseEntry(core.KindIncome, v) }
func ParseExpense(v url.Values) EntryForm { return parseEntry(core.KindExpense, v) }

func parseEntry(kind core.Kind, v url.Values) EntryForm {
	return EntryForm{
		Kind:        kind,
		Amount:      clean(v.Get("amount")),
		Description: clean(v.Get("description")),
		Date:        clean(v.Get("date")),
		CategoryID:  clean(v.Get("category")),
	}
}

// IncomeFormFrom pre-fills the form for editing an existing income.
func IncomeFormFrom(i core.Income) EntryForm {
	return EntryForm{
		Kind:        core.KindIncome,
		Amount:      i.Amount.String(),
		Description: i.Description,
		Date:        i.Date.String(),
		CategoryID:  strconv.FormatInt(i.CategoryID, 10),
	}
}

func ExpenseFormFrom(e core.Expense) EntryForm {
	return EntryForm{
		Kind:        core.KindExpense,
		Amount:      e.Amount.String(),
		Description: e.Description,
		Date:        e.Date.String(),
		CategoryID:  strconv.FormatInt(e.CategoryID, 10),
	}
}

// Validate checks the form against choices, the categories the current user
// may pick. Categories of the other kind are rejected.
func (f EntryForm) Validate(choices []core.Category) (Entry, error) {
	v := &core.ValidationError{}
	var out Entry

	if f.Amount == "" {
		v.Add("amount", MsgRequired)
	} else if m, err := core.ParseMoney(f.Amount); err != nil {
		v.Add("amount", MsgInvalidAmount)
	} else if m.Validate() != nil {
		v.Add("amount", MsgAmountRange)
	} else {
		out.Amount = m
	}

	switch err := core.ValidateDescription(f.Description); {
	case errors.Is(err, core.ErrEmptyDescription):
		v.Add("description", MsgRequired)
	case err != nil:
		v.Add("description", MsgTooLong)
	default:
		out.Description = f.Description
	}

	if f.Date == "" {
		v.Add("date", MsgRequired)
	} else if d, err := core.ParseDate(f.Date); err != nil || d.Validate() != nil {
		v.Add("date", MsgInvalidDate)
	} else {
		out.Date = d
	}

	if f.CategoryID == "" {
		v.Add("category", MsgRequired)
	} else if id, err := strconv.ParseInt(f.CategoryID, 10, 64); err != nil || !validChoice(choices, id, f.Kind) {
		v.Add("category", MsgInvalidChoice)
	} else {
		out.CategoryID = id
	}

	if err := v.Err(); err != nil {
		return Entry{}, err
	}
	return out, nil
}

func validChoice(choices []core.Category, id int64, kind core.Kind) bool {
	for _, c := range choices {
		if c.ID == id {
			return c.Kind() == kind
		}
	}
	return false
}

type CategoryForm struct {
	Name     string
	IsIncome bool
}

func ParseCategory(v url.Values) CategoryForm {
	return CategoryForm{
		Name:     clean(v.Get("name")),
		IsIncome: checkbox(v, "is_income"),
	}
}

func CategoryFormFrom(c core.Category) CategoryForm {
	return CategoryForm{Name: c.Name, IsIncome: c.IsIncome}
}

func (f CategoryForm) Validate() error {
	v := &core.ValidationError{}
	switch err := (core.Category{Name: f.Name, IsIncome: f.IsIncome}).Validate(); {
	case errors.Is(err, core.ErrEmptyName):
		v.Add("name", MsgRequired)
	case err != nil:
		v.Add("name", MsgTooLong)
	}
	return v.Err()
}
