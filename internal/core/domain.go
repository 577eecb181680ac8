package core

import (
	"errors"
	"strings"
	"time"
)

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

const (
	MaxEmailLength       = 255
	MaxDescriptionLength = 255
	MaxCategoryName      = 255
)

type (
	// Kind distinguishes income rows and categories from expense ones.
	Kind string

	Date struct {
		time.Time
	}

	User struct {
		ID           int64
		Email        string
		PasswordHash string
		CreatedAt    time.Time
	}

	// Session is a login. Only the SHA-256 of the cookie token is stored;
	// Token is populated when the session is created and never read back.
	Session struct {
		Token     string
		TokenHash string
		UserID    int64
		Remember  bool
		ExpiresAt time.Time
		CreatedAt time.Time
	}

	Category struct {
		ID        int64
		UserID    int64
		Name      string
		IsIncome  bool
		CreatedAt time.Time
	}

	Income struct {
		ID           int64
		UserID       int64
		Amount       Money
		Description  string
		Date         Date
		CategoryID   int64
		CategoryName string
		CreatedAt    time.Time
	}

	Expense struct {
		ID           int64
		UserID       int64
		Amount       Money
		Description  string
		Date         Date
		CategoryID   int64
		CategoryName string
		CreatedAt    time.Time
	}
)

var (
	ErrInvalidDate         = errors.New("invalid date")
	ErrEmptyDescription    = errors.New("empty description")
	ErrDescriptionTooLong  = errors.New("description too long")
	ErrEmptyName           = errors.New("empty category name")
	ErrCategoryNameTooLong = errors.New("category name too long")
)

const dateLayout = "2006-01-02"

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// String renders the date as YYYY-MM-DD, the format stored in SQLite and used by <input type="date">.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

// Validate rejects the zero date, which ParseDate returns for 0001-01-01 and
// which cannot be stored.
func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Kind returns which side of the ledger the category belongs to.
func (c Category) Kind() Kind {
	if c.IsIncome {
		return KindIncome
	}
	return KindExpense
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > MaxCategoryName {
		return ErrCategoryNameTooLong
	}
	return nil
}

// ValidateDescription checks the free text of an income or expense.
func ValidateDescription(desc string) error {
	if strings.TrimSpace(desc) == "" {
		return ErrEmptyDescription
	}
	if len(desc) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	return nil
}
