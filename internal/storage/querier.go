package storage

import (
	"context"
	"time"

	"fintrack/internal/core"
)

// Querier is the full set of queries, usable both on the pool and inside a transaction.
type Querier interface {
	CreateUser(ctx context.Context, arg CreateUserParams) (core.User, error)
	GetUserByEmail(ctx context.Context, email string) (core.User, error)
	GetUserByID(ctx context.Context, id int64) (core.User, error)

	CreateSession(ctx context.Context, arg core.Session) error
	GetSession(ctx context.Context, tokenHash string) (core.Session, error)
	DeleteSession(ctx context.Context, tokenHash string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)

	CreateCategory(ctx context.Context, arg CreateCategoryParams) (core.Category, error)
	GetCategory(ctx context.Context, id int64) (core.Category, error)
	ListCategories(ctx context.Context, userID int64) ([]core.Category, error)
	ListCategoriesByKind(ctx context.Context, userID int64, isIncome bool) ([]core.Category, error)
	UpdateCategory(ctx context.Context, arg UpdateCategoryParams) error
	DeleteCategory(ctx context.Context, id int64) error
	CountCategoryUsage(ctx context.Context, id int64) (int64, error)

	CreateIncome(ctx context.Context, arg EntryParams) (int64, error)
	GetIncome(ctx context.Context, id int64) (core.Income, error)
	ListIncomes(ctx context.Context, userID int64) ([]core.Income, error)
	UpdateIncome(ctx context.Context, id int64, arg EntryParams) error
	DeleteIncome(ctx context.Context, id int64) error
	SumIncomes(ctx context.Context, userID int64) (int64, error)

	CreateExpense(ctx context.Context, arg EntryParams) (int64, error)
	GetExpense(ctx context.Context, id int64) (core.Expense, error)
	ListExpenses(ctx context.Context, userID int64) ([]core.Expense, error)
	UpdateExpense(ctx context.Context, id int64, arg EntryParams) error
	DeleteExpense(ctx context.Context, id int64) error
	SumExpenses(ctx context.Context, userID int64) (int64, error)
}

var _ Querier = (*Queries)(nil)
