package services

import (
	"context"
	"fmt"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/forms"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// LedgerService owns categories, incomes and expenses. Every operation is
// scoped to the calling user: rows of other users are reported as
// core.ErrForbidden and missing rows as core.ErrNotFound.
type LedgerService struct {
	store     Store
	publisher EventPublisher
	logger    *log.Logger
	events    *log.StructuredLogger
	now       func() time.Time
}

// NewLedgerService creates the service. publisher may be nil.
func NewLedgerService(store Store, publisher EventPublisher) *LedgerService {
	logger := log.NewDefault().WithComponent(log.ComponentLedger)
	return &LedgerService{
		store:     store,
		publisher: publisher,
		logger:    logger,
		events:    log.NewStructuredLogger(logger),
		now:       time.Now,
	}
}

// committed logs the change and hands the event to the publisher. Publish
// errors never fail the request: the row is already saved.
func (s *LedgerService) committed(ctx context.Context, op string, ev *amqp.LedgerEvent) {
	s.events.LogLedgerChange(ctx, op, string(ev.Entity), ev.ID, ev.UserID, ev.AmountCents)
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishLedgerEvent(ctx, ev); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish ledger event",
			log.FieldError, err,
			log.FieldEventID, ev.EventID,
			log.FieldEntity, string(ev.Entity),
			log.FieldEntityID, ev.ID)
	}
}

func owned(rowUserID, userID int64) error {
	if rowUserID != userID {
		return core.ErrForbidden
	}
	return nil
}

// Categories

func (s *LedgerService) ListCategories(ctx context.Context, userID int64) ([]core.Category, error) {
	return s.store.ListCategories(ctx, userID)
}

// CategoriesByKind returns the categories a user may pick for an entry of kind.
func (s *LedgerService) CategoriesByKind(ctx context.Context, userID int64, kind core.Kind) ([]core.Category, error) {
	return s.store.ListCategoriesByKind(ctx, userID, kind == core.KindIncome)
}

func (s *LedgerService) GetCategory(ctx context.Context, userID, id int64) (core.Category, error) {
	c, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return core.Category{}, err
	}
	if err := owned(c.UserID, userID); err != nil {
		return core.Category{}, err
	}
	return c, nil
}

func (s *LedgerService) CreateCategory(ctx context.Context, userID int64, f forms.CategoryForm) (core.Category, error) {
	if err := f.Validate(); err != nil {
		return core.Category{}, err
	}
	c, err := s.store.CreateCategory(ctx, storage.CreateCategoryParams{
		UserID:    userID,
		Name:      f.Name,
		IsIncome:  f.IsIncome,
		CreatedAt: s.now(),
	})
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	s.committed(ctx, log.OpCreate, amqp.CategoryEvent(amqp.ActionCreated, c))
	return c, nil
}

// UpdateCategory renames a category or flips its kind. The kind of a
// category already used by incomes or expenses cannot change.
func (s *LedgerService) UpdateCategory(ctx context.Context, userID, id int64, f forms.CategoryForm) (core.Category, error) {
	var c core.Category
	err := s.store.InTx(ctx, func(q storage.Querier) error {
		var err error
		c, err = q.GetCategory(ctx, id)
		if err != nil {
			return err
		}
		if err := owned(c.UserID, userID); err != nil {
			return err
		}
		if err := f.Validate(); err != nil {
			return err
		}
		if c.IsIncome != f.IsIncome {
			n, err := q.CountCategoryUsage(ctx, id)
			if err != nil {
				return err
			}
			if n > 0 {
				return core.ErrCategoryInUse
			}
		}
		c.Name, c.IsIncome = f.Name, f.IsIncome
		return q.UpdateCategory(ctx, storage.UpdateCategoryParams{ID: id, Name: c.Name, IsIncome: c.IsIncome})
	})
	if err != nil {
		return core.Category{}, err
	}
	s.committed(ctx, log.OpUpdate, amqp.CategoryEvent(amqp.ActionUpdated, c))
	return c, nil
}

// DeleteCategory removes a category that no income or expense references.
func (s *LedgerService) DeleteCategory(ctx context.Context, userID, id int64) error {
	var c core.Category
	err := s.store.InTx(ctx, func(q storage.Querier) error {
		var err error
		c, err = q.GetCategory(ctx, id)
		if err != nil {
			return err
		}
		if err := owned(c.UserID, userID); err != nil {
			return err
		}
		n, err := q.CountCategoryUsage(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return core.ErrCategoryInUse
		}
		return q.DeleteCategory(ctx, id)
	})
	if err != nil {
		return err
	}
	s.committed(ctx, log.OpDelete, amqp.CategoryEvent(amqp.ActionDeleted, c))
	return nil
}

// validEntry validates f against the user's categories of the form's kind,
// read inside the same transaction as the write.
func validEntry(ctx context.Context, q storage.Querier, userID int64, f forms.EntryForm) (forms.Entry, error) {
	choices, err := q.ListCategoriesByKind(ctx, userID, f.Kind == core.KindIncome)
	if err != nil {
		return forms.Entry{}, err
	}
	return f.Validate(choices)
}

func entryParams(userID int64, e forms.Entry, now time.Time) storage.EntryParams {
	return storage.EntryParams{
		UserID:      userID,
		CategoryID:  e.CategoryID,
		AmountCents: e.Amount.Cents,
		Description: e.Description,
		Date:        e.Date,
		CreatedAt:   now,
	}
}

// Incomes

func (s *LedgerService) GetIncome(ctx context.Context, userID, id int64) (core.Income, error) {
	in, err := s.store.GetIncome(ctx, id)
	if err != nil {
		return core.Income{}, err
	}
	if err := owned(in.UserID, userID); err != nil {
		return core.Income{}, err
	}
	return in, nil
}

func (s *LedgerService) CreateIncome(ctx context.Context, userID int64, f forms.EntryForm) (core.Income, error) {
	f.Kind = core.KindIncome
	var in core.Income
	err := s.store.InTx(ctx, func(q storage.Querier) error {
		e, err := validEntry(ctx, q, userID, f)
		if err != nil {
			return err
		}
		id, err := q.CreateIncome(ctx, entryParams(userID, e, s.now()))
		if err != nil {
			return err
		}
		in, err = q.GetIncome(ctx, id)
		return err
	})
	if err != nil {
		return core.Income{}, err
	}
	s.committed(ctx, log.OpCreate, amqp.IncomeEvent(amqp.ActionCreated, in))
	return in, nil
}

func (s *LedgerService) UpdateIncome(ctx context.Context, userID, id int64, f forms.EntryForm) (core.Income, error) {
	f.Kind = core.KindIncome
	var in core.Income
	err := s.store.InTx(ctx, func(q storage.Querier) error {
		current, err := q.GetIncome(ctx, id)
		if err != nil {
			return err
		}
		if err := owned(current.UserID, userID); err != nil {
			return err
		}
		e, err := validEntry(ctx, q, userID, f)
		if err != nil {
			return err
		}
		if err := q.UpdateIncome(ctx, id, entryParams(userID, e, current.CreatedAt)); err != nil {
			return err
		}
		in, err = q.GetIncome(ctx, id)
		return err
	})
	if err != nil {
		return core.Income{}, err
	}
	s.committed(ctx, log.OpUpdate, amqp.IncomeEvent(amqp.ActionUpdated, in))
	return in, nil
}

func (s *LedgerService) DeleteIncome(ctx context.Context, userID, id int64) error {
	var in core.Income
	err := s.store.InTx(ctx, func(q storage.Querier) error {
		var err error
		in, err = q.GetIncome(ctx, id)
		if err != nil {
			return err
		}
		if err := owned(in.UserID, userID); err != nil {
			return err
		}
		return q.DeleteIncome(ctx, id)
	})
	if err != nil {
		return err
	}
	s.committed(ctx, log.OpDelete, amqp.IncomeEvent(amqp.ActionDeleted, in))
	return nil
}

// Expenses

func (s *LedgerService) GetExpense(ctx context.Context, userID, id int64) (core.Expense, error) {
	ex, err := s.store.GetExpense(ctx, id)
	if err != nil {
		return core.Expense{}, err
	}
	if err := owned(ex.UserID, userID); err != nil {
		return core.Expense{}, err
	}
	return ex, nil
}

func (s *LedgerService) CreateExpense(ctx context.Context, userID int64, f forms.EntryForm) (core.Expense, error) {
	f.Kind = core.KindExpense
	var ex core.Expense
	err := s.store.InTx(ctx, func(q storage.Querier) error {
		e, err := validEntry(ctx, q, userID, f)
		if err != nil {
			return err
		}
		id, err := q.CreateExpense(ctx, entryParams(userID, e, s.now()))
		if err != nil {
			return err
		}
		ex, err = q.GetExpense(ctx, id)
		return err
	})
	if err != nil {
		return core.Expense{}, err
	}
	s.committed(ctx, log.OpCreate, amqp.ExpenseEvent(amqp.ActionCreated, ex))
	return ex, nil
}

func (s *LedgerService) UpdateExpense(ctx context.Context, userID, id int64, f forms.EntryForm) (core.Expense, error) {
	f.Kind = core.KindExpense
	var ex core.Expense
	err := s.store.InTx(ctx, func(q storage.Querier) error {
		current, err := q.GetExpense(ctx, id)
		if err != nil {
			return err
		}
		if err := owned(current.UserID, userID); err != nil {
			return err
		}
		e, err := validEntry(ctx, q, userID, f)
		if err != nil {
			return err
		}
		if err := q.UpdateExpense(ctx, id, entryParams(userID, e, current.CreatedAt)); err != nil {
			return err
		}
		ex, err = q.GetExpense(ctx, id)
		return err
	})
	if err != nil {
		return core.Expense{}, err
	}
	s.committed(ctx, log.OpUpdate, amqp.ExpenseEvent(amqp.ActionUpdated, ex))
	return ex, nil
}

func (s *LedgerService) DeleteExpense(ctx context.Context, userID, id int64) error {
	var ex core.Expense
	err := s.store.InTx(ctx, func(q storage.Querier) error {
		var err error
		ex, err = q.GetExpense(ctx, id)
		if err != nil {
			return err
		}
		if err := owned(ex.UserID, userID); err != nil {
			return err
		}
		return q.DeleteExpense(ctx, id)
	})
	if err != nil {
		return err
	}
	s.committed(ctx, log.OpDelete, amqp.ExpenseEvent(amqp.ActionDeleted, ex))
	return nil
}

// Views

// Dashboard sums the user's entries in integer cents and lists them with
// their category names. All reads share one transaction so the totals always
// match the listed rows.
func (s *LedgerService) Dashboard(ctx context.Context, userID int64) (core.Dashboard, error) {
	var d core.Dashboard
	err := s.store.InTx(ctx, func(q storage.Querier) error {
		incomeCents, err := q.SumIncomes(ctx, userID)
		if err != nil {
			return err
		}
		expenseCents, err := q.SumExpenses(ctx, userID)
		if err != nil {
			return err
		}
		if d.Incomes, err = q.ListIncomes(ctx, userID); err != nil {
			return err
		}
		if d.Expenses, err = q.ListExpenses(ctx, userID); err != nil {
			return err
		}
		d.TotalIncome = core.Money{Cents: incomeCents}
		d.TotalExpenses = core.Money{Cents: expenseCents}
		return nil
	})
	if err != nil {
		return core.Dashboard{}, fmt.Errorf("dashboard: %w", err)
	}
	return d, nil
}

// Transactions merges incomes and expenses, newest first.
func (s *LedgerService) Transactions(ctx context.Context, userID int64) ([]core.Transaction, error) {
	var incomes []core.Income
	var expenses []core.Expense
	err := s.store.InTx(ctx, func(q storage.Querier) error {
		var err error
		if incomes, err = q.ListIncomes(ctx, userID); err != nil {
			return err
		}
		expenses, err = q.ListExpenses(ctx, userID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("transactions: %w", err)
	}
	return core.MergeTransactions(incomes, expenses), nil
}
