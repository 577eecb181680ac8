package storage

import (
	"context"
	"fmt"
	"time"

	"fintrack/internal/core"
)

// Incomes and expenses share one table shape, so their statements are
// built from the same templates.
type entryQueries struct {
	create, get, list, update, delete, sum string
}

func newEntryQueries(table string) entryQueries {
	return entryQueries{
		create: fmt.Sprintf(`INSERT INTO %s (user_id, category_id, amount_cents, description, date, created_at)
VALUES (?, ?, ?, ?, ?, ?)`, table),
		get: fmt.Sprintf(`SELECT e.id, e.user_id, e.category_id, c.name, e.amount_cents, e.description, e.date, e.created_at
FROM %s e JOIN categories c ON c.id = e.category_id
WHERE e.id = ?`, table),
		list: fmt.Sprintf(`SELECT e.id, e.user_id, e.category_id, c.name, e.amount_cents, e.description, e.date, e.created_at
FROM %s e JOIN categories c ON c.id = e.category_id
WHERE e.user_id = ?
ORDER BY e.date DESC, e.created_at DESC, e.id DESC`, table),
		update: fmt.Sprintf(`UPDATE %s SET category_id = ?, amount_cents = ?, description = ?, date = ?
WHERE id = ?`, table),
		delete: fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, table),
		sum:    fmt.Sprintf(`SELECT COALESCE(SUM(amount_cents), 0) FROM %s WHERE user_id = ?`, table),
	}
}

var (
	incomeQueries  = newEntryQueries("incomes")
	expenseQueries = newEntryQueries("expenses")
)

// EntryParams carries the columns written for an income or expense.
type EntryParams struct {
	UserID      int64
	CategoryID  int64
	AmountCents int64
	Description string
	Date        core.Date
	CreatedAt   time.Time
}

type entryRow struct {
	ID           int64
	UserID       int64
	CategoryID   int64
	CategoryName string
	AmountCents  int64
	Description  string
	Date         core.Date
	CreatedAt    time.Time
}

func scanEntry(row interface{ Scan(...any) error }) (entryRow, error) {
	var (
		e    entryRow
		date string
	)
	if err := row.Scan(&e.ID, &e.UserID, &e.CategoryID, &e.CategoryName, &e.AmountCents, &e.Description, &date, &e.CreatedAt); err != nil {
		return entryRow{}, err
	}
	d, err := core.ParseDate(date)
	if err != nil {
		return entryRow{}, fmt.Errorf("row %d: %w", e.ID, err)
	}
	e.Date = d
	return e, nil
}

func (r entryRow) income() core.Income {
	return core.Income{
		ID:           r.ID,
		UserID:       r.UserID,
		Amount:       core.Money{Cents: r.AmountCents},
		Description:  r.Description,
		Date:         r.Date,
		CategoryID:   r.CategoryID,
		CategoryName: r.CategoryName,
		CreatedAt:    r.CreatedAt,
	}
}

func (r entryRow) expense() core.Expense {
	return core.Expense(r.income())
}

func (q *Queries) createEntry(ctx context.Context, eq entryQueries, op string, arg EntryParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, eq.create,
		arg.UserID, arg.CategoryID, arg.AmountCents, arg.Description, arg.Date.String(), arg.CreatedAt.UTC())
	if err != nil {
		return 0, wrap(op, err)
	}
	id, err := res.LastInsertId()
	return id, wrap(op, err)
}

func (q *Queries) getEntry(ctx context.Context, eq entryQueries, op string, id int64) (entryRow, error) {
	r, err := scanEntry(q.db.QueryRowContext(ctx, eq.get, id))
	return r, wrap(op, err)
}

func (q *Queries) listEntries(ctx context.Context, eq entryQueries, op string, userID int64) ([]entryRow, error) {
	rows, err := q.db.QueryContext(ctx, eq.list, userID)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer rows.Close()
	var items []entryRow
	for rows.Next() {
		r, err := scanEntry(rows)
		if err != nil {
			return nil, wrap(op, err)
		}
		items = append(items, r)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(op, err)
	}
	return items, nil
}

func (q *Queries) updateEntry(ctx context.Context, eq entryQueries, op string, id int64, arg EntryParams) error {
	_, err := q.db.ExecContext(ctx, eq.update, arg.CategoryID, arg.AmountCents, arg.Description, arg.Date.String(), id)
	return wrap(op, err)
}

func (q *Queries) deleteEntry(ctx context.Context, eq entryQueries, op string, id int64) error {
	_, err := q.db.ExecContext(ctx, eq.delete, id)
	return wrap(op, err)
}

func (q *Queries) sumEntries(ctx context.Context, eq entryQueries, op string, userID int64) (int64, error) {
	var total int64
	err := q.db.QueryRowContext(ctx, eq.sum, userID).Scan(&total)
	return total, wrap(op, err)
}

func (q *Queries) CreateIncome(ctx context.Context, arg EntryParams) (int64, error) {
	return q.createEntry(ctx, incomeQueries, "create income", arg)
}

func (q *Queries) GetIncome(ctx context.Context, id int64) (core.Income, error) {
	r, err := q.getEntry(ctx, incomeQueries, "get income", id)
	if err != nil {
		return core.Income{}, err
	}
	return r.income(), nil
}

func (q *Queries) ListIncomes(ctx context.Context, userID int64) ([]core.Income, error) {
	rows, err := q.listEntries(ctx, incomeQueries, "list incomes", userID)
	if err != nil {
		return nil, err
	}
	out := make([]core.Income, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.income())
	}
	return out, nil
}

func (q *Queries) UpdateIncome(ctx context.Context, id int64, arg EntryParams) error {
	return q.updateEntry(ctx, incomeQueries, "update income", id, arg)
}

func (q *Queries) DeleteIncome(ctx context.Context, id int64) error {
	return q.deleteEntry(ctx, incomeQueries, "delete income", id)
}

// SumIncomes totals a user's incomes in cents.
func (q *Queries) SumIncomes(ctx context.Context, userID int64) (int64, error) {
	return q.sumEntries(ctx, incomeQueries, "sum incomes", userID)
}

func (q *Queries) CreateExpense(ctx context.Context, arg EntryParams) (int64, error) {
	return q.createEntry(ctx, expenseQueries, "create expense", arg)
}

func (q *Queries) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	r, err := q.getEntry(ctx, expenseQueries, "get expense", id)
	if err != nil {
		return core.Expense{}, err
	}
	return r.expense(), nil
}

func (q *Queries) ListExpenses(ctx context.Context, userID int64) ([]core.Expense, error) {
	rows, err := q.listEntries(ctx, expenseQueries, "list expenses", userID)
	if err != nil {
		return nil, err
	}
	out := make([]core.Expense, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.expense())
	}
	return out, nil
}

func (q *Queries) UpdateExpense(ctx context.Context, id int64, arg EntryParams) error {
	return q.updateEntry(ctx, expenseQueries, "update expense", id, arg)
}

func (q *Queries) DeleteExpense(ctx context.Context, id int64) error {
	return q.deleteEntry(ctx, expenseQueries, "delete expense", id)
}

func (q *Queries) SumExpenses(ctx context.Context, userID int64) (int64, error) {
	return q.sumEntries(ctx, expenseQueries, "sum expenses", userID)
}
