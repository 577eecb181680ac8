package storage

import (
	"context"
	"database/sql"
	"time"

	"fintrack/internal/core"
)

const categoryColumns = `id, user_id, name, is_income, created_at`

func scanCategory(row interface{ Scan(...any) error }) (core.Category, error) {
	var c core.Category
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.IsIncome, &c.CreatedAt)
	return c, err
}

const createCategory = `-- name: CreateCategory :execlastid
INSERT INTO categories (user_id, name, is_income, created_at)
VALUES (?, ?, ?, ?)
`

type CreateCategoryParams struct {
	UserID    int64
	Name      string
	IsIncome  bool
	CreatedAt time.Time
}

func (q *Queries) CreateCategory(ctx context.Context, arg CreateCategoryParams) (core.Category, error) {
	res, err := q.db.ExecContext(ctx, createCategory, arg.UserID, arg.Name, arg.IsIncome, arg.CreatedAt.UTC())
	if err != nil {
		return core.Category{}, wrap("create category", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Category{}, wrap("create category", err)
	}
	return core.Category{
		ID:        id,
		UserID:    arg.UserID,
		Name:      arg.Name,
		IsIncome:  arg.IsIncome,
		CreatedAt: arg.CreatedAt.UTC(),
	}, nil
}

const getCategory = `-- name: GetCategory :one
SELECT ` + categoryColumns + ` FROM categories
WHERE id = ?
`

func (q *Queries) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	c, err := scanCategory(q.db.QueryRowContext(ctx, getCategory, id))
	return c, wrap("get category", err)
}

const listCategories = `-- name: ListCategories :many
SELECT ` + categoryColumns + ` FROM categories
WHERE user_id = ?
ORDER BY is_income DESC, name COLLATE NOCASE, id
`

func (q *Queries) ListCategories(ctx context.Context, userID int64) ([]core.Category, error) {
	rows, err := q.db.QueryContext(ctx, listCategories, userID)
	if err != nil {
		return nil, wrap("list categories", err)
	}
	return collectCategories(rows)
}

const listCategoriesByKind = `-- name: ListCategoriesByKind :many
SELECT ` + categoryColumns + ` FROM categories
WHERE user_id = ? AND is_income = ?
ORDER BY name COLLATE NOCASE, id
`

func (q *Queries) ListCategoriesByKind(ctx context.Context, userID int64, isIncome bool) ([]core.Category, error) {
	rows, err := q.db.QueryContext(ctx, listCategoriesByKind, userID, isIncome)
	if err != nil {
		return nil, wrap("list categories by kind", err)
	}
	return collectCategories(rows)
}

func collectCategories(rows *sql.Rows) ([]core.Category, error) {
	defer rows.Close()
	var items []core.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, wrap("scan category", err)
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("iterate categories", err)
	}
	return items, nil
}

const updateCategory = `-- name: UpdateCategory :exec
UPDATE categories SET name = ?, is_income = ?
WHERE id = ?
`

type UpdateCategoryParams struct {
	ID       int64
	Name     string
	IsIncome bool
}

func (q *Queries) UpdateCategory(ctx context.Context, arg UpdateCategoryParams) error {
	_, err := q.db.ExecContext(ctx, updateCategory, arg.Name, arg.IsIncome, arg.ID)
	return wrap("update category", err)
}

const deleteCategory = `-- name: DeleteCategory :exec
DELETE FROM categories WHERE id = ?
`

// DeleteCategory removes a category. Rows still referencing it make the
// delete fail with core.ErrCategoryInUse.
func (q *Queries) DeleteCategory(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteCategory, id)
	if isForeignKeyViolation(err) {
		return core.ErrCategoryInUse
	}
	return wrap("delete category", err)
}

const countCategoryUsage = `-- name: CountCategoryUsage :one
SELECT (SELECT COUNT(*) FROM incomes WHERE category_id = ?1)
     + (SELECT COUNT(*) FROM expenses WHERE category_id = ?1)
`

func (q *Queries) CountCategoryUsage(ctx context.Context, id int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countCategoryUsage, id).Scan(&n)
	return n, wrap("count category usage", err)
}
