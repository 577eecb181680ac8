package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"fintrack/internal/core"
)

// RepositoryTestSuite runs every test against a fresh SQLite file.
type RepositoryTestSuite struct {
	suite.Suite
	repo *SQLiteRepository
	ctx  context.Context
	user core.User
	now  time.Time
}

func (s *RepositoryTestSuite) SetupTest() {
	repo, err := NewSQLiteRepository(filepath.Join(s.T().TempDir(), "test.db"))
	require.NoError(s.T(), err, "failed to create test database")
	s.repo = repo
	s.ctx = context.Background()
	s.now = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	user, err := repo.CreateUser(s.ctx, CreateUserParams{Email: "a@x.com", PasswordHash: "hash", CreatedAt: s.now})
	require.NoError(s.T(), err)
	s.user = user
}

func (s *RepositoryTestSuite) TearDownTest() {
	if s.repo != nil {
		s.repo.Close()
	}
}

func (s *RepositoryTestSuite) category(name string, income bool) core.Category {
	c, err := s.repo.CreateCategory(s.ctx, CreateCategoryParams{UserID: s.user.ID, Name: name, IsIncome: income, CreatedAt: s.now})
	require.NoError(s.T(), err)
	return c
}

func (s *RepositoryTestSuite) TestUsers() {
	got, err := s.repo.GetUserByEmail(s.ctx, "a@x.com")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), s.user.ID, got.ID)
	assert.Equal(s.T(), "hash", got.PasswordHash)

	byID, err := s.repo.GetUserByID(s.ctx, s.user.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "a@x.com", byID.Email)

	_, err = s.repo.GetUserByEmail(s.ctx, "nobody@x.com")
	assert.ErrorIs(s.T(), err, core.ErrNotFound)
}

func (s *RepositoryTestSuite) TestDuplicateEmail() {
	_, err := s.repo.CreateUser(s.ctx, CreateUserParams{Email: "a@x.com", PasswordHash: "other", CreatedAt: s.now})
	assert.ErrorIs(s.T(), err, core.ErrEmailTaken)

	// emails are unique regardless of case
	_, err = s.repo.CreateUser(s.ctx, CreateUserParams{Email: "A@X.COM", PasswordHash: "other", CreatedAt: s.now})
	assert.ErrorIs(s.T(), err, core.ErrEmailTaken)
}

func (s *RepositoryTestSuite) TestSessions() {
	sess := core.Session{TokenHash: "abc", UserID: s.user.ID, Remember: true, ExpiresAt: s.now.Add(time.Hour), CreatedAt: s.now}
	require.NoError(s.T(), s.repo.CreateSession(s.ctx, sess))

	got, err := s.repo.GetSession(s.ctx, "abc")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), s.user.ID, got.UserID)
	assert.True(s.T(), got.Remember)
	assert.WithinDuration(s.T(), sess.ExpiresAt, got.ExpiresAt, time.Second)

	expired := core.Session{TokenHash: "old", UserID: s.user.ID, ExpiresAt: s.now.Add(-time.Minute), CreatedAt: s.now.Add(-time.Hour)}
	require.NoError(s.T(), s.repo.CreateSession(s.ctx, expired))

	n, err := s.repo.DeleteExpiredSessions(s.ctx, s.now)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(1), n)
	_, err = s.repo.GetSession(s.ctx, "old")
	assert.ErrorIs(s.T(), err, core.ErrNotFound)

	require.NoError(s.T(), s.repo.DeleteSession(s.ctx, "abc"))
	_, err = s.repo.GetSession(s.ctx, "abc")
	assert.ErrorIs(s.T(), err, core.ErrNotFound)
}

func (s *RepositoryTestSuite) TestCategories() {
	salary := s.category("Salary", true)
	food := s.category("food", false)
	s.category("Rent", false)

	all, err := s.repo.ListCategories(s.ctx, s.user.ID)
	require.NoError(s.T(), err)
	require.Len(s.T(), all, 3)
	assert.Equal(s.T(), "Salary", all[0].Name, "income categories first")
	assert.Equal(s.T(), "food", all[1].Name)

	expenseCats, err := s.repo.ListCategoriesByKind(s.ctx, s.user.ID, false)
	require.NoError(s.T(), err)
	assert.Len(s.T(), expenseCats, 2)

	require.NoError(s.T(), s.repo.UpdateCategory(s.ctx, UpdateCategoryParams{ID: food.ID, Name: "Groceries", IsIncome: false}))
	got, err := s.repo.GetCategory(s.ctx, food.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Groceries", got.Name)
	assert.Equal(s.T(), s.user.ID, got.UserID)

	require.NoError(s.T(), s.repo.DeleteCategory(s.ctx, salary.ID))
	_, err = s.repo.GetCategory(s.ctx, salary.ID)
	assert.ErrorIs(s.T(), err, core.ErrNotFound)
}

func (s *RepositoryTestSuite) TestCategoryInUseCannotBeDeleted() {
	food := s.category("Food", false)
	_, err := s.repo.CreateExpense(s.ctx, EntryParams{
		UserID: s.user.ID, CategoryID: food.ID, AmountCents: 500, Description: "lunch",
		Date: core.NewDate(2024, 1, 5), CreatedAt: s.now,
	})
	require.NoError(s.T(), err)

	n, err := s.repo.CountCategoryUsage(s.ctx, food.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(1), n)

	assert.ErrorIs(s.T(), s.repo.DeleteCategory(s.ctx, food.ID), core.ErrCategoryInUse)
}

func (s *RepositoryTestSuite) TestIncomesAndSums() {
	salary := s.category("Salary", true)
	for i, cents := range []int64{100000, 5000} {
		_, err := s.repo.CreateIncome(s.ctx, EntryParams{
			UserID: s.user.ID, CategoryID: salary.ID, AmountCents: cents, Description: "pay",
			Date: core.NewDate(2024, 1, 1+i), CreatedAt: s.now,
		})
		require.NoError(s.T(), err)
	}

	incomes, err := s.repo.ListIncomes(s.ctx, s.user.ID)
	require.NoError(s.T(), err)
	require.Len(s.T(), incomes, 2)
	assert.Equal(s.T(), "2024-01-02", incomes[0].Date.String(), "newest first")
	assert.Equal(s.T(), "Salary", incomes[0].CategoryName)

	total, err := s.repo.SumIncomes(s.ctx, s.user.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(105000), total)

	require.NoError(s.T(), s.repo.DeleteIncome(s.ctx, incomes[0].ID))
	total, err = s.repo.SumIncomes(s.ctx, s.user.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(100000), total)

	none, err := s.repo.SumExpenses(s.ctx, s.user.ID)
	require.NoError(s.T(), err)
	assert.Zero(s.T(), none)
}

func (s *RepositoryTestSuite) TestUpdateExpense() {
	food := s.category("Food", false)
	id, err := s.repo.CreateExpense(s.ctx, EntryParams{
		UserID: s.user.ID, CategoryID: food.ID, AmountCents: 500, Description: "lunch",
		Date: core.NewDate(2024, 1, 5), CreatedAt: s.now,
	})
	require.NoError(s.T(), err)

	require.NoError(s.T(), s.repo.UpdateExpense(s.ctx, id, EntryParams{
		CategoryID: food.ID, AmountCents: 750, Description: "dinner", Date: core.NewDate(2024, 1, 6),
	}))
	got, err := s.repo.GetExpense(s.ctx, id)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(750), got.Amount.Cents)
	assert.Equal(s.T(), "dinner", got.Description)
	assert.Equal(s.T(), "2024-01-06", got.Date.String())

	_, err = s.repo.GetExpense(s.ctx, id+100)
	assert.ErrorIs(s.T(), err, core.ErrNotFound)
}

func (s *RepositoryTestSuite) TestInTxRollsBack() {
	sentinel := errors.New("abort")
	err := s.repo.InTx(s.ctx, func(q Querier) error {
		if _, err := q.CreateCategory(s.ctx, CreateCategoryParams{UserID: s.user.ID, Name: "Temp", CreatedAt: s.now}); err != nil {
			return err
		}
		return sentinel
	})
	assert.ErrorIs(s.T(), err, sentinel)

	all, err := s.repo.ListCategories(s.ctx, s.user.ID)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), all)

	require.NoError(s.T(), s.repo.InTx(s.ctx, func(q Querier) error {
		_, err := q.CreateCategory(s.ctx, CreateCategoryParams{UserID: s.user.ID, Name: "Kept", CreatedAt: s.now})
		return err
	}))
	all, err = s.repo.ListCategories(s.ctx, s.user.ID)
	require.NoError(s.T(), err)
	assert.Len(s.T(), all, 1)
}

func (s *RepositoryTestSuite) TestForeignKeysEnforced() {
	_, err := s.repo.CreateIncome(s.ctx, EntryParams{
		UserID: s.user.ID, CategoryID: 999, AmountCents: 100, Description: "x",
		Date: core.NewDate(2024, 1, 1), CreatedAt: s.now,
	})
	var se *core.StorageError
	assert.ErrorAs(s.T(), err, &se)
}

func (s *RepositoryTestSuite) TestPing() {
	assert.NoError(s.T(), s.repo.Ping(s.ctx))
}

func TestRepositorySuite(t *testing.T) {
	suite.Run(t, new(RepositoryTestSuite))
}

func TestRunMigrationsIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "migrate.db")

	v, err := RunMigrations(path)
	require.NoError(t, err)
	assert.Equal(t, uint(1), v)

	v, err = RunMigrations(path)
	require.NoError(t, err)
	assert.Equal(t, uint(1), v)
}
