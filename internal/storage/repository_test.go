package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"fintrack/internal/core"
)

func testRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedUser(t *testing.T, repo *SQLiteRepository) core.User {
	t.Helper()
	u, err := repo.CreateUser(context.Background(), "test@example.com", "Test User", "hash")
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	return u
}

func mustCreate(t *testing.T, repo *SQLiteRepository, tx core.Transaction) core.Transaction {
	t.Helper()
	created, err := repo.CreateTransaction(context.Background(), tx)
	if err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}
	return created
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestUserLifecycle(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	u := seedUser(t, repo)
	if u.ID == 0 {
		t.Fatal("created user has no id")
	}

	if _, err := repo.CreateUser(ctx, "test@example.com", "Someone Else", "hash2"); !errors.Is(err, core.ErrDuplicateEmail) {
		t.Errorf("duplicate email error = %v, want ErrDuplicateEmail", err)
	}

	byEmail, err := repo.UserByEmail(ctx, "test@example.com")
	if err != nil {
		t.Fatalf("UserByEmail() error = %v", err)
	}
	if byEmail.ID != u.ID || byEmail.Name != "Test User" {
		t.Errorf("UserByEmail() = %+v", byEmail)
	}

	if _, err := repo.UserByID(ctx, 9999); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("missing user error = %v, want ErrNotFound", err)
	}
}

func TestTransactionLifecycle(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()
	u := seedUser(t, repo)

	tx := mustCreate(t, repo, core.Transaction{
		UserID:      u.ID,
		Amount:      core.Money{Cents: 1250},
		Date:        date(2024, time.March, 10),
		Type:        core.Expense,
		Category:    "Food",
		Description: "lunch",
	})
	if tx.ID == 0 {
		t.Fatal("created transaction has no id")
	}

	tx.Amount.Cents = 2000
	tx.Description = "dinner"
	if err := repo.UpdateTransaction(ctx, tx); err != nil {
		t.Fatalf("UpdateTransaction() error = %v", err)
	}

	list, err := repo.ListTransactions(ctx, core.TransactionFilter{UserID: u.ID})
	if err != nil {
		t.Fatalf("ListTransactions() error = %v", err)
	}
	if len(list) != 1 || list[0].Amount.Cents != 2000 || list[0].Description != "dinner" {
		t.Errorf("list = %+v", list)
	}
	if !list[0].Date.Equal(date(2024, time.March, 10)) {
		t.Errorf("date round-trip = %v", list[0].Date)
	}

	missing := tx
	missing.ID = 9999
	if err := repo.UpdateTransaction(ctx, missing); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("update missing error = %v, want ErrNotFound", err)
	}

	// Other users cannot touch the row.
	other, err := repo.CreateUser(ctx, "other@example.com", "Other", "hash")
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	if err := repo.DeleteTransaction(ctx, other.ID, tx.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("cross-user delete error = %v, want ErrNotFound", err)
	}

	if err := repo.DeleteTransaction(ctx, u.ID, tx.ID); err != nil {
		t.Fatalf("DeleteTransaction() error = %v", err)
	}
	if err := repo.DeleteTransaction(ctx, u.ID, tx.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("second delete error = %v, want ErrNotFound", err)
	}
}

func TestDeleteAllTransactions(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()
	u := seedUser(t, repo)

	for i := 0; i < 3; i++ {
		mustCreate(t, repo, core.Transaction{
			UserID:   u.ID,
			Amount:   core.Money{Cents: 100},
			Date:     date(2024, time.March, i+1),
			Type:     core.Expense,
			Category: "Food",
		})
	}

	n, err := repo.DeleteAllTransactions(ctx, u.ID)
	if err != nil {
		t.Fatalf("DeleteAllTransactions() error = %v", err)
	}
	if n != 3 {
		t.Errorf("deleted = %d, want 3", n)
	}

	count, err := repo.CountTransactions(ctx, u.ID)
	if err != nil {
		t.Fatalf("CountTransactions() error = %v", err)
	}
	if count != 0 {
		t.Errorf("count after wipe = %d", count)
	}
}

func TestListTransactionsFilter(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()
	u := seedUser(t, repo)

	mustCreate(t, repo, core.Transaction{UserID: u.ID, Amount: core.Money{Cents: 100}, Date: date(2024, time.January, 5), Type: core.Expense, Category: "Food"})
	mustCreate(t, repo, core.Transaction{UserID: u.ID, Amount: core.Money{Cents: 200}, Date: date(2024, time.February, 10), Type: core.Expense, Category: "FOOD"})
	mustCreate(t, repo, core.Transaction{UserID: u.ID, Amount: core.Money{Cents: 300}, Date: date(2024, time.March, 15), Type: core.Income, Category: "Salary"})

	// Category matching is case-insensitive.
	list, err := repo.ListTransactions(ctx, core.TransactionFilter{UserID: u.ID, Category: "food"})
	if err != nil {
		t.Fatalf("ListTransactions() error = %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("category filter matched %d rows, want 2", len(list))
	}
	// Newest first.
	if list[0].Amount.Cents != 200 || list[1].Amount.Cents != 100 {
		t.Errorf("order = [%d, %d]", list[0].Amount.Cents, list[1].Amount.Cents)
	}

	// Date window.
	list, err = repo.ListTransactions(ctx, core.TransactionFilter{
		UserID: u.ID,
		Start:  time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC),
		End:    time.Date(2024, time.February, 28, 23, 59, 59, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("ListTransactions() error = %v", err)
	}
	if len(list) != 1 || list[0].Amount.Cents != 200 {
		t.Errorf("date window = %+v", list)
	}
}

func TestListTransactionsPage(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()
	u := seedUser(t, repo)

	for i := 1; i <= 5; i++ {
		mustCreate(t, repo, core.Transaction{
			UserID:   u.ID,
			Amount:   core.Money{Cents: int64(i * 100)},
			Date:     date(2024, time.March, i),
			Type:     core.Expense,
			Category: "Food",
		})
	}

	page, err := repo.ListTransactionsPage(ctx, u.ID, 2, 2)
	if err != nil {
		t.Fatalf("ListTransactionsPage() error = %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("page size = %d, want 2", len(page))
	}
	// Newest first: days 5,4 | 3,2 | 1.
	if page[0].Amount.Cents != 300 || page[1].Amount.Cents != 200 {
		t.Errorf("page = [%d, %d]", page[0].Amount.Cents, page[1].Amount.Cents)
	}
}

func TestAggregates(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()
	u := seedUser(t, repo)

	seed := []core.Transaction{
		{Amount: core.Money{Cents: 100000}, Date: date(2023, time.December, 1), Type: core.Income, Category: "Salary"},
		{Amount: core.Money{Cents: 110000}, Date: date(2024, time.January, 1), Type: core.Income, Category: "Salary"},
		{Amount: core.Money{Cents: 30000}, Date: date(2024, time.January, 10), Type: core.Expense, Category: "Rent"},
		{Amount: core.Money{Cents: 12000}, Date: date(2024, time.January, 15), Type: core.Expense, Category: "Food"},
		{Amount: core.Money{Cents: 8000}, Date: date(2024, time.February, 2), Type: core.Expense, Category: "Food"},
	}
	for _, tx := range seed {
		tx.UserID = u.ID
		mustCreate(t, repo, tx)
	}

	types, err := repo.SumByType(ctx, u.ID)
	if err != nil {
		t.Fatalf("SumByType() error = %v", err)
	}
	totals := map[core.TransactionType]int64{}
	for _, tt := range types {
		totals[tt.Type] = tt.TotalCents
	}
	if totals[core.Income] != 210000 || totals[core.Expense] != 50000 {
		t.Errorf("type totals = %v", totals)
	}

	cats, err := repo.SumByCategory(ctx, u.ID, core.Expense)
	if err != nil {
		t.Fatalf("SumByCategory() error = %v", err)
	}
	if len(cats) != 2 || cats[0].Category != "Rent" || cats[0].TotalCents != 30000 || cats[1].TotalCents != 20000 {
		t.Errorf("category totals = %+v", cats)
	}

	monthly, err := repo.SumByMonth(ctx, core.TransactionFilter{UserID: u.ID})
	if err != nil {
		t.Fatalf("SumByMonth() error = %v", err)
	}
	// Ascending by year then month: Dec 2023, Jan 2024 (x2 types), Feb 2024.
	if len(monthly) != 4 {
		t.Fatalf("monthly rows = %d, want 4", len(monthly))
	}
	if monthly[0].Year != 2023 || monthly[0].Month != 12 || monthly[0].Type != core.Income {
		t.Errorf("monthly[0] = %+v", monthly[0])
	}
	if monthly[3].Year != 2024 || monthly[3].Month != 2 || monthly[3].TotalCents != 8000 {
		t.Errorf("monthly[3] = %+v", monthly[3])
	}

	yearly, err := repo.SumByYear(ctx, core.TransactionFilter{UserID: u.ID})
	if err != nil {
		t.Fatalf("SumByYear() error = %v", err)
	}
	if len(yearly) != 3 || yearly[0].Year != 2023 {
		t.Errorf("yearly = %+v", yearly)
	}

	categories, err := repo.DistinctCategories(ctx, u.ID)
	if err != nil {
		t.Fatalf("DistinctCategories() error = %v", err)
	}
	if len(categories) != 3 {
		t.Errorf("distinct categories = %v", categories)
	}
}

func TestCategoryLimitUpsert(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()
	u := seedUser(t, repo)

	food := core.CategoryLimit{
		UserID:             u.ID,
		Category:           "Food",
		NormalizedCategory: core.NormalizeCategory("Food"),
		Limit:              core.Money{Cents: 20000},
	}
	if err := repo.UpsertCategoryLimit(ctx, food); err != nil {
		t.Fatalf("UpsertCategoryLimit() error = %v", err)
	}

	// Same normalized key replaces the amount instead of adding a row.
	replacement := food
	replacement.Category = "FOOD"
	replacement.Limit.Cents = 30000
	if err := repo.UpsertCategoryLimit(ctx, replacement); err != nil {
		t.Fatalf("UpsertCategoryLimit() replace error = %v", err)
	}

	limits, err := repo.ListCategoryLimits(ctx, u.ID)
	if err != nil {
		t.Fatalf("ListCategoryLimits() error = %v", err)
	}
	if len(limits) != 1 {
		t.Fatalf("limit rows = %d, want 1", len(limits))
	}
	if limits[0].Limit.Cents != 30000 || limits[0].Category != "FOOD" {
		t.Errorf("replaced limit = %+v", limits[0])
	}
}

func TestCategoryLimitUpdateConflict(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()
	u := seedUser(t, repo)

	for _, cat := range []string{"Food", "Travel"} {
		l := core.CategoryLimit{
			UserID:             u.ID,
			Category:           cat,
			NormalizedCategory: core.NormalizeCategory(cat),
			Limit:              core.Money{Cents: 10000},
		}
		if err := repo.UpsertCategoryLimit(ctx, l); err != nil {
			t.Fatalf("UpsertCategoryLimit(%s) error = %v", cat, err)
		}
	}

	limits, err := repo.ListCategoryLimits(ctx, u.ID)
	if err != nil {
		t.Fatalf("ListCategoryLimits() error = %v", err)
	}
	if len(limits) != 2 {
		t.Fatalf("limit rows = %d, want 2", len(limits))
	}

	// Renaming Food onto Travel hits the unique index.
	renamed := limits[0]
	renamed.Category = "Travel"
	renamed.NormalizedCategory = core.NormalizeCategory("Travel")
	if err := repo.UpdateCategoryLimit(ctx, renamed); !errors.Is(err, core.ErrDuplicateLimit) {
		t.Errorf("rename conflict error = %v, want ErrDuplicateLimit", err)
	}

	missing := limits[0]
	missing.ID = 9999
	if err := repo.UpdateCategoryLimit(ctx, missing); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("update missing error = %v, want ErrNotFound", err)
	}

	if err := repo.DeleteCategoryLimit(ctx, u.ID, limits[1].ID); err != nil {
		t.Fatalf("DeleteCategoryLimit() error = %v", err)
	}
	if err := repo.DeleteCategoryLimit(ctx, u.ID, limits[1].ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("second delete error = %v, want ErrNotFound", err)
	}
}
