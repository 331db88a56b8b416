package ledger

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fintrack-dev/fintrack/internal/categories"
	"github.com/fintrack-dev/fintrack/internal/id"
	"github.com/fintrack-dev/fintrack/internal/model"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

// newTestLedger returns an empty ledger over a category store holding
// Salary (cat_1, income) and Groceries (cat_2, expense).
func newTestLedger(t *testing.T) (*Service, *categories.Service, string) {
	t.Helper()
	dir := t.TempDir()

	cats := categories.NewService(nil, id.NewSequence("cat"), clock)
	_, err := cats.Create(model.Category{Name: "Salary", Type: model.TypeIncome})
	require.NoError(t, err)
	_, err = cats.Create(model.Category{Name: "Groceries", Type: model.TypeExpense})
	require.NoError(t, err)
	require.NoError(t, cats.Save(dir))

	svc, err := Load(dir, cats, id.NewSequence("txn"), clock)
	require.NoError(t, err)
	return svc, cats, dir
}

func TestLoad_MissingFile(t *testing.T) {
	svc, _, _ := newTestLedger(t)
	assert.Empty(t, svc.List())
}

func TestCreate_PersistsAndReloads(t *testing.T) {
	svc, cats, dir := newTestLedger(t)

	txn, err := svc.Create(model.Transaction{
		Date:        date(2024, 5, 3),
		Amount:      dec("82.15"),
		CategoryID:  "cat_2",
		Type:        model.TypeExpense,
		Description: "Weekly shop",
	})
	require.NoError(t, err)
	assert.Equal(t, "txn_1", txn.ID)
	assert.Equal(t, fixedNow, txn.CreatedAt)

	_, err = os.Stat(filepath.Join(dir, File))
	require.NoError(t, err)

	reloaded, err := Load(dir, cats, id.NewSequence("txn"), clock)
	require.NoError(t, err)
	require.Len(t, reloaded.List(), 1)
	assert.Equal(t, "Weekly shop", reloaded.List()[0].Description)
	assert.True(t, reloaded.ReferencesCategory("cat_2"))
	assert.False(t, reloaded.ReferencesCategory("cat_1"))
}

func TestCreate_ValidationFailure(t *testing.T) {
	svc, _, dir := newTestLedger(t)

	_, err := svc.Create(model.Transaction{
		Date:        date(2024, 5, 3),
		Amount:      dec("1"),
		CategoryID:  "cat_404",
		Type:        model.TypeExpense,
		Description: "Nowhere",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
	assert.Empty(t, svc.List())

	_, err = os.Stat(filepath.Join(dir, File))
	assert.True(t, os.IsNotExist(err), "nothing should be written")
}

func TestUpdateAndDelete(t *testing.T) {
	svc, cats, dir := newTestLedger(t)

	first, err := svc.Create(model.Transaction{Date: date(2024, 5, 1), Amount: dec("5"), CategoryID: "cat_2", Type: model.TypeExpense, Description: "Milk"})
	require.NoError(t, err)
	second, err := svc.Create(model.Transaction{Date: date(2024, 5, 2), Amount: dec("3000"), CategoryID: "cat_1", Type: model.TypeIncome, Description: "Pay"})
	require.NoError(t, err)

	first.Description = "Milk and eggs"
	first.Amount = dec("7.40")
	require.NoError(t, svc.Update(first))

	got, ok := svc.Get(first.ID)
	require.True(t, ok)
	assert.Equal(t, "Milk and eggs", got.Description)
	assert.Equal(t, fixedNow, got.CreatedAt)

	require.NoError(t, svc.Delete(second.ID))
	_, ok = svc.Get(second.ID)
	assert.False(t, ok)

	reloaded, err := Load(dir, cats, id.NewSequence("txn"), clock)
	require.NoError(t, err)
	require.Len(t, reloaded.List(), 1)
	assert.True(t, reloaded.List()[0].Amount.Equal(dec("7.40")))

	assert.ErrorIs(t, svc.Delete("txn_404"), ErrNotFound)
	assert.ErrorIs(t, svc.Update(model.Transaction{ID: "txn_404"}), ErrNotFound)
}

func TestImport_CreatesMissingCategories(t *testing.T) {
	svc, cats, dir := newTestLedger(t)

	txns := []model.Transaction{
		{ID: "imp_1", Date: date(2024, 1, 15), Amount: dec("50"), CategoryID: "cat_1", Type: model.TypeIncome, Description: "Pay"},
		{ID: "imp_2", Date: date(2024, 1, 16), Amount: dec("500"), CategoryID: id.MissingCategoryID("Bonus"), Type: model.TypeIncome, Description: "Q4 bonus"},
		{ID: "imp_3", Date: date(2024, 1, 17), Amount: dec("12"), CategoryID: id.MissingCategoryID("pets"), Type: model.TypeExpense, Description: "Kibble"},
		{ID: "imp_4", Date: date(2024, 1, 18), Amount: dec("8"), CategoryID: id.MissingCategoryID("Pets"), Type: model.TypeIncome, Description: "Sold toy"},
	}

	sum, err := svc.Import(txns, []string{"Bonus", "pets"}, ImportOptions{CategoryColor: "#6b7280", CategoryIcon: "Tag", Skipped: 1})
	require.NoError(t, err)
	assert.Equal(t, Summary{Imported: 4, Skipped: 1, CategoriesCreated: 2}, sum)

	bonus, ok := cats.FindByName("Bonus")
	require.True(t, ok)
	assert.Equal(t, model.TypeIncome, bonus.Type)
	assert.Equal(t, "#6b7280", bonus.Color)
	assert.Equal(t, "Tag", bonus.Icon)

	pets, ok := cats.FindByName("Pets")
	require.True(t, ok)
	assert.Equal(t, "pets", pets.Name, "first-seen spelling is kept")
	assert.Equal(t, model.TypeExpense, pets.Type, "type comes from the first referencing transaction")

	list := svc.List()
	require.Len(t, list, 4)
	assert.Equal(t, "cat_1", list[0].CategoryID)
	assert.Equal(t, bonus.ID, list[1].CategoryID)
	assert.Equal(t, pets.ID, list[2].CategoryID)
	assert.Equal(t, pets.ID, list[3].CategoryID)
	for _, tx := range list {
		assert.False(t, id.IsMissingCategoryID(tx.CategoryID))
	}

	// Categories were saved alongside the transactions.
	reloadedCats, err := categories.Load(dir, id.NewSequence("cat"), clock)
	require.NoError(t, err)
	assert.True(t, reloadedCats.Exists(bonus.ID))
	assert.True(t, reloadedCats.Exists(pets.ID))
}

func TestImport_ReusesCategoryCreatedMeanwhile(t *testing.T) {
	svc, cats, _ := newTestLedger(t)

	existing, err := cats.Create(model.Category{Name: "Travel", Type: model.TypeExpense})
	require.NoError(t, err)

	sum, err := svc.Import([]model.Transaction{
		{ID: "imp_1", Date: date(2024, 2, 1), Amount: dec("300"), CategoryID: id.MissingCategoryID("travel"), Type: model.TypeExpense, Description: "Train"},
	}, []string{"travel"}, ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, sum.CategoriesCreated)
	assert.Equal(t, existing.ID, svc.List()[0].CategoryID)
}

func TestImport_AppendsToExisting(t *testing.T) {
	svc, cats, dir := newTestLedger(t)

	_, err := svc.Create(model.Transaction{Date: date(2024, 1, 1), Amount: dec("1"), CategoryID: "cat_2", Type: model.TypeExpense, Description: "Gum"})
	require.NoError(t, err)

	_, err = svc.Import([]model.Transaction{
		{ID: "imp_1", Date: date(2024, 1, 2), Amount: dec("2"), CategoryID: "cat_2", Type: model.TypeExpense, Description: "Bread"},
	}, nil, ImportOptions{})
	require.NoError(t, err)

	reloaded, err := Load(dir, cats, id.NewSequence("txn"), clock)
	require.NoError(t, err)
	require.Len(t, reloaded.List(), 2)
	assert.Equal(t, "Gum", reloaded.List()[0].Description)
	assert.Equal(t, "Bread", reloaded.List()[1].Description)
}

func TestImport_DuplicateIDRejected(t *testing.T) {
	svc, _, _ := newTestLedger(t)

	batch := []model.Transaction{
		{ID: "imp_1", Date: date(2024, 1, 2), Amount: dec("2"), CategoryID: "cat_2", Type: model.TypeExpense, Description: "Bread"},
	}
	_, err := svc.Import(batch, nil, ImportOptions{})
	require.NoError(t, err)

	_, err = svc.Import(batch, nil, ImportOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), RuleUniqueID)
	assert.Len(t, svc.List(), 1)
}

func TestImport_FailedImportLeavesNoCategories(t *testing.T) {
	svc, cats, dir := newTestLedger(t)

	_, err := svc.Import([]model.Transaction{
		{ID: "imp_1", Date: date(2024, 1, 2), Amount: dec("2"), CategoryID: "cat_2", Type: model.TypeExpense, Description: "Bread"},
	}, nil, ImportOptions{})
	require.NoError(t, err)

	// Reuses imp_1, so validation rejects the batch after Pets was created.
	_, err = svc.Import([]model.Transaction{
		{ID: "imp_1", Date: date(2024, 1, 3), Amount: dec("9"), CategoryID: id.MissingCategoryID("Pets"), Type: model.TypeExpense, Description: "Kibble"},
	}, []string{"Pets"}, ImportOptions{})
	require.Error(t, err)
	_, ok := cats.FindByName("Pets")
	assert.False(t, ok)

	sum, err := svc.Import([]model.Transaction{
		{ID: "imp_2", Date: date(2024, 1, 4), Amount: dec("15"), CategoryID: id.MissingCategoryID("Toys"), Type: model.TypeExpense, Description: "Blocks"},
	}, []string{"Toys"}, ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.CategoriesCreated)

	reloaded, err := categories.Load(dir, id.NewSequence("cat"), clock)
	require.NoError(t, err)
	_, ok = reloaded.FindByName("Pets")
	assert.False(t, ok)
	_, ok = reloaded.FindByName("Toys")
	assert.True(t, ok)
	assert.Len(t, reloaded.List(), 3)
}

func TestImport_WriteFailureRestoresCategories(t *testing.T) {
	svc, cats, dir := newTestLedger(t)

	// A directory in place of the store makes the append fail after the
	// categories have been saved.
	require.NoError(t, os.MkdirAll(filepath.Join(dir, File), 0o755))

	_, err := svc.Import([]model.Transaction{
		{ID: "imp_1", Date: date(2024, 1, 3), Amount: dec("9"), CategoryID: id.MissingCategoryID("Pets"), Type: model.TypeExpense, Description: "Kibble"},
	}, []string{"Pets"}, ImportOptions{})
	require.Error(t, err)
	assert.Empty(t, svc.List())

	_, ok := cats.FindByName("Pets")
	assert.False(t, ok)
	reloaded, err := categories.Load(dir, id.NewSequence("cat"), clock)
	require.NoError(t, err)
	_, ok = reloaded.FindByName("Pets")
	assert.False(t, ok)
	assert.Len(t, reloaded.List(), 2)
}

func TestImport_Empty(t *testing.T) {
	svc, _, _ := newTestLedger(t)
	_, err := svc.Import(nil, nil, ImportOptions{})
	require.Error(t, err)
}

func TestSummary_String(t *testing.T) {
	tests := []struct {
		sum  Summary
		want string
	}{
		{Summary{Imported: 3}, "Imported 3 transaction(s)"},
		{Summary{Imported: 3, Skipped: 2}, "Imported 3 transaction(s) (2 skipped due to errors)"},
		{Summary{Imported: 1, CategoriesCreated: 1}, "Imported 1 transaction(s) (1 categories created)"},
		{Summary{Imported: 5, Skipped: 1, CategoriesCreated: 2}, "Imported 5 transaction(s) (1 skipped due to errors) (2 categories created)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.sum.String())
	}
}
