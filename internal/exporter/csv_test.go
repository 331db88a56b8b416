package exporter

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fintrack-dev/fintrack/internal/id"
	"github.com/fintrack-dev/fintrack/internal/importer"
	"github.com/fintrack-dev/fintrack/internal/model"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

var testCategories = []model.Category{
	{ID: "cat_1", Name: "Salary", Type: model.TypeIncome, Color: "#22c55e", Icon: "Briefcase"},
	{ID: "cat_2", Name: "Groceries", Type: model.TypeExpense, Color: "#f97316", Icon: "ShoppingCart"},
	{ID: "cat_3", Name: "Food, Drink", Type: model.TypeExpense, Color: "#ef4444"},
}

func TestTransactionsToCSV(t *testing.T) {
	txns := []model.Transaction{
		{
			Date:        date(2024, 1, 5),
			Type:        model.TypeExpense,
			CategoryID:  "cat_2",
			Amount:      decimal.RequireFromString("1234.50"),
			Description: `Weekly "big" shop`,
			Tags:        []string{"food", "weekly"},
		},
		{
			Date:        time.Date(2024, 1, 6, 10, 30, 0, 0, time.UTC),
			Type:        model.TypeIncome,
			CategoryID:  "missing:bonus",
			Amount:      decimal.NewFromInt(200),
			Description: "Gift",
			Notes:       "from, boss",
		},
		{
			Date:        date(2024, 1, 7),
			Type:        model.TypeExpense,
			CategoryID:  "cat_3",
			Amount:      decimal.RequireFromString("0.99"),
			Description: "",
		},
	}

	want := "Date,Type,Category,Amount,Description,Notes,Tags\n" +
		"2024-01-05,expense,Groceries,1234.5,\"Weekly \"\"big\"\" shop\",,food;weekly\n" +
		"2024-01-06,income,Unknown,200,\"Gift\",\"from, boss\",\n" +
		"2024-01-07,expense,\"Food, Drink\",0.99,\"\",,"
	assert.Equal(t, want, TransactionsToCSV(txns, testCategories))
}

func TestTransactionsToCSV_Empty(t *testing.T) {
	assert.Equal(t, TransactionsHeader, TransactionsToCSV(nil, testCategories))
}

func TestCategoriesToCSV(t *testing.T) {
	want := "Name,Type,Color,Icon\n" +
		"Salary,income,#22c55e,Briefcase\n" +
		"Groceries,expense,#f97316,ShoppingCart\n" +
		"\"Food, Drink\",expense,#ef4444,"
	assert.Equal(t, want, CategoriesToCSV(testCategories))
	assert.Equal(t, CategoriesHeader, CategoriesToCSV(nil))
}

func TestRoundTrip(t *testing.T) {
	txns := []model.Transaction{
		{Date: date(2024, 1, 5), Type: model.TypeExpense, CategoryID: "cat_2", Amount: decimal.RequireFromString("1234.5"), Description: `Weekly "big" shop`, Tags: []string{"food", "weekly"}},
		{Date: date(2024, 2, 29), Type: model.TypeIncome, CategoryID: "cat_1", Amount: decimal.NewFromInt(3000), Description: "Pay, February", Notes: "line one\nline two"},
		{Date: date(2023, 12, 31), Type: model.TypeExpense, CategoryID: "cat_3", Amount: decimal.RequireFromString("12.34"), Description: "Café"},
	}

	tbl := importer.ParseCSV(TransactionsToCSV(txns, testCategories))
	m := importer.NewMapper(id.NewSequence("rt"), time.Now)
	res := m.Map(tbl, importer.ExportMapping, testCategories)

	require.Empty(t, res.Errors)
	require.Empty(t, res.MissingCategories)
	require.Len(t, res.Transactions, len(txns))
	for i, want := range txns {
		got := res.Transactions[i]
		assert.True(t, want.Date.Equal(got.Date), "row %d date", i)
		assert.True(t, want.Amount.Equal(got.Amount), "row %d amount", i)
		assert.Equal(t, want.Type, got.Type, "row %d type", i)
		assert.Equal(t, want.Description, got.Description, "row %d description", i)
		assert.Equal(t, want.CategoryID, got.CategoryID, "row %d category", i)
		assert.Equal(t, want.Notes, got.Notes, "row %d notes", i)
		assert.Equal(t, want.Tags, got.Tags, "row %d tags", i)
	}
}
