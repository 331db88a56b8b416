package categories

import "github.com/fintrack-dev/fintrack/internal/model"

// DefaultSet returns the starter categories written by init. IDs and
// timestamps are left for the caller to assign.
func DefaultSet() []model.Category {
	return []model.Category{
		{Name: "Salary", Type: model.TypeIncome, Color: "#22c55e", Icon: "Briefcase"},
		{Name: "Freelance", Type: model.TypeIncome, Color: "#10b981", Icon: "Laptop"},
		{Name: "Investments", Type: model.TypeIncome, Color: "#14b8a6", Icon: "TrendingUp"},
		{Name: "Groceries", Type: model.TypeExpense, Color: "#f97316", Icon: "ShoppingCart"},
		{Name: "Rent", Type: model.TypeExpense, Color: "#ef4444", Icon: "Home"},
		{Name: "Utilities", Type: model.TypeExpense, Color: "#eab308", Icon: "Zap"},
		{Name: "Transport", Type: model.TypeExpense, Color: "#3b82f6", Icon: "Car"},
		{Name: "Dining Out", Type: model.TypeExpense, Color: "#ec4899", Icon: "Utensils"},
		{Name: "Entertainment", Type: model.TypeExpense, Color: "#8b5cf6", Icon: "Film"},
		{Name: "Healthcare", Type: model.TypeExpense, Color: "#06b6d4", Icon: "Heart"},
	}
}
