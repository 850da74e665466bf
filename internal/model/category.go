package model

import "time"

// CategoryType indicates whether a category is for income, expense, or system use.
type CategoryType string

const (
	// CategoryTypeIncome represents categories for income transactions.
	CategoryTypeIncome CategoryType = "income"
	// CategoryTypeExpense represents categories for expense transactions.
	CategoryTypeExpense CategoryType = "expense"
	// CategoryTypeSystem represents system-managed categories (e.g., transfers).
	CategoryTypeSystem CategoryType = "system"
)

// Category represents a node in the user's category tree.
type Category struct {
	CreatedAt time.Time
	Name      string
	Type      CategoryType
	ParentID  *int
	ID        int
	IsActive  bool
}

// CategoryRule is a user-defined rule mapping a description pattern to a category.
// The suggestion pipeline consults these to avoid re-suggesting patterns the
// user has already encoded.
type CategoryRule struct {
	CreatedAt  time.Time
	Pattern    string
	ID         int
	CategoryID int
	Priority   int
	IsRegex    bool
	IsActive   bool
}
