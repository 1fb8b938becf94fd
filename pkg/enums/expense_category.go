package enums

import "fmt"

// ExpenseCategory buckets expense transactions. Required when the
// transaction type is expense, absent otherwise.
type ExpenseCategory string

const (
	ExpenseCategoryIngredients ExpenseCategory = "ingredients"
	ExpenseCategorySupplies    ExpenseCategory = "supplies"
	ExpenseCategoryUtilities   ExpenseCategory = "utilities"
	ExpenseCategoryOther       ExpenseCategory = "other"
)

var validExpenseCategories = []ExpenseCategory{
	ExpenseCategoryIngredients,
	ExpenseCategorySupplies,
	ExpenseCategoryUtilities,
	ExpenseCategoryOther,
}

// String implements fmt.Stringer.
func (e ExpenseCategory) String() string {
	return string(e)
}

// IsValid reports whether the value is a known ExpenseCategory.
func (e ExpenseCategory) IsValid() bool {
	for _, candidate := range validExpenseCategories {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseExpenseCategory converts raw input into an ExpenseCategory.
func ParseExpenseCategory(value string) (ExpenseCategory, error) {
	for _, candidate := range validExpenseCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid expense category %q", value)
}
