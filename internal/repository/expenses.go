package repository

import (
	"context"

	"idledger/internal/core"
)

func expenseID(e core.Expense) string { return e.ID }

func (r *Repository) CreateExpense(ctx context.Context, in core.ExpenseInput) (core.Expense, error) {
	var created core.Expense
	err := mutate(ctx, r, r.expenseColl(), OpCreate, func(items []core.Expense) ([]core.Expense, []string) {
		created = core.Expense{ID: r.ids.reserve(1)[0], Title: in.Title, Amount: in.Amount, Date: r.today()}
		return append(items, created), []string{created.ID}
	})
	if err != nil {
		return core.Expense{}, err
	}
	return created, nil
}

// UpdateExpense edits title and amount. The date keeps its original value.
func (r *Repository) UpdateExpense(ctx context.Context, id string, patch core.ExpensePatch) error {
	return mutate(ctx, r, r.expenseColl(), OpUpdate, func(items []core.Expense) ([]core.Expense, []string) {
		return updateIDs(items, []string{id}, expenseID, patch.Apply)
	})
}

func (r *Repository) DeleteExpense(ctx context.Context, id string) error {
	return mutate(ctx, r, r.expenseColl(), OpDelete, func(items []core.Expense) ([]core.Expense, []string) {
		return removeIDs(items, []string{id}, expenseID)
	})
}
