package repository

import (
	"context"

	"idledger/internal/core"
)

func categoryID(c core.Category) string { return c.ID }

func (r *Repository) CreateCategory(ctx context.Context, in core.CategoryInput) (core.Category, error) {
	var created core.Category
	err := mutate(ctx, r, r.categoryColl(), OpCreate, func(items []core.Category) ([]core.Category, []string) {
		created = core.Category{ID: r.ids.reserve(1)[0], Name: in.Name, ImageURL: in.ImageURL}
		return append(items, created), []string{created.ID}
	})
	if err != nil {
		return core.Category{}, err
	}
	return created, nil
}

// UpdateCategory merges the present patch fields. Records keep referencing
// the old name after a rename.
func (r *Repository) UpdateCategory(ctx context.Context, id string, patch core.CategoryPatch) error {
	return mutate(ctx, r, r.categoryColl(), OpUpdate, func(items []core.Category) ([]core.Category, []string) {
		return updateIDs(items, []string{id}, categoryID, patch.Apply)
	})
}

// DeleteCategory removes the category only; its records are left dangling.
func (r *Repository) DeleteCategory(ctx context.Context, id string) error {
	return mutate(ctx, r, r.categoryColl(), OpDelete, func(items []core.Category) ([]core.Category, []string) {
		return removeIDs(items, []string{id}, categoryID)
	})
}
