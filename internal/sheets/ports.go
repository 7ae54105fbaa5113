package sheets

import (
	"context"
	"fmt"

	"idledger/internal/core"
)

// Ports for outbound adapters.
type (
	// TabWriter replaces the whole content of a spreadsheet tab, creating the
	// tab when it does not exist yet.
	TabWriter interface {
		ReplaceTab(ctx context.Context, tab string, rows [][]any) error
	}
)

var tabTitles = map[core.Collection]string{
	core.CollectionCategories: "Categories",
	core.CollectionRecords:    "Records",
	core.CollectionExpenses:   "Expenses",
}

// TabName is the tab mirroring collection c, e.g. "IDLedger Records".
func TabName(base string, c core.Collection) string {
	if base == "" {
		return tabTitles[c]
	}
	return base + " " + tabTitles[c]
}

// Rows renders one collection of snap as a header row followed by one row
// per entity, in collection order.
func Rows(snap core.Snapshot, c core.Collection) ([][]any, error) {
	switch c {
	case core.CollectionCategories:
		rows := [][]any{{"ID", "Name", "Image URL"}}
		for _, x := range snap.Categories {
			rows = append(rows, []any{x.ID, x.Name, x.ImageURL})
		}
		return rows, nil
	case core.CollectionRecords:
		rows := [][]any{{"ID", "Category", "Name", "Details", "Profit", "Status", "Date Added"}}
		for _, x := range snap.Records {
			rows = append(rows, []any{x.ID, x.Category, x.Name, x.Details, x.Profit.InexactFloat64(), string(x.Status), x.DateAdded})
		}
		return rows, nil
	case core.CollectionExpenses:
		rows := [][]any{{"ID", "Title", "Amount", "Date"}}
		for _, x := range snap.Expenses {
			rows = append(rows, []any{x.ID, x.Title, x.Amount.InexactFloat64(), x.Date})
		}
		return rows, nil
	default:
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownCollection, c)
	}
}
