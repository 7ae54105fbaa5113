package storage

import (
	"github.com/shopspring/decimal"

	"idledger/internal/core"
)

// SeedDate is the dateAdded/date stamped on every seeded entity.
const SeedDate = "2023-10-25"

// Seed returns the dataset used for any collection with no stored value.
// Each call returns fresh slices.
func Seed() core.Snapshot {
	return core.Snapshot{
		Categories: []core.Category{
			{ID: "1", Name: "Cyborg", ImageURL: "https://picsum.photos/seed/cyborg1/400/300"},
			{ID: "2", Name: "Leopard", ImageURL: "https://picsum.photos/seed/leopard/400/300"},
			{ID: "3", Name: "Dragon", ImageURL: "https://picsum.photos/seed/dragon/400/300"},
		},
		Records: []core.Record{
			{
				ID:        "1",
				Category:  "Cyborg",
				Name:      "katw63erct25:kl2pc97640l",
				Details:   "V4 Full, 10M Bounty",
				Profit:    decimal.NewFromInt(450),
				Status:    core.StatusSold,
				DateAdded: SeedDate,
			},
			{
				ID:        "2",
				Category:  "Cyborg",
				Name:      "bohf40taya40:5t6cs0mwp3qu",
				Details:   "V3, Gamepassครบ",
				Profit:    decimal.NewFromInt(320),
				Status:    core.StatusAvailable,
				DateAdded: SeedDate,
			},
		},
		Expenses: []core.Expense{
			{ID: "1", Title: "ค่าโฆษณา Facebook", Amount: decimal.NewFromInt(500), Date: SeedDate},
			{ID: "2", Title: "ค่าน้ำมัน", Amount: decimal.NewFromInt(200), Date: SeedDate},
		},
	}
}
