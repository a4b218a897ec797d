package itembank

import (
	"sort"

	"github.com/akt-prep/backend/internal/models"
)

// Bank is the full in-memory item collection, ordered by dataset position
// and indexed by case_id. It is built once at startup and never mutated, so
// concurrent reads need no locking.
type Bank struct {
	items          []models.Item
	byID           map[string]int
	domains        []string
	subSpecialties []string
}

// NewBank builds a bank from already-validated items. Load enforces case_id
// uniqueness; NewBank assumes it.
func NewBank(items []models.Item) *Bank {
	b := &Bank{
		items: items,
		byID:  make(map[string]int, len(items)),
	}
	for i, it := range items {
		b.byID[it.CaseID] = i
	}
	b.domains = distinctValues(items, func(it models.Item) string { return it.Domain })
	b.subSpecialties = distinctValues(items, func(it models.Item) string { return it.SubSpecialty })
	return b
}

func (b *Bank) Len() int {
	return len(b.items)
}

// Items returns the bank's items in dataset order. Callers must treat the
// slice as read-only.
func (b *Bank) Items() []models.Item {
	return b.items
}

func (b *Bank) ByID(caseID string) (models.Item, bool) {
	i, ok := b.byID[caseID]
	if !ok {
		return models.Item{}, false
	}
	return b.items[i], true
}

// Domains returns the distinct non-empty domain values, sorted
// lexicographically.
func (b *Bank) Domains() []string {
	return b.domains
}

// SubSpecialties returns the distinct non-empty sub-specialty values, sorted
// lexicographically.
func (b *Bank) SubSpecialties() []string {
	return b.subSpecialties
}

func distinctValues(items []models.Item, key func(models.Item) string) []string {
	seen := make(map[string]bool)
	var values []string
	for _, it := range items {
		v := key(it)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}
