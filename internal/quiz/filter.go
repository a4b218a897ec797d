package quiz

import (
	"fmt"

	"github.com/akt-prep/backend/internal/itembank"
	"github.com/akt-prep/backend/internal/models"
)

// DomainOptions returns the selectable domain values: the "All" sentinel
// first, then the bank's distinct values in sorted order.
func DomainOptions(bank *itembank.Bank) []string {
	return append([]string{models.FilterAll}, bank.Domains()...)
}

// SubSpecialtyOptions returns the selectable sub-specialty values, "All"
// first. Enumeration always draws on the full bank, never the current view.
func SubSpecialtyOptions(bank *itembank.Bank) []string {
	return append([]string{models.FilterAll}, bank.SubSpecialties()...)
}

// filterItems recomputes the working view from the full bank. It never
// derives from a previous view, so filters cannot compound stale state.
func filterItems(bank *itembank.Bank, filter models.FilterSelection) []models.Item {
	var view []models.Item
	for _, item := range bank.Items() {
		if filter.Domain != models.FilterAll && item.Domain != filter.Domain {
			continue
		}
		if filter.SubSpecialty != models.FilterAll && item.SubSpecialty != filter.SubSpecialty {
			continue
		}
		view = append(view, item)
	}
	return view
}

// validateSelection rejects values outside the bank's enumeration so a typo
// reads as an error instead of a silently empty view.
func validateSelection(filter models.FilterSelection, bank *itembank.Bank) error {
	if filter.Domain != models.FilterAll && !containsString(bank.Domains(), filter.Domain) {
		return fmt.Errorf("unknown domain %q", filter.Domain)
	}
	if filter.SubSpecialty != models.FilterAll && !containsString(bank.SubSpecialties(), filter.SubSpecialty) {
		return fmt.Errorf("unknown sub_specialty %q", filter.SubSpecialty)
	}
	return nil
}

func containsString(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
