package models

// OptionKeys is the canonical display order for option letters. Items may
// use any subset; absent letters are skipped without renumbering.
var OptionKeys = []string{"A", "B", "C", "D", "E"}

var ValidOptionKeys = map[string]bool{"A": true, "B": true, "C": true, "D": true, "E": true}

// ── Core Structs ───────────────────────────────────────

// Item is one multiple-choice question. Immutable once loaded.
type Item struct {
	CaseID             string      `json:"case_id"`
	Domain             string      `json:"domain"`
	SubSpecialty       string      `json:"sub_specialty"`
	Topic              string      `json:"topic"`
	Question           string      `json:"question"`
	Options            []Option    `json:"options"`
	CorrectAnswer      string      `json:"correct_answer"`
	Explanation        Explanation `json:"explanation"`
	GuidelineReference []string    `json:"guideline_reference"`
}

// Option is a single answer choice, keyed by letter. Options is always
// served as an ordered array so clients never depend on object key order.
type Option struct {
	Key  string `json:"key"`
	Text string `json:"text"`
}

type Explanation struct {
	Rationale          string   `json:"rationale"`
	WhyOthersIncorrect []string `json:"why_others_incorrect"`
}

// HasOption reports whether the item offers the given letter key.
func (it *Item) HasOption(key string) bool {
	for _, opt := range it.Options {
		if opt.Key == key {
			return true
		}
	}
	return false
}
