package itembank

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"strings"

	"github.com/akt-prep/backend/internal/models"
)

// maxLineSize bounds a single dataset line; vignettes plus explanations can
// exceed bufio.Scanner's 64KB default.
const maxLineSize = 1 << 20

type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("dataset validation failed: %s", strings.Join(e.Errors, "; "))
}

// itemRecord is the wire shape of one dataset line. Options arrive as a JSON
// object and are normalized into canonical letter order.
type itemRecord struct {
	CaseID             string             `json:"case_id"`
	Domain             string             `json:"domain"`
	SubSpecialty       string             `json:"sub_specialty"`
	Topic              string             `json:"topic"`
	Question           string             `json:"question"`
	Options            map[string]string  `json:"options"`
	CorrectAnswer      string             `json:"correct_answer"`
	Explanation        models.Explanation `json:"explanation"`
	GuidelineReference []string           `json:"guideline_reference"`
}

// Load reads the JSON-Lines dataset at path into a Bank. A missing file is
// not an error: the trainer stays usable with zero items, so Load returns an
// empty bank and logs a warning. Malformed or invalid records fail the whole
// load rather than producing a partial bank.
func Load(path string) (*Bank, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Printf("WARNING: item dataset %s not found, starting with an empty bank", path)
			return NewBank(nil), nil
		}
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse reads one JSON record per line, skipping blank lines, and returns
// the validated bank. All record errors are accumulated with line numbers
// before failing.
func Parse(r io.Reader) (*Bank, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var items []models.Item
	var errs []string
	seen := make(map[string]int)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var rec itemRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			errs = append(errs, fmt.Sprintf("line %d: invalid JSON: %v", lineNum, err))
			continue
		}

		recErrs := validateRecord(&rec, lineNum)
		if prev, dup := seen[rec.CaseID]; dup && rec.CaseID != "" {
			recErrs = append(recErrs, fmt.Sprintf("line %d: duplicate case_id %q (first seen on line %d)", lineNum, rec.CaseID, prev))
		}
		if len(recErrs) > 0 {
			errs = append(errs, recErrs...)
			continue
		}

		seen[rec.CaseID] = lineNum
		items = append(items, buildItem(&rec))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}

	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	return NewBank(items), nil
}

func validateRecord(rec *itemRecord, lineNum int) []string {
	var errs []string

	if strings.TrimSpace(rec.CaseID) == "" {
		errs = append(errs, fmt.Sprintf("line %d: missing case_id", lineNum))
	}
	if strings.TrimSpace(rec.Domain) == "" {
		errs = append(errs, fmt.Sprintf("line %d: missing domain", lineNum))
	}
	if strings.TrimSpace(rec.SubSpecialty) == "" {
		errs = append(errs, fmt.Sprintf("line %d: missing sub_specialty", lineNum))
	}
	if strings.TrimSpace(rec.Question) == "" {
		errs = append(errs, fmt.Sprintf("line %d: missing question", lineNum))
	}

	if len(rec.Options) < 2 {
		errs = append(errs, fmt.Sprintf("line %d: expected at least 2 options, got %d", lineNum, len(rec.Options)))
	}
	for key := range rec.Options {
		if !models.ValidOptionKeys[key] {
			errs = append(errs, fmt.Sprintf("line %d: invalid option key %q", lineNum, key))
		}
	}

	if rec.CorrectAnswer == "" {
		errs = append(errs, fmt.Sprintf("line %d: missing correct_answer", lineNum))
	} else if _, ok := rec.Options[rec.CorrectAnswer]; !ok {
		errs = append(errs, fmt.Sprintf("line %d: correct_answer %q is not among the options", lineNum, rec.CorrectAnswer))
	}

	return errs
}

// buildItem converts a validated record into an Item, reordering options
// into the canonical A,B,C,D,E sequence regardless of source order and
// dropping letters not present.
func buildItem(rec *itemRecord) models.Item {
	options := make([]models.Option, 0, len(rec.Options))
	for _, key := range models.OptionKeys {
		if text, ok := rec.Options[key]; ok {
			options = append(options, models.Option{Key: key, Text: text})
		}
	}

	explanation := rec.Explanation
	if explanation.WhyOthersIncorrect == nil {
		explanation.WhyOthersIncorrect = []string{}
	}
	refs := rec.GuidelineReference
	if refs == nil {
		refs = []string{}
	}

	return models.Item{
		CaseID:             rec.CaseID,
		Domain:             rec.Domain,
		SubSpecialty:       rec.SubSpecialty,
		Topic:              rec.Topic,
		Question:           rec.Question,
		Options:            options,
		CorrectAnswer:      rec.CorrectAnswer,
		Explanation:        explanation,
		GuidelineReference: refs,
	}
}
