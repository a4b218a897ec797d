package quiz

import (
	"errors"
	"sync"

	"github.com/akt-prep/backend/internal/itembank"
	"github.com/akt-prep/backend/internal/models"
)

var (
	ErrNoItems       = errors.New("no items match the current filters")
	ErrInvalidChoice = errors.New("choice is not one of the item's options")
)

// Session is one user's quiz state: the active filter, the derived view, the
// cursor into it, and the response/score bookkeeping. All operations are
// explicit state transitions guarded by the session lock, so overlapping
// requests for the same user (e.g. two tabs) cannot double-count a score.
type Session struct {
	mu    sync.Mutex
	owner string
	bank  *itembank.Bank

	filter    models.FilterSelection
	view      []models.Item
	cursor    int
	score     int
	responses map[string]string // case_id -> chosen letter
	scored    map[string]bool   // case_ids that already earned their point
}

// NewSession starts a fresh session over the bank: unfiltered view, cursor
// at 0, score 0, no responses.
func NewSession(owner string, bank *itembank.Bank) *Session {
	filter := models.FilterSelection{Domain: models.FilterAll, SubSpecialty: models.FilterAll}
	return &Session{
		owner:     owner,
		bank:      bank,
		filter:    filter,
		view:      filterItems(bank, filter),
		responses: make(map[string]string),
		scored:    make(map[string]bool),
	}
}

// ApplyFilter recomputes the view from the full bank. The cursor is kept if
// it still indexes the new view and reset to 0 otherwise.
func (s *Session) ApplyFilter(filter models.FilterSelection) error {
	if err := validateSelection(filter, s.bank); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.filter = filter
	s.view = filterItems(s.bank, filter)
	if s.cursor < 0 || s.cursor >= len(s.view) {
		s.cursor = 0
	}
	return nil
}

// FilterOptions enumerates the selectable values for both attributes along
// with the active selection.
func (s *Session) FilterOptions() models.FilterOptionsResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	return models.FilterOptionsResponse{
		Domains:        DomainOptions(s.bank),
		SubSpecialties: SubSpecialtyOptions(s.bank),
		Active:         s.filter,
	}
}

// Current returns the item under the cursor and the view size. The item is
// nil when the view is empty.
func (s *Session) Current() (*models.ItemView, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentLocked(), len(s.view)
}

// Submit records the choice for the current item and scores it. A correct
// answer earns one point at most once per item for the life of the session:
// re-submitting never re-increments, and changing a previously-correct
// answer to an incorrect one never decrements. The stored response always
// reflects the latest submission.
func (s *Session) Submit(choice string) (*models.SubmitResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.view) == 0 {
		return nil, ErrNoItems
	}
	item := s.view[s.cursor]
	if !item.HasOption(choice) {
		return nil, ErrInvalidChoice
	}

	s.responses[item.CaseID] = choice
	if choice == item.CorrectAnswer && !s.scored[item.CaseID] {
		s.scored[item.CaseID] = true
		s.score++
	}

	return &models.SubmitResponse{
		CaseID:   item.CaseID,
		Choice:   choice,
		Feedback: feedbackFor(item, choice),
		Score:    s.score,
		Answered: len(s.responses),
	}, nil
}

// Next advances the cursor, saturating at the last index.
func (s *Session) Next() (*models.ItemView, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cursor < len(s.view)-1 {
		s.cursor++
	}
	return s.currentLocked(), len(s.view)
}

// Previous moves the cursor back, saturating at 0.
func (s *Session) Previous() (*models.ItemView, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cursor > 0 {
		s.cursor--
	}
	return s.currentLocked(), len(s.view)
}

// Progress reports the score out of distinct answered items, with the view
// size alongside.
func (s *Session) Progress() models.ProgressResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	return models.ProgressResponse{
		Score:    s.score,
		Answered: len(s.responses),
		Total:    len(s.view),
	}
}

func (s *Session) currentLocked() *models.ItemView {
	if len(s.view) == 0 {
		return nil
	}

	item := s.view[s.cursor]
	view := &models.ItemView{
		CaseID:       item.CaseID,
		Domain:       item.Domain,
		SubSpecialty: item.SubSpecialty,
		Topic:        item.Topic,
		Question:     item.Question,
		Options:      item.Options,
		Position:     s.cursor + 1,
		Total:        len(s.view),
	}

	if response, ok := s.responses[item.CaseID]; ok {
		feedback := feedbackFor(item, response)
		view.Answered = true
		view.Response = response
		view.Feedback = &feedback
	}
	return view
}

// feedbackFor builds the explanation block for a stored response. The
// verdict compares that response to the answer key, so it can disagree with
// the score when an item was first answered correctly and then changed.
func feedbackFor(item models.Item, response string) models.Feedback {
	return models.Feedback{
		Correct:             response == item.CorrectAnswer,
		CorrectAnswer:       item.CorrectAnswer,
		Rationale:           item.Explanation.Rationale,
		WhyOthersIncorrect:  item.Explanation.WhyOthersIncorrect,
		GuidelineReferences: item.GuidelineReference,
	}
}
