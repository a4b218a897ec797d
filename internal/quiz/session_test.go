package quiz

import (
	"testing"

	"github.com/akt-prep/backend/internal/itembank"
	"github.com/akt-prep/backend/internal/models"
)

func makeItem(caseID, domain, subSpecialty, correct string) models.Item {
	return models.Item{
		CaseID:       caseID,
		Domain:       domain,
		SubSpecialty: subSpecialty,
		Topic:        "Initial management",
		Question:     "What is the most appropriate next step?",
		Options: []models.Option{
			{Key: "A", Text: "Start first-line therapy"},
			{Key: "B", Text: "Arrange urgent referral"},
			{Key: "C", Text: "Reassure and review"},
		},
		CorrectAnswer: correct,
		Explanation: models.Explanation{
			Rationale:          "The correct option follows the first-line pathway.",
			WhyOthersIncorrect: []string{"The others skip a required step."},
		},
		GuidelineReference: []string{"NICE NG106"},
	}
}

// testBank is the three-item bank used by most tests: two cardiovascular
// items and one respiratory.
func testBank() *itembank.Bank {
	return itembank.NewBank([]models.Item{
		makeItem("C1", "Cardiovascular", "Heart failure", "B"),
		makeItem("C2", "Cardiovascular", "Arrhythmia", "A"),
		makeItem("C3", "Respiratory", "Asthma", "C"),
	})
}

func sixItemBank() *itembank.Bank {
	return itembank.NewBank([]models.Item{
		makeItem("C1", "Cardiovascular", "Heart failure", "A"),
		makeItem("C2", "Cardiovascular", "Heart failure", "A"),
		makeItem("C3", "Cardiovascular", "Arrhythmia", "A"),
		makeItem("C4", "Cardiovascular", "Arrhythmia", "A"),
		makeItem("R1", "Respiratory", "Asthma", "A"),
		makeItem("R2", "Respiratory", "COPD", "A"),
	})
}

func TestSession_InitialState(t *testing.T) {
	s := NewSession("user-1", testBank())

	item, total := s.Current()
	if total != 3 {
		t.Errorf("initial view size = %d, want 3", total)
	}
	if item == nil {
		t.Fatal("expected a current item")
	}
	if item.CaseID != "C1" {
		t.Errorf("current item = %q, want C1", item.CaseID)
	}
	if item.Position != 1 {
		t.Errorf("position = %d, want 1", item.Position)
	}
	if item.Answered {
		t.Error("fresh session must have no recorded responses")
	}
	if item.Feedback != nil {
		t.Error("feedback must be withheld before a submission")
	}

	progress := s.Progress()
	if progress.Score != 0 || progress.Answered != 0 {
		t.Errorf("fresh progress = %+v, want score 0 and answered 0", progress)
	}

	opts := s.FilterOptions()
	if opts.Active.Domain != models.FilterAll || opts.Active.SubSpecialty != models.FilterAll {
		t.Errorf("fresh filter = %+v, want All/All", opts.Active)
	}
}

func TestSession_CursorClamping(t *testing.T) {
	s := NewSession("user-1", testBank())

	// Next past the end saturates at the last index.
	for i := 0; i < 5; i++ {
		s.Next()
	}
	item, _ := s.Current()
	if item.Position != 3 {
		t.Errorf("after 5x Next on 3 items, position = %d, want 3", item.Position)
	}

	// Previous past the start saturates at 0.
	for i := 0; i < 5; i++ {
		s.Previous()
	}
	item, _ = s.Current()
	if item.Position != 1 {
		t.Errorf("after 5x Previous, position = %d, want 1", item.Position)
	}
}

func TestSession_FilterChangeResetsOutOfRangeCursor(t *testing.T) {
	s := NewSession("user-1", sixItemBank())

	// Move to index 3 under the unfiltered view.
	s.Next()
	s.Next()
	s.Next()
	item, _ := s.Current()
	if item.CaseID != "C4" {
		t.Fatalf("cursor setup failed: current = %q, want C4", item.CaseID)
	}

	// The respiratory view has 2 items, so index 3 is out of range and the
	// cursor resets to 0.
	if err := s.ApplyFilter(models.FilterSelection{Domain: "Respiratory", SubSpecialty: models.FilterAll}); err != nil {
		t.Fatalf("ApplyFilter: %v", err)
	}
	item, total := s.Current()
	if total != 2 {
		t.Errorf("respiratory view size = %d, want 2", total)
	}
	if item.CaseID != "R1" || item.Position != 1 {
		t.Errorf("current after reset = %q position %d, want R1 position 1", item.CaseID, item.Position)
	}
}

func TestSession_FilterChangeKeepsInRangeCursor(t *testing.T) {
	s := NewSession("user-1", sixItemBank())
	s.Next() // index 1

	if err := s.ApplyFilter(models.FilterSelection{Domain: "Cardiovascular", SubSpecialty: models.FilterAll}); err != nil {
		t.Fatalf("ApplyFilter: %v", err)
	}
	item, total := s.Current()
	if total != 4 {
		t.Errorf("cardiovascular view size = %d, want 4", total)
	}
	if item.Position != 2 {
		t.Errorf("in-range cursor moved: position = %d, want 2", item.Position)
	}
}

func TestSession_FilterDeterminism(t *testing.T) {
	s := NewSession("user-1", sixItemBank())
	f1 := models.FilterSelection{Domain: "Cardiovascular", SubSpecialty: "Arrhythmia"}
	f2 := models.FilterSelection{Domain: "Respiratory", SubSpecialty: models.FilterAll}

	if err := s.ApplyFilter(f1); err != nil {
		t.Fatalf("ApplyFilter: %v", err)
	}
	first := viewCaseIDs(s)

	// Detour through another filter, then return.
	if err := s.ApplyFilter(f2); err != nil {
		t.Fatalf("ApplyFilter: %v", err)
	}
	if err := s.ApplyFilter(f1); err != nil {
		t.Fatalf("ApplyFilter: %v", err)
	}
	second := viewCaseIDs(s)

	if len(first) != len(second) {
		t.Fatalf("view sizes differ: %v vs %v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("view[%d] = %q after refilter, want %q", i, second[i], first[i])
		}
	}
}

func TestSession_UnknownFilterValue(t *testing.T) {
	s := NewSession("user-1", testBank())

	err := s.ApplyFilter(models.FilterSelection{Domain: "Neurology", SubSpecialty: models.FilterAll})
	if err == nil {
		t.Fatal("expected error for a domain outside the bank's enumeration")
	}

	// State is unchanged after a rejected filter.
	_, total := s.Current()
	if total != 3 {
		t.Errorf("view size after rejected filter = %d, want 3", total)
	}
}

func TestSession_SubmitRecordsAndScores(t *testing.T) {
	s := NewSession("user-1", testBank())

	resp, err := s.Submit("B")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if resp.CaseID != "C1" {
		t.Errorf("submitted case = %q, want C1", resp.CaseID)
	}
	if !resp.Feedback.Correct {
		t.Error("expected a correct verdict")
	}
	if resp.Feedback.CorrectAnswer != "B" {
		t.Errorf("feedback correct_answer = %q, want B", resp.Feedback.CorrectAnswer)
	}
	if resp.Feedback.Rationale == "" {
		t.Error("expected a rationale")
	}
	if len(resp.Feedback.WhyOthersIncorrect) == 0 {
		t.Error("expected distractor rationales")
	}
	if len(resp.Feedback.GuidelineReferences) == 0 {
		t.Error("expected guideline references")
	}
	if resp.Score != 1 || resp.Answered != 1 {
		t.Errorf("score/answered = %d/%d, want 1/1", resp.Score, resp.Answered)
	}

	// The current item now carries the stored response and feedback.
	item, _ := s.Current()
	if !item.Answered || item.Response != "B" {
		t.Errorf("current item answered=%v response=%q, want true/B", item.Answered, item.Response)
	}
	if item.Feedback == nil || !item.Feedback.Correct {
		t.Error("expected correct feedback on the current item")
	}
}

func TestSession_AtMostOnceScoring(t *testing.T) {
	s := NewSession("user-1", testBank())

	// Correct twice: one point only.
	if _, err := s.Submit("B"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	resp, err := s.Submit("B")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if resp.Score != 1 {
		t.Errorf("score after resubmitting correct = %d, want 1", resp.Score)
	}
	if resp.Answered != 1 {
		t.Errorf("answered after resubmitting = %d, want 1", resp.Answered)
	}

	// Changing to an incorrect answer updates the response and verdict but
	// never decrements the score.
	resp, err = s.Submit("A")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if resp.Score != 1 {
		t.Errorf("score after changing to incorrect = %d, want 1", resp.Score)
	}
	if resp.Feedback.Correct {
		t.Error("verdict must reflect the stored response, which is now incorrect")
	}

	item, _ := s.Current()
	if item.Response != "A" {
		t.Errorf("stored response = %q, want A", item.Response)
	}
	if item.Feedback.Correct {
		t.Error("current feedback must be incorrect after the change")
	}
}

func TestSession_SubmitInvalidChoice(t *testing.T) {
	s := NewSession("user-1", testBank())

	// The items offer A, B, C only.
	if _, err := s.Submit("E"); err != ErrInvalidChoice {
		t.Fatalf("Submit(E) error = %v, want ErrInvalidChoice", err)
	}

	progress := s.Progress()
	if progress.Answered != 0 || progress.Score != 0 {
		t.Errorf("rejected submit changed state: %+v", progress)
	}
}

func TestSession_EmptyBank(t *testing.T) {
	s := NewSession("user-1", itembank.NewBank(nil))

	opts := s.FilterOptions()
	if len(opts.Domains) != 1 || opts.Domains[0] != models.FilterAll {
		t.Errorf("empty-bank domains = %v, want [All]", opts.Domains)
	}
	if len(opts.SubSpecialties) != 1 || opts.SubSpecialties[0] != models.FilterAll {
		t.Errorf("empty-bank sub-specialties = %v, want [All]", opts.SubSpecialties)
	}

	item, total := s.Current()
	if item != nil || total != 0 {
		t.Errorf("Current() on empty bank = (%v, %d), want (nil, 0)", item, total)
	}

	if item, _ := s.Next(); item != nil {
		t.Error("Next() on empty bank must stay empty")
	}
	if item, _ := s.Previous(); item != nil {
		t.Error("Previous() on empty bank must stay empty")
	}

	if _, err := s.Submit("A"); err != ErrNoItems {
		t.Errorf("Submit on empty bank error = %v, want ErrNoItems", err)
	}

	progress := s.Progress()
	if progress.Score != 0 || progress.Answered != 0 || progress.Total != 0 {
		t.Errorf("empty-bank progress = %+v, want zeros", progress)
	}
}

func TestSession_ScoreOverDistinctAnswered(t *testing.T) {
	s := NewSession("user-1", testBank())

	if _, err := s.Submit("B"); err != nil { // C1 correct
		t.Fatalf("Submit: %v", err)
	}
	s.Next()
	if _, err := s.Submit("C"); err != nil { // C2 incorrect
		t.Fatalf("Submit: %v", err)
	}

	progress := s.Progress()
	if progress.Score != 1 {
		t.Errorf("score = %d, want 1", progress.Score)
	}
	if progress.Answered != 2 {
		t.Errorf("answered = %d, want 2", progress.Answered)
	}
	if progress.Total != 3 {
		t.Errorf("total = %d, want 3", progress.Total)
	}
}

func TestSession_EndToEnd(t *testing.T) {
	s := NewSession("user-1", testBank())

	if err := s.ApplyFilter(models.FilterSelection{Domain: "Cardiovascular", SubSpecialty: models.FilterAll}); err != nil {
		t.Fatalf("ApplyFilter: %v", err)
	}

	item, total := s.Current()
	if total != 2 {
		t.Fatalf("cardiovascular view size = %d, want 2", total)
	}
	if item.CaseID != "C1" {
		t.Fatalf("current = %q, want C1", item.CaseID)
	}

	resp, err := s.Submit("B")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if resp.Score != 1 || resp.Answered != 1 {
		t.Fatalf("after correct submit, score/answered = %d/%d, want 1/1", resp.Score, resp.Answered)
	}

	next, _ := s.Next()
	if next.CaseID != "C2" {
		t.Fatalf("after Next, current = %q, want C2", next.CaseID)
	}

	back, _ := s.Previous()
	if back.CaseID != "C1" {
		t.Fatalf("after Previous, current = %q, want C1", back.CaseID)
	}
	if !back.Answered || back.Response != "B" {
		t.Errorf("navigation lost the recorded response: answered=%v response=%q", back.Answered, back.Response)
	}

	progress := s.Progress()
	if progress.Score != 1 || progress.Answered != 1 {
		t.Errorf("navigation changed progress: %+v", progress)
	}
}

func viewCaseIDs(s *Session) []string {
	var ids []string
	item, total := s.Current()
	if item == nil {
		return ids
	}
	// Walk the view via navigation so the test observes the same state the
	// user would.
	for i := 0; i < item.Position-1; i++ {
		s.Previous()
	}
	current, _ := s.Current()
	ids = append(ids, current.CaseID)
	for i := 1; i < total; i++ {
		next, _ := s.Next()
		ids = append(ids, next.CaseID)
	}
	return ids
}
