package models

// FilterAll is the sentinel selection matching every value of an attribute.
// It is always the first entry of a selection list.
const FilterAll = "All"

// FilterSelection is the pair of taxonomy criteria the working view is
// derived from. Matching is exact string equality.
type FilterSelection struct {
	Domain       string `json:"domain"`
	SubSpecialty string `json:"sub_specialty"`
}

type FilterOptionsResponse struct {
	Domains        []string        `json:"domains"`
	SubSpecialties []string        `json:"sub_specialties"`
	Active         FilterSelection `json:"active"`
}

// ItemView is the current item as presented to the trainee. The answer key
// and explanation are withheld until the item has a recorded response.
type ItemView struct {
	CaseID       string    `json:"case_id"`
	Domain       string    `json:"domain"`
	SubSpecialty string    `json:"sub_specialty"`
	Topic        string    `json:"topic"`
	Question     string    `json:"question"`
	Options      []Option  `json:"options"`
	Position     int       `json:"position"` // 1-based within the view
	Total        int       `json:"total"`
	Answered     bool      `json:"answered"`
	Response     string    `json:"response,omitempty"`
	Feedback     *Feedback `json:"feedback,omitempty"`
}

type CurrentItemResponse struct {
	Item  *ItemView `json:"item"` // nil when no items match the filters
	Total int       `json:"total"`
}

// Feedback explains a recorded response. Correct compares the stored
// response to the answer key, so it reflects the latest submission.
type Feedback struct {
	Correct             bool     `json:"correct"`
	CorrectAnswer       string   `json:"correct_answer"`
	Rationale           string   `json:"rationale"`
	WhyOthersIncorrect  []string `json:"why_others_incorrect"`
	GuidelineReferences []string `json:"guideline_references"`
}

type SubmitRequest struct {
	Choice string `json:"choice"`
}

type SubmitResponse struct {
	CaseID   string   `json:"case_id"`
	Choice   string   `json:"choice"`
	Feedback Feedback `json:"feedback"`
	Score    int      `json:"score"`
	Answered int      `json:"answered"`
}

// ProgressResponse reports Score out of distinct answered items, not out of
// the view size; Total is the view size for display alongside.
type ProgressResponse struct {
	Score    int `json:"score"`
	Answered int `json:"answered"`
	Total    int `json:"total"`
}
