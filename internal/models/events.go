package models

const (
	StatusSolvingPage = "solving_page"
	StatusCompleted   = "completed"
)

// Event is one line of a solve stream.
type Event interface {
	EventStatus() string
}

// PageProgress is emitted after each page, success or failure.
type PageProgress struct {
	Status  string `json:"status"`
	Current int    `json:"current"`
	Total   int    `json:"total"`
}

func NewPageProgress(current, total int) PageProgress {
	return PageProgress{Status: StatusSolvingPage, Current: current, Total: total}
}

func (p PageProgress) EventStatus() string { return p.Status }

// SolveCompleted is the single terminal event of a solve stream. Empty
// URLs or PaperID mean the corresponding artifact could not be persisted.
type SolveCompleted struct {
	Status       string `json:"status"`
	PaperID      string `json:"paper_id"`
	OriginalURL  string `json:"original_url"`
	SolutionURL  string `json:"solution_url"`
	SolutionText string `json:"solution_text"`
}

func (c SolveCompleted) EventStatus() string { return c.Status }
