package generation

import (
	"strings"
)

// BoardTemplate describes how an examination board lays out a paper.
type BoardTemplate struct {
	Name       string
	TotalMarks int
	Duration   string
	Layout     string
}

var boardTemplates = map[string]BoardTemplate{
	"cbse": {
		Name:       "CBSE",
		TotalMarks: 80,
		Duration:   "3 hours",
		Layout: `Section A: 20 multiple choice questions of 1 mark each, including 2 assertion-reason items.
Section B: 5 very short answer questions of 2 marks each.
Section C: 6 short answer questions of 3 marks each.
Section D: 4 long answer questions of 5 marks each.
Section E: 3 case-based questions of 4 marks each with sub-parts.
Provide internal choice in 2 questions of Section B, C and D.`,
	},
	"icse": {
		Name:       "ICSE",
		TotalMarks: 80,
		Duration:   "2 hours 30 minutes",
		Layout: `Section A (40 marks): compulsory. Short and objective questions grouped under Question 1 to Question 3.
Section B (40 marks): six structured questions of 10 marks each. Candidates attempt any four.
State marks for every sub-part in brackets at the end of the line.`,
	},
	"state board": {
		Name:       "State Board",
		TotalMarks: 100,
		Duration:   "3 hours",
		Layout: `Part A: 15 objective questions of 1 mark each (fill in the blanks, match the following, true or false).
Part B: 10 short answer questions of 3 marks each. Answer any 8.
Part C: 8 long answer questions of 5 marks each. Answer any 6.
Part D: 2 application questions of 8 marks each with internal choice.`,
	},
}

// Template returns the layout for board, matched case-insensitively.
func Template(board string) (BoardTemplate, bool) {
	key := strings.ToLower(strings.Join(strings.Fields(board), " "))
	key = strings.ReplaceAll(key, "_", " ")
	t, ok := boardTemplates[key]
	return t, ok
}

// Boards lists the supported board names.
func Boards() []string {
	return []string{"CBSE", "ICSE", "State Board"}
}

// DifficultyLabel buckets a 0-100 difficulty into the band used in prompts.
func DifficultyLabel(difficulty int) string {
	switch {
	case difficulty <= 25:
		return "Easy"
	case difficulty <= 50:
		return "Medium"
	case difficulty <= 75:
		return "Hard"
	default:
		return "Olympiad"
	}
}

func difficultyGuidance(label string) string {
	switch label {
	case "Easy":
		return "Mostly direct recall and single-step textbook problems."
	case "Medium":
		return "A balanced mix of recall, standard problems and a few multi-step questions."
	case "Hard":
		return "Mostly multi-step application questions with unfamiliar contexts."
	default:
		return "Competition-level problems that combine several concepts and need insight beyond the syllabus routine."
	}
}
