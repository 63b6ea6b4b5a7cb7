package artifacts

import (
	"path"
	"strings"
)

// Object path prefixes inside the bucket.
const (
	PrefixOriginals   = "originals/"
	PrefixSolutions   = "solutions/"
	PrefixStudents    = "students/"
	PrefixEvaluations = "evaluations/"
	PrefixGenerated   = "generated/"
)

const MarkdownContentType = "text/markdown; charset=utf-8"

func OriginalPath(jobID, filename string) string {
	return PrefixOriginals + jobID + "_" + cleanName(filename)
}

func SolutionPath(jobID string) string {
	return PrefixSolutions + jobID + "_solution.md"
}

func SubmissionPath(jobID, filename string) string {
	return PrefixStudents + jobID + "_" + cleanName(filename)
}

func ReportPath(jobID string) string {
	return PrefixEvaluations + jobID + "_report.md"
}

func GeneratedPath(jobID string) string {
	return PrefixGenerated + jobID + "_paper.md"
}

// cleanName keeps only the final element of a client supplied filename.
func cleanName(filename string) string {
	name := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	if name == "." || name == "/" || name == "" {
		return "upload"
	}
	return name
}
