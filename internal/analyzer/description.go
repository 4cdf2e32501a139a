package analyzer

import (
	"regexp"
	"strings"
)

// NoDescription is returned when a file has no usable header comment.
const NoDescription = "No description available"

const (
	headerScanLines = 30
	headerKeepLines = 5
)

var (
	lineCommentRe  = regexp.MustCompile(`^(//|#)\s*`)
	blockCommentRe = regexp.MustCompile(`^\s*\*\s*`)
)

// ExtractDescription collects header comment text from the first lines of a
// file. A line starting with "/*" opens a block, a later line containing
// "*/" closes it; same-line open and close and nesting are not handled.
func ExtractDescription(content string) string {
	lines := strings.Split(content, "\n")
	if len(lines) > headerScanLines {
		lines = lines[:headerScanLines]
	}

	var header []string
	inComment := false
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		switch {
		case strings.HasPrefix(line, "//") || strings.HasPrefix(line, "#"):
			header = append(header, lineCommentRe.ReplaceAllString(line, ""))
		case strings.HasPrefix(line, "/*"):
			inComment = true
		case strings.Contains(line, "*/"):
			inComment = false
		case inComment:
			header = append(header, blockCommentRe.ReplaceAllString(line, ""))
		}
	}

	if len(header) > headerKeepLines {
		header = header[:headerKeepLines]
	}
	if desc := strings.TrimSpace(strings.Join(header, " ")); desc != "" {
		return desc
	}
	return NoDescription
}
