package summarizer

import (
	"regexp"
	"strings"
)

var (
	parenNote        = regexp.MustCompile(`(?i)\(\s*(note|disclaimer)\s*:[^)]*\)`)
	bracketNote      = regexp.MustCompile(`(?i)\[\s*(note|disclaimer)\s*:?[^\]]*\]`)
	lineNote         = regexp.MustCompile(`(?i)^(note|disclaimer)\s*:`)
	translationLabel = regexp.MustCompile(`(?i)^(translation|translated text)\s*:\s*`)
	spaces           = regexp.MustCompile(`[ \t]{2,}`)
)

// SanitizeAIText removes machine-translation disclaimers, leading labels and
// wrapping quotes that models add around a translation.
func SanitizeAIText(s string) string {
	s = parenNote.ReplaceAllString(s, "")
	s = bracketNote.ReplaceAllString(s, "")

	lines := strings.Split(s, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || lineNote.MatchString(line) {
			continue
		}
		line = translationLabel.ReplaceAllString(line, "")
		kept = append(kept, spaces.ReplaceAllString(line, " "))
	}

	out := strings.TrimSpace(strings.Join(kept, "\n"))
	for _, q := range quotePairs {
		if len(out) > len(q[0])+len(q[1]) && strings.HasPrefix(out, q[0]) && strings.HasSuffix(out, q[1]) {
			out = strings.TrimSpace(out[len(q[0]) : len(out)-len(q[1])])
			break
		}
	}
	return out
}

var quotePairs = [][2]string{{`"`, `"`}, {"«", "»"}, {"“", "”"}}
