package internal

import (
	"regexp"
	"strings"
)

// Bullet replaces "-", "*" and "+" list markers in assistant replies.
const Bullet = "• "

var (
	boldPattern       = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicPattern     = regexp.MustCompile(`\*(.*?)\*`)
	bulletPattern     = regexp.MustCompile(`(?m)^[ \t]*[-*+][ \t]+`)
	numberedPattern   = regexp.MustCompile(`(?m)^[ \t]*(\d+\.)[ \t]+`)
	blankLinesPattern = regexp.MustCompile(`\n\s*\n\s*\n`)

	unescaper = strings.NewReplacer(
		`\\`, `\`,
		`\"`, `"`,
		`\n`, "\n",
		`\t`, "\t",
	)
)

// FormatResponseText cleans assistant text for plain-terminal display:
// markdown emphasis is stripped, literal escape sequences are unescaped,
// list markers become bullets, runs of blank lines collapse to one, and the
// result is trimmed.
//
// The pass is repeated until the text stops changing, so the function is
// idempotent: FormatResponseText(FormatResponseText(s)) == FormatResponseText(s).
func FormatResponseText(text string) string {
	if text == "" {
		return ""
	}
	// A changing pass never adds backslashes, asterisks, list markers or tabs
	// and always drops one of them or some whitespace, so the loop ends.
	out := text
	for {
		next := formatPass(out)
		if next == out {
			return out
		}
		out = next
	}
}

func formatPass(text string) string {
	text = boldPattern.ReplaceAllString(text, "$1")
	text = italicPattern.ReplaceAllString(text, "$1")
	text = unescaper.Replace(text)
	text = bulletPattern.ReplaceAllString(text, Bullet)
	text = numberedPattern.ReplaceAllString(text, "$1 ")
	text = blankLinesPattern.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
