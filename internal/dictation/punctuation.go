package dictation

import "regexp"

type punctuationRule struct {
	pattern     *regexp.Regexp
	replacement string
}

// Applied in order. Closing forms come before opening ones so "unquote" is
// never read as "quote".
var punctuationRules = []punctuationRule{
	{regexp.MustCompile(`(?i)\s*\bnew paragraph\b\s*`), "\n\n"},
	{regexp.MustCompile(`(?i)\s*\bnew line\b\s*`), "\n"},
	{regexp.MustCompile(`(?i)\s*\b(?:full stop|period)\b`), "."},
	{regexp.MustCompile(`(?i)\s*\bcomma\b`), ","},
	{regexp.MustCompile(`(?i)\s*\bquestion mark\b`), "?"},
	{regexp.MustCompile(`(?i)\s*\bexclamation (?:mark|point)\b`), "!"},
	{regexp.MustCompile(`(?i)\s*\bsemicolon\b`), ";"},
	{regexp.MustCompile(`(?i)\s*\bcolon\b`), ":"},
	{regexp.MustCompile(`(?i)\s*\bclose bracket\b`), ")"},
	{regexp.MustCompile(`(?i)\bopen bracket\b\s*`), "("},
	{regexp.MustCompile(`(?i)\s*\bhyphen\b\s*`), "-"},
	{regexp.MustCompile(`(?i)\s*\bdash\b\s*`), " - "},
	{regexp.MustCompile(`(?i)\s*\b(?:unquote|end quote|close quote)\b`), `"`},
	{regexp.MustCompile(`(?i)\b(?:open )?quote\b\s*`), `"`},
}

// ApplyPunctuation replaces spoken punctuation commands in fragment with the
// characters they name. Every command in the fragment is replaced.
func ApplyPunctuation(fragment string) string {
	for _, r := range punctuationRules {
		fragment = r.pattern.ReplaceAllString(fragment, r.replacement)
	}
	return fragment
}
