package markdown

import "regexp"

// Signatures checked by ContainsMarkdown. Kept deliberately loose: a false
// negative just means the plain rendering path, a match only routes the text
// through Render.
var markdownSignatures = []*regexp.Regexp{
	regexp.MustCompile(`(?m)^#{1,6}\s.+`),
	regexp.MustCompile(`\*\*[^*]+\*\*`),
	regexp.MustCompile(`\*[^*]+\*`),
	regexp.MustCompile(`~~[^~]+~~`),
	regexp.MustCompile("`[^`]+`"),
	regexp.MustCompile("(?ms)^```.*```"),
	regexp.MustCompile(`(?m)^>.+`),
	regexp.MustCompile(`(?m)^- \[( |x|X)\] .+`),
	regexp.MustCompile(`(?m)^- .+`),
	regexp.MustCompile(`(?m)^\d+\. .+`),
	regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`),
	regexp.MustCompile(`\[[^\]]+\]\([^)]+\)`),
	regexp.MustCompile(`<u>[^<]+</u>`),
}

// ContainsMarkdown reports whether the text carries any markdown construct
// worth the full render path.
func ContainsMarkdown(text string) bool {
	if text == "" {
		return false
	}
	for _, sig := range markdownSignatures {
		if sig.MatchString(text) {
			return true
		}
	}
	return false
}
