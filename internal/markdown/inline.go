package markdown

import "regexp"

// inlineMatcher recognizes one inline construct. Matchers are tried in
// priority order; when two match at the same offset the earlier one wins.
type inlineMatcher struct {
	re   *regexp.Regexp
	emit func(groups []string) Span
}

// Priority order: emoji, underline, bold, italic, strike, link, code.
// Bold must precede italic so ** is not consumed as two italic markers.
var inlineMatchers = []inlineMatcher{
	{
		re:   regexp.MustCompile(`:([a-zA-Z0-9_.+-]+):`),
		emit: func(g []string) Span { return EmojiSpan(g[1]) },
	},
	{
		re:   regexp.MustCompile(`<u>(.+?)</u>`),
		emit: func(g []string) Span { return StyledSpan(g[1], SpanStyle{Underline: true}) },
	},
	{
		re:   regexp.MustCompile(`\*\*([^*]+)\*\*`),
		emit: func(g []string) Span { return StyledSpan(g[1], SpanStyle{Bold: true}) },
	},
	{
		re:   regexp.MustCompile(`\*([^*]+)\*`),
		emit: func(g []string) Span { return StyledSpan(g[1], SpanStyle{Italic: true}) },
	},
	{
		re:   regexp.MustCompile(`~~([^~]+)~~`),
		emit: func(g []string) Span { return StyledSpan(g[1], SpanStyle{Strike: true}) },
	},
	{
		re:   regexp.MustCompile(`\[(.+?)\]\((https?://[^\s)]+)\)`),
		emit: func(g []string) Span { return LinkSpan(g[1], g[2]) },
	},
	{
		re:   regexp.MustCompile("`([^`]+)`"),
		emit: func(g []string) Span { return StyledSpan(g[1], SpanStyle{Code: true}) },
	},
}

// ParseInline tokenizes one line of text into spans. Unmatched stretches
// become plain text spans; unclosed markers fall through as literal text.
// Every match consumes at least one byte, so the scan always terminates.
func ParseInline(s string) []Span {
	var spans []Span
	cursor := 0

	for cursor < len(s) {
		rest := s[cursor:]

		var best *inlineMatcher
		var bestLoc []int
		for i := range inlineMatchers {
			loc := inlineMatchers[i].re.FindStringSubmatchIndex(rest)
			if loc == nil {
				continue
			}
			if bestLoc == nil || loc[0] < bestLoc[0] {
				best = &inlineMatchers[i]
				bestLoc = loc
			}
		}
		if best == nil {
			break
		}

		if bestLoc[0] > 0 {
			spans = append(spans, TextSpan(rest[:bestLoc[0]]))
		}

		groups := make([]string, 0, len(bestLoc)/2)
		for i := 0; i < len(bestLoc); i += 2 {
			if bestLoc[i] < 0 {
				groups = append(groups, "")
				continue
			}
			groups = append(groups, rest[bestLoc[i]:bestLoc[i+1]])
		}
		spans = append(spans, best.emit(groups))

		cursor += bestLoc[1]
	}

	if cursor < len(s) {
		spans = append(spans, TextSpan(s[cursor:]))
	}

	return spans
}
