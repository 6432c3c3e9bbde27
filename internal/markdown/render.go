package markdown

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	fencePattern     = regexp.MustCompile("^```")
	checklistPattern = regexp.MustCompile(`^- \[( |x|X)\] (.+)`)
	orderedPattern   = regexp.MustCompile(`^\d+\. `)
	imagePattern     = regexp.MustCompile(`!\[([^\]]*)\]\(([^)]+)\)`)
	emojiImgPattern  = regexp.MustCompile(`!\[([^\]]+)\]\(([^)]+)\)`)
	quotePattern     = regexp.MustCompile(`^>\s?`)
)

// rewriteEmojiImages converts image syntax pointing at the workspace emoji
// CDN into an emoji shortcode, so custom emoji pasted as images render inline.
func rewriteEmojiImages(text string) string {
	return emojiImgPattern.ReplaceAllStringFunc(text, func(match string) string {
		g := emojiImgPattern.FindStringSubmatch(match)
		decoded, err := url.QueryUnescape(g[2])
		if err != nil {
			return match
		}
		if strings.Contains(decoded, "emoji.slack-edge.com") {
			return ":" + g[1] + ":"
		}
		return match
	})
}

// Render converts markdown text into an ordered block sequence. It is a
// line-level state machine: the only mode is "inside a code fence", everything
// else is classified line by line with first-match-wins precedence.
func Render(text string) []Block {
	if text == "" {
		return nil
	}
	text = rewriteEmojiImages(text)

	var blocks []Block
	inCodeBlock := false
	var codeBuffer []string

	flushCode := func() {
		blocks = append(blocks, SectionBlock{
			Text: "```" + strings.Join(codeBuffer, "\n") + "```",
		})
	}

	for _, rawLine := range strings.Split(text, "\n") {
		line := strings.TrimRight(rawLine, " \t")

		if fencePattern.MatchString(line) {
			if !inCodeBlock {
				inCodeBlock = true
				codeBuffer = nil
			} else {
				flushCode()
				inCodeBlock = false
			}
			continue
		}

		if inCodeBlock {
			codeBuffer = append(codeBuffer, rawLine)
			continue
		}

		switch {
		case line == "---":
			blocks = append(blocks, DividerBlock{})

		case strings.HasPrefix(line, "### "):
			blocks = append(blocks, HeaderBlock{Text: strings.TrimPrefix(line, "### ")})

		case strings.HasPrefix(line, "## "):
			spans := ParseInline(strings.TrimPrefix(line, "## "))
			blocks = append(blocks, RichTextBlock{Spans: emboldened(spans)})

		case strings.HasPrefix(line, "# "):
			blocks = append(blocks, HeaderBlock{Text: strings.TrimPrefix(line, "# ")})

		case strings.HasPrefix(line, ">"):
			blocks = append(blocks, RichTextBlock{
				Quote: true,
				Spans: ParseInline(quotePattern.ReplaceAllString(line, "")),
			})

		case checklistPattern.MatchString(line):
			g := checklistPattern.FindStringSubmatch(line)
			checked := strings.ToLower(g[1]) == "x"
			spans := append([]Span{TextSpan("• ")}, checkedSpans(ParseInline(g[2]), checked)...)
			blocks = append(blocks, RichTextBlock{Spans: spans})

		case strings.HasPrefix(line, "- "):
			spans := append([]Span{TextSpan("• ")}, ParseInline(strings.TrimPrefix(line, "- "))...)
			blocks = append(blocks, RichTextBlock{Spans: spans})

		case orderedPattern.MatchString(line):
			// The numeral stays part of the line text.
			blocks = append(blocks, RichTextBlock{Spans: ParseInline(line)})

		case imagePattern.MatchString(line):
			g := imagePattern.FindStringSubmatch(line)
			alt := g[1]
			if alt == "" {
				alt = "image"
			}
			blocks = append(blocks, ImageBlock{URL: g[2], AltText: alt})

		case line == "":
			// Placeholder keeps vertical spacing; blank lines never collapse.
			blocks = append(blocks, RichTextBlock{Spans: []Span{TextSpan(" ")}})

		default:
			blocks = append(blocks, RichTextBlock{Spans: ParseInline(line)})
		}
	}

	// Unterminated fence flushes whatever was buffered.
	if inCodeBlock {
		flushCode()
	}

	return blocks
}

func emboldened(spans []Span) []Span {
	out := make([]Span, len(spans))
	for i, sp := range spans {
		if sp.Type == "text" {
			if sp.Style == nil {
				sp.Style = &SpanStyle{}
			} else {
				style := *sp.Style
				sp.Style = &style
			}
			sp.Style.Bold = true
		}
		out[i] = sp
	}
	return out
}

func checkedSpans(spans []Span, checked bool) []Span {
	if !checked {
		return spans
	}
	out := make([]Span, len(spans))
	for i, sp := range spans {
		if sp.Type == "text" {
			if sp.Style == nil {
				sp.Style = &SpanStyle{}
			} else {
				style := *sp.Style
				sp.Style = &style
			}
			sp.Style.Strike = true
		}
		out[i] = sp
	}
	return out
}
