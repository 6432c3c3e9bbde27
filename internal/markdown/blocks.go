// Package markdown turns user-supplied devlog text into the structured block
// payload the chat API expects. Render never fails: malformed input degrades
// to literal text.
package markdown

import "encoding/json"

// Block is one element of a chat message payload. Concrete block types
// marshal themselves into the Block Kit wire shape.
type Block interface {
	block()
}

// SectionBlock is a mrkdwn section. Also used for preformatted output, with
// the fences kept inside the text.
type SectionBlock struct {
	Text string
}

// HeaderBlock is a plain-text heading.
type HeaderBlock struct {
	Text string
}

// DividerBlock is a horizontal rule.
type DividerBlock struct{}

// ImageBlock embeds an image by URL.
type ImageBlock struct {
	URL     string
	AltText string
}

// ContextBlock is the small metadata line under a message.
type ContextBlock struct {
	Text string
}

// RichTextBlock is a single rich_text section (or quote) holding inline spans.
type RichTextBlock struct {
	Quote bool
	Spans []Span
}

func (SectionBlock) block()  {}
func (HeaderBlock) block()   {}
func (DividerBlock) block()  {}
func (ImageBlock) block()    {}
func (ContextBlock) block()  {}
func (RichTextBlock) block() {}

// SpanStyle marks the inline decorations applied to a text span.
type SpanStyle struct {
	Bold      bool `json:"bold,omitempty"`
	Italic    bool `json:"italic,omitempty"`
	Strike    bool `json:"strike,omitempty"`
	Underline bool `json:"underline,omitempty"`
	Code      bool `json:"code,omitempty"`
}

// Span is one inline element of a rich text section: plain or styled text, a
// link, or an emoji shortcode.
type Span struct {
	Type  string     `json:"type"`
	Text  string     `json:"text,omitempty"`
	URL   string     `json:"url,omitempty"`
	Name  string     `json:"name,omitempty"`
	Style *SpanStyle `json:"style,omitempty"`
}

func TextSpan(text string) Span {
	return Span{Type: "text", Text: text}
}

func StyledSpan(text string, style SpanStyle) Span {
	return Span{Type: "text", Text: text, Style: &style}
}

func LinkSpan(text, url string) Span {
	return Span{Type: "link", Text: text, URL: url}
}

func EmojiSpan(name string) Span {
	return Span{Type: "emoji", Name: name}
}

type textObject struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Emoji bool   `json:"emoji,omitempty"`
}

func (b SectionBlock) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type string     `json:"type"`
		Text textObject `json:"text"`
	}{
		Type: "section",
		Text: textObject{Type: "mrkdwn", Text: b.Text},
	})
}

func (b HeaderBlock) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type string     `json:"type"`
		Text textObject `json:"text"`
	}{
		Type: "header",
		Text: textObject{Type: "plain_text", Text: b.Text, Emoji: true},
	})
}

func (DividerBlock) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type string `json:"type"`
	}{Type: "divider"})
}

func (b ImageBlock) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type     string `json:"type"`
		ImageURL string `json:"image_url"`
		AltText  string `json:"alt_text"`
	}{
		Type:     "image",
		ImageURL: b.URL,
		AltText:  b.AltText,
	})
}

func (b ContextBlock) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type     string       `json:"type"`
		Elements []textObject `json:"elements"`
	}{
		Type:     "context",
		Elements: []textObject{{Type: "mrkdwn", Text: b.Text}},
	})
}

type richTextSection struct {
	Type     string `json:"type"`
	Elements []Span `json:"elements"`
}

func (b RichTextBlock) MarshalJSON() ([]byte, error) {
	sectionType := "rich_text_section"
	if b.Quote {
		sectionType = "rich_text_quote"
	}
	return json.Marshal(struct {
		Type     string            `json:"type"`
		Elements []richTextSection `json:"elements"`
	}{
		Type:     "rich_text",
		Elements: []richTextSection{{Type: sectionType, Elements: b.Spans}},
	})
}
