package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsMarkdown(t *testing.T) {
	cases := []struct {
		name string
		text string
		want bool
	}{
		{"empty", "", false},
		{"plain sentence", "plain sentence.", false},
		{"bullet", "- item one", true},
		{"heading", "# Release notes", true},
		{"deep heading", "###### tiny", true},
		{"bold", "some **bold** text", true},
		{"italic", "some *italic* text", true},
		{"strike", "~~gone~~", true},
		{"inline code", "run `go build` first", true},
		{"fenced code", "```\nfmt.Println(1)\n```", true},
		{"quote", "> somebody said", true},
		{"checklist", "- [x] shipped", true},
		{"ordered list", "1. first", true},
		{"image", "![shot](https://x.test/a.png)", true},
		{"link", "[docs](https://x.test)", true},
		{"underline", "<u>really</u>", true},
		{"asterisk without pair", "5 * 3 = 15", false},
		{"mid-line dash", "well - that happened", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ContainsMarkdown(tc.text))
		})
	}
}
