package documents

import (
	"bytes"
	"fmt"
	"regexp"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	renderOnce sync.Once
	markdown   goldmark.Markdown
	policy     *bluemonday.Policy
)

func renderer() (goldmark.Markdown, *bluemonday.Policy) {
	renderOnce.Do(func() {
		markdown = goldmark.New(
			goldmark.WithExtensions(extension.GFM),
		)

		policy = bluemonday.UGCPolicy()
		// GFM task lists render as disabled checkboxes.
		policy.AllowAttrs("type").Matching(regexp.MustCompile(`^checkbox$`)).OnElements("input")
		policy.AllowAttrs("checked", "disabled").OnElements("input")
	})
	return markdown, policy
}

// Render converts document markdown into sanitised HTML.
func Render(content string) (string, error) {
	if content == "" {
		return "", nil
	}

	md, p := renderer()

	var buf bytes.Buffer
	if err := md.Convert([]byte(content), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}

	return p.Sanitize(buf.String()), nil
}
