package clipboard

import (
	"fmt"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/microcosm-cc/bluemonday"
)

// Converter renders a target's HTML as Markdown for FormatMarkdown copies.
// When sanitize is enabled the HTML is run through a UGC policy first, so
// script and style subtrees of the copy source never leak into the payload.
type Converter struct {
	md       *converter.Converter
	sanitize *bluemonday.Policy
}

// NewConverter creates a Converter. sanitize controls the pre-conversion
// HTML cleaning pass.
func NewConverter(sanitize bool) *Converter {
	c := &Converter{
		md: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
	}
	if sanitize {
		c.sanitize = bluemonday.UGCPolicy()
	}
	return c
}

// Markdown converts target HTML to Markdown. pageURL resolves relative links.
func (c *Converter) Markdown(html, pageURL string) (string, error) {
	if c.sanitize != nil {
		html = c.sanitize.Sanitize(html)
	}
	out, err := c.md.ConvertString(html, converter.WithDomain(pageURL))
	if err != nil {
		return "", fmt.Errorf("clipboard: markdown convert: %w", err)
	}
	return out, nil
}
