// Package output converts rendered card fragments to the formats the CLI can
// print: raw HTML, markdown and styled terminal text.
package output

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/glamour"

	"github.com/conneroisu/lmscards/internal/fragment"
)

// Format is an output encoding.
type Format string

const (
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
	FormatTerminal Format = "terminal"
)

// Formats lists every supported format.
var Formats = []Format{FormatHTML, FormatMarkdown, FormatTerminal}

// ParseFormat resolves a format name. "md" is accepted for markdown and
// "term" for terminal.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "html":
		return FormatHTML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "terminal", "term":
		return FormatTerminal, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want one of %v)", name, Formats)
	}
}

var excessiveLinesRe = regexp.MustCompile(`\n{3,}`)

// Converter turns card fragments into text.
type Converter struct {
	markdown *md.Converter

	style    string
	wordWrap int

	once    sync.Once
	term    *glamour.TermRenderer
	termErr error
}

// Option configures a Converter.
type Option func(*Converter)

// WithStyle selects the glamour style used for terminal output, such as
// "dark", "light", "notty" or "ascii".
func WithStyle(style string) Option {
	return func(c *Converter) {
		if style != "" {
			c.style = style
		}
	}
}

// WithWordWrap sets the terminal wrap width.
func WithWordWrap(width int) Option {
	return func(c *Converter) {
		if width > 0 {
			c.wordWrap = width
		}
	}
}

// NewConverter creates a converter.
func NewConverter(opts ...Option) *Converter {
	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())
	converter.AddRules(cardRules()...)

	c := &Converter{
		markdown: converter,
		style:    "dark",
		wordWrap: 80,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// cardRules map the card markup onto markdown structure. Icons and avatars
// have no textual form and are dropped.
func cardRules() []md.Rule {
	return []md.Rule{
		{
			Filter: []string{"ha-icon", "img"},
			Replacement: func(string, *goquery.Selection, *md.Options) *string {
				return md.String("")
			},
		},
		{
			Filter: []string{"div"},
			Replacement: func(content string, selec *goquery.Selection, _ *md.Options) *string {
				content = strings.TrimSpace(content)
				switch {
				case selec.HasClass("card-header"):
					return md.String("\n\n## " + content + "\n\n")
				case selec.HasClass("item-title"):
					return md.String("\n\n### " + content + "\n\n")
				case selec.HasClass("comment-author"):
					return md.String("\n\n**" + content + "**\n\n")
				case selec.HasClass("empty"), selec.HasClass("placeholder"):
					return md.String("\n\n_" + content + "_\n\n")
				}
				return nil
			},
		},
	}
}

// Markdown converts n to markdown.
func (c *Converter) Markdown(n fragment.Node) (string, error) {
	out, err := c.markdown.ConvertString(n.HTML())
	if err != nil {
		return "", fmt.Errorf("converting to markdown: %w", err)
	}
	return cleanMarkdown(out), nil
}

// Terminal converts n to styled terminal text.
func (c *Converter) Terminal(n fragment.Node) (string, error) {
	markdown, err := c.Markdown(n)
	if err != nil {
		return "", err
	}

	c.once.Do(func() {
		c.term, c.termErr = glamour.NewTermRenderer(
			glamour.WithStylePath(c.style),
			glamour.WithWordWrap(c.wordWrap),
		)
	})
	if c.termErr != nil {
		return "", fmt.Errorf("creating terminal renderer: %w", c.termErr)
	}

	out, err := c.term.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("rendering for terminal: %w", err)
	}
	return out, nil
}

// Write encodes n in format to w.
func (c *Converter) Write(ctx context.Context, w io.Writer, n fragment.Node, format Format) error {
	var out string
	switch format {
	case FormatHTML, "":
		if err := n.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\n")
		return err
	case FormatMarkdown:
		s, err := c.Markdown(n)
		if err != nil {
			return err
		}
		out = s + "\n"
	case FormatTerminal:
		s, err := c.Terminal(n)
		if err != nil {
			return err
		}
		out = s
	default:
		return fmt.Errorf("unknown output format %q", format)
	}

	_, err := io.WriteString(w, out)
	return err
}

// cleanMarkdown collapses blank runs and trailing spaces.
func cleanMarkdown(content string) string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	content = strings.Join(lines, "\n")
	content = excessiveLinesRe.ReplaceAllString(content, "\n\n")

	return strings.TrimSpace(content)
}
