// Package renderer resolves card types, renders them against entity state
// and wraps the result in a standalone preview page.
//
// The renderer is the development counterpart of a dashboard host: it looks
// a card up in the registry, validates the binding configuration, renders
// the fragment and, when no state file is supplied, fills the bound entity
// with sample items so the card can be previewed in isolation.
package renderer

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/a-h/templ"

	"github.com/conneroisu/lmscards/internal/cards"
	"github.com/conneroisu/lmscards/internal/fragment"
	"github.com/conneroisu/lmscards/internal/host"
	"github.com/conneroisu/lmscards/internal/registry"
	"github.com/conneroisu/lmscards/internal/schema"
	"github.com/conneroisu/lmscards/internal/snapshot"
	"github.com/conneroisu/lmscards/internal/types"
)

// CardRenderer handles rendering of registered cards.
type CardRenderer struct {
	registry *registry.CardRegistry
	cardOpts []cards.Option
	hostOpts []host.Option
}

// Option configures a CardRenderer.
type Option func(*CardRenderer)

// WithCardOptions passes opts to every card the renderer builds.
func WithCardOptions(opts ...cards.Option) Option {
	return func(r *CardRenderer) {
		r.cardOpts = append(r.cardOpts, opts...)
	}
}

// WithHostOptions passes opts to every card instance the renderer hosts.
func WithHostOptions(opts ...host.Option) Option {
	return func(r *CardRenderer) {
		r.hostOpts = append(r.hostOpts, opts...)
	}
}

// NewCardRenderer creates a renderer for the cards registered in reg.
func NewCardRenderer(reg *registry.CardRegistry, opts ...Option) *CardRenderer {
	r := &CardRenderer{registry: reg}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Result is one rendered card.
type Result struct {
	Instance *host.Instance
	Card     cards.Card
	Config   types.Config
	Fragment fragment.Node
	Size     int
}

// RenderCard hosts a single instance of cardType, configures it with raw and
// pushes lookup to it. A nil raw binds the card's stub entity; a nil lookup
// renders against sample data for the bound entity.
func (r *CardRenderer) RenderCard(
	ctx context.Context,
	cardType string,
	raw map[string]interface{},
	lookup snapshot.Lookup,
) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	card, err := r.Resolve(cardType)
	if err != nil {
		return nil, err
	}

	if raw == nil {
		raw = map[string]interface{}{"entity": card.StubConfig().Entity}
	}

	inst := host.New(card, r.hostOpts...)
	if err := inst.SetConfig(ctx, raw); err != nil {
		return nil, err
	}
	cfg, _ := inst.Config()

	if lookup == nil {
		lookup = snapshot.NewStore(SampleSnapshot(card.Tag(), cfg.Entity))
	}

	node, err := inst.Push(ctx, lookup)
	if err != nil {
		return nil, err
	}

	return &Result{
		Instance: inst,
		Card:     card,
		Config:   cfg,
		Fragment: node,
		Size:     inst.Size(),
	}, nil
}

// Resolve looks cardType up in the registry and builds the card. The
// "custom:" prefix used in dashboard files is accepted.
func (r *CardRenderer) Resolve(cardType string) (cards.Card, error) {
	if err := validateCardType(cardType); err != nil {
		return nil, fmt.Errorf("invalid card type: %w", err)
	}

	desc, err := r.registry.Lookup(strings.TrimPrefix(cardType, "custom:"))
	if err != nil {
		return nil, err
	}

	return cards.ByTag(desc.Type, r.cardOpts...)
}

// sampleFields lists the attributes filled in for each card's sample items.
var sampleFields = map[string][]string{
	cards.AnnouncementsTag: {"title", "content", "group", "date", "likes", "created"},
	cards.AssignmentsTag:   {"title", "group", "due", "link"},
	cards.OverdueTag:       {"title", "group", "due", "link"},
	cards.UpcomingTag:      {"title", "group", "date", "time", "link"},
}

// SampleSnapshot builds a state for entity holding three sample items shaped
// for cardType. Unknown card types get an empty item list.
func SampleSnapshot(cardType, entity string) *types.Snapshot {
	fields := sampleFields[cardType]
	items := make([]interface{}, 0, 3)
	if len(fields) > 0 {
		for i := 1; i <= 3; i++ {
			item := make(map[string]interface{}, len(fields))
			for _, field := range fields {
				item[field] = generateMockValue(field, i)
			}
			items = append(items, item)
		}
	}

	return &types.Snapshot{
		EntityID:   entity,
		State:      fmt.Sprintf("%d", len(items)),
		Attributes: map[string]interface{}{schema.ItemsAttribute: items},
	}
}

// generateMockValue generates a realistic value based on the attribute name.
func generateMockValue(field string, n int) interface{} {
	switch field {
	case "title":
		return fmt.Sprintf("Sample item %d", n)
	case "content":
		return "<p>This is sample content for the card preview. <b>Lorem ipsum</b> dolor sit amet.</p>"
	case "group":
		return "Biology 101"
	case "date", "due":
		return fmt.Sprintf("Oct %d", 14+n)
	case "time":
		return "3:00 PM"
	case "created":
		return fmt.Sprintf("%d days ago", n)
	case "likes":
		return n - 1
	case "link":
		return fmt.Sprintf("https://lms.example.com/item/%d", n)
	default:
		return fmt.Sprintf("Sample %s", field)
	}
}

// PageOptions tune the preview page.
type PageOptions struct {
	// Title is shown in the page heading; the card type is used when empty
	Title string
	// Refresh reloads the page every Refresh seconds when positive
	Refresh int
}

// Page wraps a card fragment in a full preview page.
func Page(body templ.Component, opts PageOptions) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		title := templ.EscapeString(opts.Title)

		var refresh string
		if opts.Refresh > 0 {
			refresh = fmt.Sprintf("\n    <meta http-equiv=\"refresh\" content=\"%d\">", opts.Refresh)
		}

		if _, err := fmt.Fprintf(w, pageHead, refresh, title, title); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, pageTail)
		return err
	})
}

// RenderCardWithLayout wraps a rendered card in a full page layout.
func (r *CardRenderer) RenderCardWithLayout(ctx context.Context, res *Result, opts PageOptions) (string, error) {
	if opts.Title == "" {
		opts.Title = res.Card.Descriptor().Name
	}

	var b strings.Builder
	if err := Page(res.Fragment, opts).Render(ctx, &b); err != nil {
		return "", fmt.Errorf("rendering preview page: %w", err)
	}
	return b.String(), nil
}

// validateCardType validates a card type name to prevent path traversal
// when it is used to name output files.
func validateCardType(name string) error {
	cleanName := filepath.Clean(name)

	if cleanName == "" || cleanName == "." {
		return fmt.Errorf("empty or invalid card type: %q", name)
	}

	if strings.Contains(cleanName, "..") {
		return fmt.Errorf("path traversal attempt detected: %s", name)
	}

	if filepath.IsAbs(cleanName) || strings.ContainsAny(cleanName, `/\`) {
		return fmt.Errorf("path separators not allowed in card type: %s", name)
	}

	return nil
}

const pageHead = `<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">%s
    <title>%s - lmscards preview</title>
    <style>
        body { background: #f5f5f5; font-family: sans-serif; padding: 2rem; }
        .preview { max-width: 32rem; margin: 0 auto; }
        ha-card { display: block; background: #fff; border-radius: 12px; box-shadow: 0 2px 6px rgba(0,0,0,.15); overflow: hidden; }
        .card-header { display: flex; align-items: center; gap: .5rem; padding: 1rem; font-size: 1.25rem; font-weight: 500; }
        .card-content { padding: 0 1rem 1rem; }
        .item { padding: .5rem 0; border-bottom: 1px solid #eee; }
        .item:last-child { border-bottom: none; }
        .item-title { font-weight: 500; }
        .item-title a { color: inherit; }
        .item-meta, .likes, .created { color: #666; font-size: .85rem; }
        .comments { margin-left: 1rem; }
        .avatar { width: 24px; height: 24px; border-radius: 50%%; }
        .empty, .placeholder { color: #888; font-style: italic; padding: .5rem 0; }
    </style>
</head>
<body>
    <div class="preview">
        <h1>Preview: %s</h1>
`

const pageTail = `
    </div>
</body>
</html>
`
