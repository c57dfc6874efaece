// Package cards implements the four learning-management dashboard cards.
//
// Every card satisfies Card: it validates its binding configuration once,
// renders a fresh fragment for each snapshot the host pushes, and publishes
// the metadata (descriptor, stub config, form schema, grid options) the host
// needs to offer and lay out the card. Rendering is pure; cards hold no
// per-instance state.
package cards

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/conneroisu/lmscards/internal/errors"
	"github.com/conneroisu/lmscards/internal/fragment"
	"github.com/conneroisu/lmscards/internal/size"
	"github.com/conneroisu/lmscards/internal/types"
	"github.com/conneroisu/lmscards/internal/validation"
)

// Card is the capability set shared by every card type.
type Card interface {
	// Tag is the stable custom element name of the card.
	Tag() string
	Descriptor() types.CardDescriptor
	ValidateConfig(raw map[string]interface{}) (types.Config, error)
	Render(cfg types.Config, snap *types.Snapshot) fragment.Node
	ComputeSize(n fragment.Node) int
	GridOptions() types.GridOptions
	StubConfig() types.Config
	ConfigFormSchema() []types.FieldDescriptor
}

// Option configures a card.
type Option func(*base)

// WithEstimator replaces the card's static size strategy.
func WithEstimator(est size.Estimator) Option {
	return func(b *base) {
		if est != nil {
			b.estimator = est
		}
	}
}

// Delimiter separates the parts of an item's meta line.
const Delimiter = " • "

// DocumentationURL is published in every card descriptor.
const DocumentationURL = "https://github.com/conneroisu/lmscards"

// base carries what the card types have in common. Each type supplies its
// own body renderer.
type base struct {
	descriptor   types.CardDescriptor
	policy       validation.EntityPolicy
	title        string
	icon         string
	emptyMessage string
	stubEntity   string
	grid         types.GridOptions
	estimator    size.Estimator
	body         func(snap *types.Snapshot) []fragment.Node
}

func newBase(b base, opts []Option) *base {
	b.estimator = size.Static{Rows: b.grid.Rows}
	for _, opt := range opts {
		opt(&b)
	}
	return &b
}

func (b *base) Tag() string { return b.descriptor.Type }

func (b *base) Descriptor() types.CardDescriptor { return b.descriptor }

func (b *base) GridOptions() types.GridOptions { return b.grid }

func (b *base) StubConfig() types.Config {
	return types.Config{Entity: b.stubEntity}
}

// ValidateConfig decodes raw and applies the card's entity policy.
func (b *base) ValidateConfig(raw map[string]interface{}) (types.Config, error) {
	cfg, err := validation.ValidateConfig(raw, b.policy)
	if err != nil {
		return types.Config{}, errors.WithCardType(err, b.Tag())
	}
	return cfg, nil
}

// ConfigFormSchema lists the fields of the host's config editor in order.
func (b *base) ConfigFormSchema() []types.FieldDescriptor {
	title := cases.Title(language.English)
	return []types.FieldDescriptor{
		{Name: "entity", Label: title.String("entity"), Required: true, Selector: types.SelectorEntity, Domain: "sensor"},
		{Name: "title", Label: title.String("title"), Selector: types.SelectorText},
		{Name: "icon", Label: title.String("icon"), Selector: types.SelectorIcon},
	}
}

// ComputeSize returns the layout weight of a rendered fragment, always >= 1.
func (b *base) ComputeSize(n fragment.Node) int {
	rows := b.estimator.Estimate(n)
	if rows < 1 {
		return 1
	}
	return rows
}

// Render builds the card for snap. A nil snap means the entity does not
// exist yet and renders the placeholder.
func (b *base) Render(cfg types.Config, snap *types.Snapshot) fragment.Node {
	var content fragment.Node

	switch items := b.renderItems(snap); {
	case snap == nil:
		content = fragment.El("div", []fragment.Attr{fragment.Class("placeholder")},
			fragment.Text("Entity not found: "+cfg.Entity))
	case len(items) == 0:
		content = fragment.El("div", []fragment.Attr{fragment.Class("empty")},
			fragment.Text(b.emptyMessage))
	default:
		content = fragment.El("div", []fragment.Attr{fragment.Class("items")}, items...)
	}

	return fragment.El("ha-card", nil,
		b.header(cfg),
		fragment.El("div", []fragment.Attr{fragment.Class("card-content")}, content),
	)
}

func (b *base) renderItems(snap *types.Snapshot) []fragment.Node {
	if snap == nil {
		return nil
	}
	return b.body(snap)
}

func (b *base) header(cfg types.Config) fragment.Node {
	title := cfg.Title
	if title == "" {
		title = b.title
	}
	icon := cfg.Icon
	if icon == "" {
		icon = b.icon
	}

	return fragment.El("div", []fragment.Attr{fragment.Class("card-header")},
		fragment.When(icon != "", fragment.El("ha-icon", []fragment.Attr{fragment.A("icon", icon)})),
		fragment.El("span", []fragment.Attr{fragment.Class("name")}, fragment.Text(title)),
	)
}
