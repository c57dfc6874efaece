package cards

import (
	"fmt"
	"strings"

	"github.com/conneroisu/lmscards/internal/errors"
	"github.com/conneroisu/lmscards/internal/registry"
)

// All returns one instance of every card type in registration order.
func All(opts ...Option) []Card {
	return []Card{
		NewAnnouncements(opts...),
		NewAssignments(opts...),
		NewOverdue(opts...),
		NewUpcoming(opts...),
	}
}

// ByTag returns the card with the given element name. The "custom:" prefix
// hosts put in front of custom card types is accepted.
func ByTag(tag string, opts ...Option) (Card, error) {
	tag = strings.TrimPrefix(tag, "custom:")

	for _, c := range All(opts...) {
		if c.Tag() == tag {
			return c, nil
		}
	}
	return nil, errors.ErrCardNotFound(tag)
}

// Bootstrap publishes the descriptor of every card type to reg.
func Bootstrap(reg *registry.CardRegistry) error {
	for _, c := range All() {
		if err := reg.Register(c.Descriptor()); err != nil {
			return fmt.Errorf("registering %s: %w", c.Tag(), err)
		}
	}
	return nil
}
