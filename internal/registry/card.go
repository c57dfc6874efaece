// Package registry holds the process-wide list of card descriptors the host
// reads to populate its card picker.
package registry

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/conneroisu/lmscards/internal/errors"
	"github.com/conneroisu/lmscards/internal/types"
	"github.com/conneroisu/lmscards/internal/validation"
)

// CardRegistry manages the registered card descriptors. Descriptors are
// write-once: a type can only be registered a single time.
type CardRegistry struct {
	descriptors map[string]types.CardDescriptor
	order       []string
	mutex       sync.RWMutex
	watchers    []chan CardEvent
}

// CardEvent represents a change in the card registry
type CardEvent struct {
	Type       EventType
	Descriptor types.CardDescriptor
	Timestamp  time.Time
}

// EventType represents the type of registry event
type EventType int

const (
	EventTypeAdded EventType = iota
	EventTypeRejected
)

// String returns the event name.
func (t EventType) String() string {
	switch t {
	case EventTypeAdded:
		return "added"
	case EventTypeRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

var (
	defaultRegistry     *CardRegistry
	defaultRegistryOnce sync.Once
)

// Default returns the process-wide registry.
func Default() *CardRegistry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewCardRegistry()
	})
	return defaultRegistry
}

// NewCardRegistry creates a new, empty card registry
func NewCardRegistry() *CardRegistry {
	return &CardRegistry{
		descriptors: make(map[string]types.CardDescriptor),
		order:       make([]string, 0),
		watchers:    make([]chan CardEvent, 0),
	}
}

// Register adds a descriptor. It fails when the descriptor is incomplete or
// its type is already registered.
func (r *CardRegistry) Register(desc types.CardDescriptor) error {
	if err := checkDescriptor(desc); err != nil {
		return err
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.descriptors[desc.Type]; exists {
		r.notify(CardEvent{Type: EventTypeRejected, Descriptor: desc, Timestamp: time.Now()})
		return errors.ErrDuplicateCard(desc.Type).WithCard(desc.Type)
	}

	r.descriptors[desc.Type] = desc
	r.order = append(r.order, desc.Type)

	r.notify(CardEvent{Type: EventTypeAdded, Descriptor: desc, Timestamp: time.Now()})

	return nil
}

func checkDescriptor(desc types.CardDescriptor) error {
	var vec errors.ValidationErrorCollection

	if strings.TrimSpace(desc.Type) == "" {
		vec.AddField("type", desc.Type, "card type is required")
	}
	if strings.TrimSpace(desc.Name) == "" {
		vec.AddField("name", desc.Name, "card name is required")
	}
	if desc.DocumentationURL != "" {
		if err := validation.ValidateURL(desc.DocumentationURL); err != nil {
			vec.AddField("documentationURL", desc.DocumentationURL, err.Error(),
				"use an absolute https link")
		}
	}

	if !vec.HasErrors() {
		return nil
	}
	return vec.ToCardError().WithCard(desc.Type)
}

// notify delivers ev to every watcher without blocking. Callers hold the lock.
func (r *CardRegistry) notify(ev CardEvent) {
	for _, watcher := range r.watchers {
		select {
		case watcher <- ev:
		default:
			// Skip if channel is full
		}
	}
}

// Get retrieves a descriptor by card type
func (r *CardRegistry) Get(cardType string) (types.CardDescriptor, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	desc, exists := r.descriptors[cardType]
	return desc, exists
}

// Lookup retrieves a descriptor or returns ERR_CARD_NOT_FOUND.
func (r *CardRegistry) Lookup(cardType string) (types.CardDescriptor, error) {
	desc, ok := r.Get(cardType)
	if !ok {
		return types.CardDescriptor{}, errors.ErrCardNotFound(cardType)
	}
	return desc, nil
}

// Descriptors returns every descriptor in registration order.
func (r *CardRegistry) Descriptors() []types.CardDescriptor {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	result := make([]types.CardDescriptor, 0, len(r.order))
	for _, t := range r.order {
		result = append(result, r.descriptors[t])
	}
	return result
}

// Watch returns a channel that receives registry events
func (r *CardRegistry) Watch() <-chan CardEvent {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	ch := make(chan CardEvent, 100)
	r.watchers = append(r.watchers, ch)
	return ch
}

// UnWatch removes a watcher channel and closes it
func (r *CardRegistry) UnWatch(ch <-chan CardEvent) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for i, watcher := range r.watchers {
		if watcher == ch {
			close(watcher)
			r.watchers = append(r.watchers[:i], r.watchers[i+1:]...)
			break
		}
	}
}

// Count returns the number of registered cards
func (r *CardRegistry) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return len(r.descriptors)
}

// String implements fmt.Stringer.
func (r *CardRegistry) String() string {
	return fmt.Sprintf("CardRegistry(%d cards)", r.Count())
}
