// Package host drives one card through the host lifecycle: configure once,
// then re-render on every pushed snapshot.
package host

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/conneroisu/lmscards/internal/cards"
	"github.com/conneroisu/lmscards/internal/errors"
	"github.com/conneroisu/lmscards/internal/fragment"
	"github.com/conneroisu/lmscards/internal/logging"
	"github.com/conneroisu/lmscards/internal/monitoring"
	"github.com/conneroisu/lmscards/internal/schema"
	"github.com/conneroisu/lmscards/internal/snapshot"
	"github.com/conneroisu/lmscards/internal/types"
)

// Instance is a single card placed on a dashboard. It owns the rendered
// fragment; each Push replaces it wholesale.
type Instance struct {
	id      string
	card    cards.Card
	logger  logging.Logger
	metrics *monitoring.MetricsCollector
	errs    *errors.ErrorHandler

	mutex      sync.Mutex
	cfg        types.Config
	configured bool
	current    fragment.Node
	pushes     int
}

// Option configures an Instance.
type Option func(*Instance)

// WithLogger sets the instance logger.
func WithLogger(logger logging.Logger) Option {
	return func(i *Instance) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// WithMetrics records lifecycle metrics in mc.
func WithMetrics(mc *monitoring.MetricsCollector) Option {
	return func(i *Instance) {
		i.metrics = mc
	}
}

// New creates an unconfigured instance of card.
func New(card cards.Card, opts ...Option) *Instance {
	i := &Instance{
		id:     uuid.NewString(),
		card:   card,
		logger: logging.Nop(),
	}
	for _, opt := range opts {
		opt(i)
	}

	i.logger = i.logger.WithComponent("host").With("card", card.Tag(), "instance", i.id)
	i.errs = errors.NewErrorHandler(i.logger)

	return i
}

// ID returns the instance id.
func (i *Instance) ID() string { return i.id }

// Card returns the card type behind the instance.
func (i *Instance) Card() cards.Card { return i.card }

// SetConfig validates raw and binds the instance to it. It may succeed only
// once; a rejected configuration leaves the instance unconfigured.
func (i *Instance) SetConfig(ctx context.Context, raw map[string]interface{}) error {
	i.mutex.Lock()
	defer i.mutex.Unlock()

	if i.configured {
		err := errors.NewLifecycleError(errors.ErrCodeAlreadyConfigured, "card is already configured").
			WithCard(i.card.Tag()).
			WithEntity(i.cfg.Entity)
		i.errs.Handle(ctx, err)
		return err
	}

	cfg, err := i.card.ValidateConfig(raw)
	if err != nil {
		if i.metrics != nil {
			i.metrics.RecordValidationFailure(i.card.Tag(), errors.CodeOf(err))
		}
		i.errs.Handle(ctx, err)
		return err
	}

	i.cfg = cfg
	i.configured = true
	if i.metrics != nil {
		i.metrics.RecordConfigured(i.card.Tag())
	}
	i.logger.Info(ctx, "Card configured", "entity", cfg.Entity)

	return nil
}

// Config returns the bound configuration.
func (i *Instance) Config() (types.Config, bool) {
	i.mutex.Lock()
	defer i.mutex.Unlock()
	return i.cfg, i.configured
}

// Push renders the card against the current state in lookup. An entity
// missing from lookup renders the placeholder.
func (i *Instance) Push(ctx context.Context, lookup snapshot.Lookup) (fragment.Node, error) {
	i.mutex.Lock()
	defer i.mutex.Unlock()

	if !i.configured {
		err := errors.NewLifecycleError(errors.ErrCodeNotConfigured, "card must be configured before data is pushed").
			WithCard(i.card.Tag())
		i.errs.Handle(ctx, err)
		return fragment.Node{}, err
	}

	var snap *types.Snapshot
	if lookup != nil {
		if s, ok := lookup.Get(i.cfg.Entity); ok {
			snap = s
		}
	}

	start := time.Now()
	node := i.card.Render(i.cfg, snap)
	elapsed := time.Since(start)

	outcome, items := classify(snap)
	if i.metrics != nil {
		i.metrics.RecordRender(i.card.Tag(), i.cfg.Entity, outcome, items, elapsed)
	}

	i.current = node
	i.pushes++

	i.logger.Debug(ctx, "Card rendered",
		"entity", i.cfg.Entity,
		"outcome", outcome,
		"items", items,
		"push", i.pushes,
		"duration", elapsed.String())

	return node, nil
}

func classify(snap *types.Snapshot) (string, int) {
	if snap == nil {
		return monitoring.OutcomePlaceholder, 0
	}
	n := len(schema.Records(snap))
	if n == 0 {
		return monitoring.OutcomeEmpty, 0
	}
	return monitoring.OutcomeItems, n
}

// Fragment returns the most recently rendered fragment, or the zero node
// before the first push.
func (i *Instance) Fragment() fragment.Node {
	i.mutex.Lock()
	defer i.mutex.Unlock()
	return i.current
}

// Size reports the layout hint for the current fragment. It is at least 1.
func (i *Instance) Size() int {
	i.mutex.Lock()
	defer i.mutex.Unlock()
	return i.card.ComputeSize(i.current)
}

// Pushes returns how many renders the instance has performed.
func (i *Instance) Pushes() int {
	i.mutex.Lock()
	defer i.mutex.Unlock()
	return i.pushes
}
