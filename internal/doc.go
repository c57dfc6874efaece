// Package internal contains the core implementation packages for lmscards.
//
// # Package Organization
//
// The internal packages are organized by functional domain:
//
//   - types: card config, entity snapshots and descriptors
//   - sanitize: allowlist HTML sanitizer and escaping helpers
//   - fragment: the renderable node tree every card produces
//   - validation: entity and config checks shared by the cards
//   - schema: config editor form schemas
//   - size: layout-height estimation strategies
//   - cards: the four dashboard cards and their bootstrap
//   - registry: card catalog keyed by custom element tag
//   - host: one hosted card instance with config and state pushes
//   - snapshot: entity state stores and state file loading
//   - renderer: single-card rendering and the preview page
//   - output: HTML, Markdown, terminal and JSON converters
//   - watcher: debounced state file monitoring
//   - config, logging, monitoring, errors, version: ambient concerns
//   - testutils: workspace, state file and golden render helpers
//
// # Data Flow
//
// A card is resolved from the registry, hosted by an instance that receives
// its config once and entity snapshots on every push, and renders a fragment.
// The fragment is converted to the requested output format by the CLI.
//
// For detailed documentation, see the individual package documentation.
package internal
