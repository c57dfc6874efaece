// Package cmd provides the command-line interface for lmscards.
//
// This package implements the CLI commands using the Cobra framework. The
// commands host the dashboard cards outside of a dashboard, for previewing
// and checking card configurations.
//
// # Available Commands
//
//   - cards: List registered card types with their picker metadata
//   - schema: Show a card's stub configuration, form fields and grid hints
//   - render: Render a card against a state file or sample data
//   - validate: Validate one card configuration or a dashboard file
//   - watch: Re-render a card whenever its state file changes
//   - sanitize: Run announcement HTML through the card sanitizer
//   - version: Show build information
//
// # Command Examples
//
//	// List cards as JSON
//	lmscards cards -o json
//
//	// Preview the overdue card with sample data in a standalone page
//	lmscards render schoology-overdue-card --page > overdue.html
//
//	// Render real state to the terminal
//	lmscards render schoology-upcoming-card -s states.yaml -f terminal
//
//	// Validate every card of a dashboard file
//	lmscards validate --file dashboard.yaml
//
// # Configuration Integration
//
// Commands respect configuration from multiple sources in order of precedence:
//
//  1. Command-line flags (highest priority)
//  2. Environment variables (LMSCARDS_*)
//  3. Configuration file (.lmscards.yml)
//  4. Default values (lowest priority)
//
// # Error Handling
//
// Card errors carry a stable code (ERR_ENTITY_DOMAIN, ERR_CARD_NOT_FOUND,
// ...) that is printed with the message and included in JSON output. Any
// failed command exits non-zero.
package cmd
