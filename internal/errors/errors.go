// Package errors provides the structured error types used by lmscards.
//
// CardError carries a type, a stable code and the card/entity context of a
// failure. ErrorCollector gathers the results of validating many card
// configurations (for example every card of a dashboard file) so they can be
// reported together.
package errors

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrorSeverity represents the severity of an error
type ErrorSeverity int

const (
	ErrorSeverityInfo ErrorSeverity = iota
	ErrorSeverityWarning
	ErrorSeverityError
	ErrorSeverityFatal
)

// String returns the string representation of the severity
func (s ErrorSeverity) String() string {
	switch s {
	case ErrorSeverityInfo:
		return "info"
	case ErrorSeverityWarning:
		return "warning"
	case ErrorSeverityError:
		return "error"
	case ErrorSeverityFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// CardIssue is one problem found for one card configuration.
type CardIssue struct {
	// Index is the position of the card in its source document
	Index     int
	Card      string
	Entity    string
	Code      string
	Message   string
	Severity  ErrorSeverity
	Timestamp time.Time

	// Suggestions lists fixes for the configuration, when known
	Suggestions []string
}

// Error implements the error interface
func (ci *CardIssue) Error() string {
	return fmt.Sprintf("card #%d (%s): %s: %s", ci.Index, ci.Card, ci.Severity, ci.Message)
}

// ErrorCollector collects card issues
type ErrorCollector struct {
	issues []CardIssue
	mutex  sync.RWMutex
}

// NewErrorCollector creates a new error collector
func NewErrorCollector() *ErrorCollector {
	return &ErrorCollector{
		issues: make([]CardIssue, 0),
	}
}

// Add adds a card issue to the collector
func (ec *ErrorCollector) Add(issue CardIssue) {
	ec.mutex.Lock()
	defer ec.mutex.Unlock()
	issue.Timestamp = time.Now()
	ec.issues = append(ec.issues, issue)
}

// AddCardError records err against the card at index. CardErrors keep their
// code; anything else is recorded with ERR_CONFIG_INVALID.
func (ec *ErrorCollector) AddCardError(index int, card string, err error) {
	if err == nil {
		return
	}

	issue := CardIssue{
		Index:    index,
		Card:     card,
		Code:     ErrCodeConfigInvalid,
		Message:  err.Error(),
		Severity: ErrorSeverityError,
	}

	var ce *CardError
	if errors.As(err, &ce) {
		issue.Code = ce.Code
		issue.Entity = ce.Entity
		issue.Message = ce.Message
	}
	issue.Suggestions = Suggestions(err)

	ec.Add(issue)
}

// GetIssues returns all collected card issues
func (ec *ErrorCollector) GetIssues() []CardIssue {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	result := make([]CardIssue, len(ec.issues))
	copy(result, ec.issues)
	return result
}

// HasErrors returns true if any issue was collected
func (ec *ErrorCollector) HasErrors() bool {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	return len(ec.issues) > 0
}
