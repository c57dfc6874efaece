package errors

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeLifecycle  ErrorType = "lifecycle"
	ErrorTypeRegistry   ErrorType = "registry"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeInternal   ErrorType = "internal"
)

// CardError is a structured error type with card context.
type CardError struct {
	Type        ErrorType
	Code        string
	Message     string
	Cause       error
	Context     map[string]interface{}
	Card        string
	Entity      string
	Recoverable bool
}

// Error implements the error interface.
func (e *CardError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.Card != "" {
		parts = append(parts, "card:"+e.Card)
	}

	if e.Entity != "" {
		parts = append(parts, "entity:"+e.Entity)
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *CardError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison.
func (e *CardError) Is(target error) bool {
	var t *CardError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *CardError) WithContext(key string, value interface{}) *CardError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithCard adds card type context.
func (e *CardError) WithCard(card string) *CardError {
	e.Card = card

	return e
}

// WithEntity adds the bound entity.
func (e *CardError) WithEntity(entity string) *CardError {
	e.Entity = entity

	return e
}

// Error creation functions

// NewValidationError creates a validation error.
func NewValidationError(code, message string) *CardError {
	return &CardError{
		Type:    ErrorTypeValidation,
		Code:    code,
		Message: message,
	}
}

// NewLifecycleError creates an error for a card used out of order.
func NewLifecycleError(code, message string) *CardError {
	return &CardError{
		Type:    ErrorTypeLifecycle,
		Code:    code,
		Message: message,
	}
}

// NewRegistryError creates a registry error.
func NewRegistryError(code, message string) *CardError {
	return &CardError{
		Type:    ErrorTypeRegistry,
		Code:    code,
		Message: message,
	}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *CardError {
	return &CardError{
		Type:        ErrorTypeIO,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: true,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string) *CardError {
	return &CardError{
		Type:    ErrorTypeConfig,
		Code:    code,
		Message: message,
	}
}

// NewInternalError creates an internal error.
func NewInternalError(code, message string, cause error) *CardError {
	return &CardError{
		Type:    ErrorTypeInternal,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// IsRecoverable checks if an error is recoverable.
func IsRecoverable(err error) bool {
	var ce *CardError
	if errors.As(err, &ce) {
		return ce.Recoverable
	}

	return false
}

// IsValidationError checks if an error came from config validation.
func IsValidationError(err error) bool {
	var ce *CardError
	if errors.As(err, &ce) {
		return ce.Type == ErrorTypeValidation
	}

	return false
}

// HasCode reports whether err is a CardError carrying code.
func HasCode(err error, code string) bool {
	var ce *CardError
	if errors.As(err, &ce) {
		return ce.Code == code
	}

	return false
}

// WithCardType sets the card context on err when it is a CardError without
// one, and returns err unchanged otherwise.
func WithCardType(err error, card string) error {
	var ce *CardError
	if errors.As(err, &ce) && ce.Card == "" {
		ce.Card = card
	}

	return err
}

// CodeOf returns the code of the CardError in err's chain, or "".
func CodeOf(err error) string {
	var ce *CardError
	if errors.As(err, &ce) {
		return ce.Code
	}

	return ""
}

// ErrorHandler provides centralized error handling.
type ErrorHandler struct {
	logger Logger
}

// Logger interface for error logging.
type Logger interface {
	Error(ctx context.Context, err error, msg string, fields ...interface{})
	Warn(ctx context.Context, err error, msg string, fields ...interface{})
}

// NewErrorHandler creates a new error handler.
func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle processes an error with appropriate logging. Validation and
// lifecycle errors, and recoverable ones, are warnings.
func (h *ErrorHandler) Handle(ctx context.Context, err error) {
	if err == nil || h.logger == nil {
		return
	}

	var ce *CardError
	if !errors.As(err, &ce) {
		h.logger.Error(ctx, err, "Unhandled error occurred")
		return
	}

	fields := contextFields(GetErrorContext(err))

	switch {
	case ce.Type == ErrorTypeValidation:
		h.logger.Warn(ctx, err, "Card configuration rejected", fields...)
	case ce.Type == ErrorTypeLifecycle || IsRecoverable(err):
		h.logger.Warn(ctx, err, "Card operation failed", fields...)
	default:
		h.logger.Error(ctx, err, "Error occurred", fields...)
	}
}

// contextFields flattens an error context into sorted key/value pairs.
func contextFields(context map[string]interface{}) []interface{} {
	keys := make([]string, 0, len(context))
	for k := range context {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]interface{}, 0, 2*len(keys))
	for _, k := range keys {
		fields = append(fields, k, context[k])
	}
	return fields
}

// Common error codes.
const (
	ErrCodeEntityRequired    = "ERR_ENTITY_REQUIRED"
	ErrCodeEntityMalformed   = "ERR_ENTITY_MALFORMED"
	ErrCodeEntityDomain      = "ERR_ENTITY_DOMAIN"
	ErrCodeEntityKeyword     = "ERR_ENTITY_KEYWORD"
	ErrCodeConfigInvalid     = "ERR_CONFIG_INVALID"
	ErrCodeAlreadyConfigured = "ERR_ALREADY_CONFIGURED"
	ErrCodeNotConfigured     = "ERR_NOT_CONFIGURED"
	ErrCodeCardNotFound      = "ERR_CARD_NOT_FOUND"
	ErrCodeDuplicateCard     = "ERR_DUPLICATE_CARD"
	ErrCodeSnapshotInvalid   = "ERR_SNAPSHOT_INVALID"
	ErrCodeValidationFailed  = "ERR_VALIDATION_FAILED"
)

// ValidationError interface for field-specific validation errors.
type ValidationError interface {
	error
	Field() string
	Value() interface{}
	Suggestions() []string
}

// FieldValidationError implements ValidationError for specific field errors.
type FieldValidationError struct {
	FieldName    string
	FieldValue   interface{}
	ErrorMessage string
	HelpText     []string
}

// Error implements the error interface.
func (fve *FieldValidationError) Error() string {
	return fmt.Sprintf("validation error in field '%s': %s", fve.FieldName, fve.ErrorMessage)
}

// Field returns the field name that failed validation.
func (fve *FieldValidationError) Field() string {
	return fve.FieldName
}

// Value returns the invalid value.
func (fve *FieldValidationError) Value() interface{} {
	return fve.FieldValue
}

// Suggestions returns helpful suggestions for fixing the error.
func (fve *FieldValidationError) Suggestions() []string {
	return fve.HelpText
}

// NewFieldValidationError creates a new field validation error.
func NewFieldValidationError(
	field string,
	value interface{},
	message string,
	suggestions ...string,
) *FieldValidationError {
	return &FieldValidationError{
		FieldName:    field,
		FieldValue:   value,
		ErrorMessage: message,
		HelpText:     suggestions,
	}
}

// ValidationErrorCollection represents a collection of validation errors.
type ValidationErrorCollection struct {
	Errors []ValidationError
}

// Error implements the error interface.
func (vec *ValidationErrorCollection) Error() string {
	if len(vec.Errors) == 0 {
		return "no validation errors"
	}
	if len(vec.Errors) == 1 {
		return vec.Errors[0].Error()
	}

	return fmt.Sprintf("validation failed with %d errors", len(vec.Errors))
}

// AddField adds a field validation error to the collection.
func (vec *ValidationErrorCollection) AddField(
	field string,
	value interface{},
	message string,
	suggestions ...string,
) {
	vec.Errors = append(vec.Errors, NewFieldValidationError(field, value, message, suggestions...))
}

// HasErrors returns true if there are any validation errors.
func (vec *ValidationErrorCollection) HasErrors() bool {
	return len(vec.Errors) > 0
}

// ToCardError converts the validation collection to a CardError.
func (vec *ValidationErrorCollection) ToCardError() *CardError {
	if !vec.HasErrors() {
		return nil
	}

	var messages []string
	context := make(map[string]interface{})

	for _, err := range vec.Errors {
		messages = append(messages, err.Error())
		context[err.Field()] = map[string]interface{}{
			"value":       err.Value(),
			"suggestions": err.Suggestions(),
		}
	}

	return &CardError{
		Type:    ErrorTypeValidation,
		Code:    ErrCodeValidationFailed,
		Message: strings.Join(messages, "; "),
		Context: context,
	}
}

// Helper functions for common errors

// ErrEntityRequired reports a config without an entity.
func ErrEntityRequired() *CardError {
	return NewValidationError(ErrCodeEntityRequired, "entity is required")
}

// ErrCardNotFound reports an unknown card type.
func ErrCardNotFound(cardType string) *CardError {
	return NewRegistryError(ErrCodeCardNotFound, "card type not found: "+cardType)
}

// ErrDuplicateCard reports a second registration of the same card type.
func ErrDuplicateCard(cardType string) *CardError {
	return NewRegistryError(ErrCodeDuplicateCard, "card type already registered: "+cardType)
}
