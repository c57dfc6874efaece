package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Wrap wraps an error with additional context, creating a CardError if the input is not already one
func Wrap(err error, errType ErrorType, code, message string) *CardError {
	if err == nil {
		return nil
	}

	// Keep card and entity context from an inner CardError
	var ce *CardError
	if errors.As(err, &ce) {
		return &CardError{
			Type:        errType,
			Code:        code,
			Message:     message,
			Cause:       ce,
			Context:     ce.Context,
			Card:        ce.Card,
			Entity:      ce.Entity,
			Recoverable: ce.Recoverable,
		}
	}

	return &CardError{
		Type:        errType,
		Code:        code,
		Message:     message,
		Cause:       err,
		Recoverable: errType == ErrorTypeIO,
	}
}

// WrapIO wraps an error as an I/O error
func WrapIO(err error, code, message string) *CardError {
	return Wrap(err, ErrorTypeIO, code, message)
}

// WrapConfig wraps an error as a configuration error
func WrapConfig(err error, code, message string) *CardError {
	return Wrap(err, ErrorTypeConfig, code, message)
}

// FormatError formats an error for user display
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	return err.Error()
}

// Suggestions returns the fixes attached to err: those of a ValidationError
// in its chain, or the "suggestions" context of a CardError.
func Suggestions(err error) []string {
	var ve ValidationError
	if errors.As(err, &ve) {
		return ve.Suggestions()
	}

	var ce *CardError
	if errors.As(err, &ce) {
		if list, ok := ce.Context["suggestions"].([]string); ok {
			return list
		}
	}

	return nil
}

// FormatErrorWithSuggestions formats an error followed by its suggestions
func FormatErrorWithSuggestions(err error) string {
	if err == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(FormatError(err))
	if suggestions := Suggestions(err); len(suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range suggestions {
			fmt.Fprintf(&b, "\n  • %s", suggestion)
		}
	}

	return b.String()
}

// GetErrorContext extracts context information from a CardError
func GetErrorContext(err error) map[string]interface{} {
	var ce *CardError
	if errors.As(err, &ce) {
		context := make(map[string]interface{})
		for k, v := range ce.Context {
			context[k] = v
		}
		if ce.Card != "" {
			context["card"] = ce.Card
		}
		if ce.Entity != "" {
			context["entity"] = ce.Entity
		}
		context["type"] = string(ce.Type)
		context["code"] = ce.Code
		context["recoverable"] = ce.Recoverable
		return context
	}

	return map[string]interface{}{
		"message": err.Error(),
		"type":    "unknown",
	}
}
