package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorSeverityString(t *testing.T) {
	testCases := []struct {
		severity ErrorSeverity
		expected string
	}{
		{ErrorSeverityInfo, "info"},
		{ErrorSeverityWarning, "warning"},
		{ErrorSeverityError, "error"},
		{ErrorSeverityFatal, "fatal"},
		{ErrorSeverity(999), "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.severity.String())
		})
	}
}

func TestCardErrorMessage(t *testing.T) {
	err := NewValidationError(ErrCodeEntityDomain, "entity must be a sensor").
		WithCard("schoology-announcements-card").
		WithEntity("light.kitchen")

	msg := err.Error()
	assert.Contains(t, msg, "[ERR_ENTITY_DOMAIN]")
	assert.Contains(t, msg, "card:schoology-announcements-card")
	assert.Contains(t, msg, "entity:light.kitchen")
	assert.Contains(t, msg, "entity must be a sensor")
}

func TestCardErrorIsAndUnwrap(t *testing.T) {
	cause := errors.New("disk gone")
	err := NewIOError(ErrCodeSnapshotInvalid, "reading snapshot", cause)

	assert.ErrorIs(t, err, cause)
	assert.True(t, errors.Is(err, &CardError{Type: ErrorTypeIO, Code: ErrCodeSnapshotInvalid}))
	assert.False(t, errors.Is(err, &CardError{Type: ErrorTypeIO, Code: ErrCodeConfigInvalid}))
	assert.True(t, IsRecoverable(err))

	wrapped := fmt.Errorf("render: %w", ErrEntityRequired())
	assert.True(t, IsValidationError(wrapped))
	assert.True(t, HasCode(wrapped, ErrCodeEntityRequired))
	assert.False(t, HasCode(errors.New("plain"), ErrCodeEntityRequired))
}

func TestWrapKeepsCardContext(t *testing.T) {
	inner := NewValidationError(ErrCodeEntityKeyword, "missing keyword").
		WithCard("schoology-upcoming-card").
		WithEntity("sensor.other")

	wrapped := WrapConfig(inner, ErrCodeConfigInvalid, "dashboard rejected")
	require.NotNil(t, wrapped)
	assert.Equal(t, "schoology-upcoming-card", wrapped.Card)
	assert.Equal(t, "sensor.other", wrapped.Entity)
	assert.ErrorIs(t, wrapped, inner)

	assert.Nil(t, Wrap(nil, ErrorTypeIO, "X", "y"))
}

func TestGetErrorContext(t *testing.T) {
	err := NewValidationError(ErrCodeEntityRequired, "entity is required").
		WithCard("schoology-assignments-card").
		WithContext("field", "entity")

	ctx := GetErrorContext(err)
	assert.Equal(t, "schoology-assignments-card", ctx["card"])
	assert.Equal(t, "entity", ctx["field"])
	assert.Equal(t, "validation", ctx["type"])
	assert.Equal(t, ErrCodeEntityRequired, ctx["code"])

	plain := GetErrorContext(errors.New("boom"))
	assert.Equal(t, "unknown", plain["type"])
}

func TestValidationErrorCollection(t *testing.T) {
	vec := &ValidationErrorCollection{}
	assert.False(t, vec.HasErrors())
	assert.Nil(t, vec.ToCardError())

	vec.AddField("entity", "", "entity is required", "set entity to a sensor id")
	assert.Equal(t, "validation error in field 'entity': entity is required", vec.Error())

	vec.AddField("title", 42, "title must be a string")
	assert.Equal(t, "validation failed with 2 errors", vec.Error())

	ce := vec.ToCardError()
	require.NotNil(t, ce)
	assert.Equal(t, ErrCodeValidationFailed, ce.Code)
	assert.Contains(t, ce.Context, "entity")
	assert.Contains(t, ce.Context, "title")
}

func TestFormatErrorWithSuggestions(t *testing.T) {
	fve := NewFieldValidationError("entity", "x", "entity must be a sensor", "use sensor.schoology_announcements")
	out := FormatErrorWithSuggestions(fve)
	assert.Contains(t, out, "Suggestions:")
	assert.Contains(t, out, "use sensor.schoology_announcements")

	wrapped := fmt.Errorf("render: %w", NewValidationError(ErrCodeEntityDomain, "entity must be a sensor").
		WithContext("suggestions", []string{"pick a sensor entity"}))
	out = FormatErrorWithSuggestions(wrapped)
	assert.Contains(t, out, "render: [ERR_ENTITY_DOMAIN] entity must be a sensor")
	assert.Contains(t, out, "• pick a sensor entity")

	assert.Equal(t, "", FormatErrorWithSuggestions(nil))
	assert.Equal(t, "plain", FormatErrorWithSuggestions(errors.New("plain")))
}

func TestErrorCollector(t *testing.T) {
	collector := NewErrorCollector()
	assert.False(t, collector.HasErrors())

	before := time.Now()
	collector.AddCardError(0, "schoology-announcements-card",
		NewValidationError(ErrCodeEntityKeyword, "missing keyword").WithEntity("sensor.x"))
	collector.AddCardError(1, "schoology-overdue-card", errors.New("bad yaml"))
	collector.AddCardError(2, "schoology-overdue-card", nil)

	issues := collector.GetIssues()
	require.Len(t, issues, 2)
	assert.Equal(t, ErrCodeEntityKeyword, issues[0].Code)
	assert.Equal(t, "sensor.x", issues[0].Entity)
	assert.Equal(t, "missing keyword", issues[0].Message)
	assert.False(t, issues[0].Timestamp.Before(before))
	assert.Equal(t, ErrCodeConfigInvalid, issues[1].Code)

	assert.Empty(t, issues[1].Suggestions)
	assert.True(t, collector.HasErrors())
}

func TestErrorCollectorKeepsSuggestions(t *testing.T) {
	collector := NewErrorCollector()
	collector.AddCardError(1, "schoology-upcoming-card",
		NewValidationError(ErrCodeEntityKeyword, "missing keyword").
			WithContext("suggestions", []string{"use sensor.schoology_upcoming_events"}))

	issues := collector.GetIssues()
	require.Len(t, issues, 1)
	assert.Equal(t, []string{"use sensor.schoology_upcoming_events"}, issues[0].Suggestions)
}

type recordingLogger struct {
	warns  []string
	errors []string
	fields [][]interface{}
}

func (r *recordingLogger) Error(ctx context.Context, err error, msg string, fields ...interface{}) {
	r.errors = append(r.errors, msg)
	r.fields = append(r.fields, fields)
}

func (r *recordingLogger) Warn(ctx context.Context, err error, msg string, fields ...interface{}) {
	r.warns = append(r.warns, msg)
	r.fields = append(r.fields, fields)
}

func TestErrorHandlerRoutesByType(t *testing.T) {
	logger := &recordingLogger{}
	handler := NewErrorHandler(logger)
	ctx := context.Background()

	handler.Handle(ctx, nil)
	handler.Handle(ctx, ErrEntityRequired())
	handler.Handle(ctx, NewLifecycleError(ErrCodeAlreadyConfigured, "already configured"))
	handler.Handle(ctx, NewIOError(ErrCodeSnapshotInvalid, "reading snapshot", errors.New("busy")))
	handler.Handle(ctx, ErrDuplicateCard("x"))
	handler.Handle(ctx, errors.New("raw"))

	assert.Equal(t, []string{"Card configuration rejected", "Card operation failed", "Card operation failed"}, logger.warns)
	assert.Equal(t, []string{"Error occurred", "Unhandled error occurred"}, logger.errors)
}

func TestErrorHandlerLogsErrorContext(t *testing.T) {
	logger := &recordingLogger{}
	handler := NewErrorHandler(logger)

	handler.Handle(context.Background(), NewValidationError(ErrCodeEntityKeyword, "missing keyword").
		WithCard("schoology-upcoming-card").
		WithEntity("sensor.grades").
		WithContext("keyword", "upcoming"))

	require.Len(t, logger.fields, 1)
	assert.Equal(t, []interface{}{
		"card", "schoology-upcoming-card",
		"code", ErrCodeEntityKeyword,
		"entity", "sensor.grades",
		"keyword", "upcoming",
		"recoverable", false,
		"type", "validation",
	}, logger.fields[0])
}
