package errors

import (
	"fmt"
	"log/slog"
	"os"
)

// ErrorType buckets application errors by failure domain.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeAI         ErrorType = "ai"
	ErrorTypeNetwork    ErrorType = "network"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeInternal   ErrorType = "internal"
)

// Error codes shared across packages.
const (
	ErrCodeFileNotFound       = "FILE_NOT_FOUND"
	ErrCodeFileNotReadable    = "FILE_NOT_READABLE"
	ErrCodeInvalidFormat      = "INVALID_FORMAT"
	ErrCodeAIServiceFailed    = "AI_SERVICE_FAILED"
	ErrCodeAITimeout          = "AI_TIMEOUT"
	ErrCodeScoringFailed      = "SCORING_FAILED"
	ErrCodeRegenerationFailed = "REGENERATION_FAILED"
	ErrCodeInvalidRequest     = "INVALID_REQUEST"
	ErrCodeMissingAPIKey      = "MISSING_API_KEY"
	ErrCodeNetworkTimeout     = "NETWORK_TIMEOUT"
	ErrCodeInvalidConfig      = "INVALID_CONFIG"
)

// AppError is the structured error carried across package boundaries. Code
// is a stable machine-readable identifier, Message is for humans.
type AppError struct {
	Type    ErrorType      `json:"type"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Cause   error          `json:"cause,omitempty"`
	Context map[string]any `json:"context,omitempty"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext attaches a key/value pair that LogError will emit.
func (e *AppError) WithContext(key string, value any) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

func newAppError(typ ErrorType, code, message string, cause error) *AppError {
	return &AppError{
		Type:    typ,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Typed constructors, one per failure domain.

func NewValidationError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeValidation, code, message, cause)
}

func NewIOError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeIO, code, message, cause)
}

func NewAIError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeAI, code, message, cause)
}

func NewNetworkError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeNetwork, code, message, cause)
}

func NewConfigError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeConfig, code, message, cause)
}

func NewInternalError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeInternal, code, message, cause)
}

// NewScoringError marks a scoring response that could not be parsed into a
// valid score result. Never retried; callers decide fallback policy.
func NewScoringError(message string, cause error) *AppError {
	return newAppError(ErrorTypeAI, ErrCodeScoringFailed, message, cause)
}

// NewRegenerationError marks a failed or unparsable section regeneration.
// Fatal to the optimization run that triggered it.
func NewRegenerationError(message string, cause error) *AppError {
	return newAppError(ErrorTypeAI, ErrCodeRegenerationFailed, message, cause)
}

// Logger is a thin wrapper over slog that knows how to unpack AppError.
type Logger struct {
	logger *slog.Logger
}

// NewLogger returns a JSON logger writing to stdout at the given level.
func NewLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return &Logger{logger: slog.New(handler)}
}

var levelNames = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// New builds a logger from a level name ("debug", "info", "warn", "error").
func New(level string) (*Logger, error) {
	slogLevel, ok := levelNames[level]
	if !ok {
		return nil, fmt.Errorf("invalid log level: %s", level)
	}
	return NewLogger(slogLevel), nil
}

// LogError emits err at error level. AppErrors contribute their type, code,
// and context as structured fields; plain errors log as a single attribute.
func (l *Logger) LogError(err error, message string, args ...any) {
	appErr, ok := err.(*AppError)
	if !ok {
		l.logger.Error(message, append([]any{"error", err.Error()}, args...)...)
		return
	}

	logArgs := []any{
		"error_type", appErr.Type,
		"error_code", appErr.Code,
		"error_message", appErr.Message,
	}
	for key, value := range appErr.Context {
		logArgs = append(logArgs, key, value)
	}
	logArgs = append(logArgs, args...)

	l.logger.Error(message, logArgs...)
}

func (l *Logger) Info(message string, args ...any) {
	l.logger.Info(message, args...)
}

func (l *Logger) Debug(message string, args ...any) {
	l.logger.Debug(message, args...)
}

func (l *Logger) Warn(message string, args ...any) {
	l.logger.Warn(message, args...)
}
