package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeConfiguration represents a missing or invalid setting
	ErrorTypeConfiguration ErrorType = "configuration"
	// ErrorTypeFetch represents network or HTTP failures while fetching the target page
	ErrorTypeFetch ErrorType = "fetch"
	// ErrorTypeParsing represents HTML parsing errors
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypeNotification represents message delivery failures
	ErrorTypeNotification ErrorType = "notification"
	// ErrorTypeState represents state load/save failures
	ErrorTypeState ErrorType = "state"
	// ErrorTypePublisher represents event stream failures
	ErrorTypePublisher ErrorType = "publisher"
)

// MonitorError represents an error raised by one stage of a monitor run
type MonitorError struct {
	Type    ErrorType
	Source  string
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *MonitorError) Error() string {
	if e.Source == "" {
		if e.Err != nil {
			return fmt.Sprintf("[%s] %s - %v", e.Type, e.Message, e.Err)
		}
		return fmt.Sprintf("[%s] %s", e.Type, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Source, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Source, e.Message)
}

// Unwrap returns the underlying error
func (e *MonitorError) Unwrap() error {
	return e.Err
}

// New creates a new MonitorError
func New(errType ErrorType, source, message string, err error) *MonitorError {
	return &MonitorError{
		Type:    errType,
		Source:  source,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *MonitorError {
	return New(ErrorTypeConfiguration, "", message, err)
}

// NewFetch creates a new fetch error
func NewFetch(source, message string, err error) *MonitorError {
	return New(ErrorTypeFetch, source, message, err)
}

// NewParsing creates a new parsing error
func NewParsing(source, message string, err error) *MonitorError {
	return New(ErrorTypeParsing, source, message, err)
}

// NewNotification creates a new notification error
func NewNotification(source, message string, err error) *MonitorError {
	return New(ErrorTypeNotification, source, message, err)
}

// NewState creates a new state error
func NewState(source, message string, err error) *MonitorError {
	return New(ErrorTypeState, source, message, err)
}

// NewPublisher creates a new publisher error
func NewPublisher(source, message string, err error) *MonitorError {
	return New(ErrorTypePublisher, source, message, err)
}

// TypeOf returns the type of the first MonitorError in err's chain, or ""
func TypeOf(err error) ErrorType {
	var me *MonitorError
	if stderrors.As(err, &me) {
		return me.Type
	}
	return ""
}

// Is reports whether err carries a MonitorError of the given type
func Is(err error, errType ErrorType) bool {
	return err != nil && TypeOf(err) == errType
}
