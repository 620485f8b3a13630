package core

import (
	"errors"
	"fmt"
)

// Step identifies the pipeline stage that produced an error.
type Step string

const (
	StepInit     Step = "init"
	StepDownload Step = "download"
	StepPdfParse Step = "pdf_parse"
	StepEmbed    Step = "embed"
	StepDBInsert Step = "db_insert"
	StepDBDelete Step = "db_delete"
)

var (
	ErrBadRequest      = errors.New("bad request")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrInvalidArgument = errors.New("invalid argument")
)

// StepError is the single structured failure of an indexing run.
type StepError struct {
	Step    Step
	Message string
	Err     error
}

func NewStepError(step Step, err error, format string, args ...any) *StepError {
	msg := fmt.Sprintf(format, args...)
	if err != nil {
		if msg == "" {
			msg = err.Error()
		} else {
			msg = msg + ": " + err.Error()
		}
	}
	return &StepError{Step: step, Message: msg, Err: err}
}

func (e *StepError) Error() string {
	return fmt.Sprintf("STEP:%s | %s", e.Step, e.Message)
}

func (e *StepError) Unwrap() error { return e.Err }

// StepOf returns the step tag carried by err, if any.
func StepOf(err error) (Step, bool) {
	var se *StepError
	if errors.As(err, &se) {
		return se.Step, true
	}
	return "", false
}

// HTTPStatusError reports a non-success upstream response. The raw body is kept
// verbatim so callers can tell a rate limit from a bad credential.
type HTTPStatusError struct {
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%d", e.StatusCode)
	}
	return fmt.Sprintf("%d | %s", e.StatusCode, e.Body)
}

// EmbeddingError wraps any failure of an embedding provider call.
type EmbeddingError struct {
	Err error
}

func (e *EmbeddingError) Error() string { return e.Err.Error() }

func (e *EmbeddingError) Unwrap() error { return e.Err }

// PdfParseError wraps a failure of the PDF parser.
type PdfParseError struct {
	Err error
}

func (e *PdfParseError) Error() string { return "parse pdf: " + e.Err.Error() }

func (e *PdfParseError) Unwrap() error { return e.Err }
