package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/markdave123-py/storage-indexer/internal/core"
	"github.com/markdave123-py/storage-indexer/internal/core/ingestion_engine"
	"github.com/markdave123-py/storage-indexer/internal/models"
)

// IndexRunner is what the index endpoint needs from the service layer.
type IndexRunner interface {
	Index(ctx context.Context, bucket, key string, opts ingestion_engine.RunOptions) (*models.IndexRunResult, error)
	Diagnose() models.Diagnostic
}

type IndexHandler struct {
	svc IndexRunner
}

func NewIndexHandler(svc IndexRunner) *IndexHandler {
	return &IndexHandler{svc: svc}
}

// indexBody is the wire shape of POST /api/index.
type indexBody struct {
	Diagnostic bool   `json:"diagnostic"`
	Bucket     string `json:"bucket"`
	Key        string `json:"key"`
	Overwrite  bool   `json:"overwrite"`
	DryRun     bool   `json:"dryRun"`
}

// IndexCommand is either a DiagnosticCommand or an IndexRequest.
type IndexCommand interface {
	isIndexCommand()
}

type DiagnosticCommand struct{}

type IndexRequest struct {
	Bucket string
	Key    string
	Opts   ingestion_engine.RunOptions
}

func (DiagnosticCommand) isIndexCommand() {}
func (IndexRequest) isIndexCommand()      {}

// parseIndexCommand validates a decoded body and returns the command it names.
func parseIndexCommand(b indexBody) (IndexCommand, error) {
	if b.Diagnostic {
		return DiagnosticCommand{}, nil
	}
	bucket, key := strings.TrimSpace(b.Bucket), strings.TrimSpace(b.Key)
	if bucket == "" || key == "" {
		return nil, badRequest("bucket and key are required")
	}
	return IndexRequest{
		Bucket: bucket,
		Key:    key,
		Opts:   ingestion_engine.RunOptions{Overwrite: b.Overwrite, DryRun: b.DryRun},
	}, nil
}

type runResponse struct {
	OK       bool   `json:"ok"`
	Bucket   string `json:"bucket"`
	Key      string `json:"key"`
	Pages    int    `json:"pages"`
	Inserted int    `json:"inserted"`
}

type dryRunResponse struct {
	OK               bool   `json:"ok"`
	Note             string `json:"note"`
	Bucket           string `json:"bucket"`
	Key              string `json:"key"`
	Pages            int    `json:"pages"`
	TotalChars       int    `json:"totalChars"`
	FirstPageSnippet string `json:"firstPageSnippet"`
}

type noTextResponse struct {
	OK     bool   `json:"ok"`
	Note   string `json:"note"`
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
	Pages  int    `json:"pages"`
}

type diagnosticResponse struct {
	OK bool `json:"ok"`
	models.Diagnostic
}

// RunResponse renders a run result in its wire shape. The CLI prints the same value.
func RunResponse(res *models.IndexRunResult) any {
	switch res.Note {
	case models.NoteDryRun:
		return dryRunResponse{
			OK: true, Note: res.Note, Bucket: res.Bucket, Key: res.Key, Pages: res.Pages,
			TotalChars: res.TotalChars, FirstPageSnippet: res.FirstPageSnippet,
		}
	case models.NoteNoText:
		return noTextResponse{OK: true, Note: res.Note, Bucket: res.Bucket, Key: res.Key, Pages: res.Pages}
	default:
		return runResponse{OK: true, Bucket: res.Bucket, Key: res.Key, Pages: res.Pages, Inserted: res.Inserted}
	}
}

func DiagnosticResponse(d models.Diagnostic) any {
	return diagnosticResponse{OK: true, Diagnostic: d}
}

// ErrorResponse renders err as the {error} body.
func ErrorResponse(err error) any {
	return errorResponse{Error: err.Error()}
}

// Index handles POST /api/index.
func (h *IndexHandler) Index(w http.ResponseWriter, r *http.Request) {
	var body indexBody
	if err := decodeStrict(w, r, &body); err != nil {
		writeError(w, err)
		return
	}
	cmd, err := parseIndexCommand(body)
	if err != nil {
		writeError(w, err)
		return
	}

	switch c := cmd.(type) {
	case DiagnosticCommand:
		writeJSON(w, http.StatusOK, DiagnosticResponse(h.svc.Diagnose()))
	case IndexRequest:
		res, err := h.svc.Index(r.Context(), c.Bucket, c.Key, c.Opts)
		if err != nil {
			log.Printf("IndexHandler: %s/%s failed: %v", c.Bucket, c.Key, err)
			writeError(w, withStep(err))
			return
		}
		writeJSON(w, http.StatusOK, RunResponse(res))
	}
}

// withStep tags a run failure that carries no step with init, so every
// server-side failure of an index request reads "STEP:<step> | ...".
func withStep(err error) error {
	if _, ok := core.StepOf(err); ok {
		return err
	}
	if errors.Is(err, core.ErrBadRequest) || errors.Is(err, core.ErrUnauthorized) {
		return err
	}
	return core.NewStepError(core.StepInit, err, "")
}

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", core.ErrBadRequest, fmt.Sprintf(format, args...))
}
