package attachments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hackclub/s3purge/internal/purge"
	"github.com/rs/zerolog"
)

const (
	maxBodyBytes = 1 << 20 // 1MB
	maxBatchSize = 20
)

// Purger is implemented by *purge.Purger.
type Purger interface {
	Purge(ctx context.Context, id string, record purge.FileRecord) (*purge.Outcome, error)
	Keys(record purge.FileRecord) ([]string, error)
}

type Handler struct {
	purger Purger
	logger zerolog.Logger
}

func NewHandler(purger Purger, logger zerolog.Logger) *Handler {
	return &Handler{
		purger: purger,
		logger: logger,
	}
}

// Result is the response for one purged attachment.
type Result struct {
	PurgeID      string         `json:"purge_id"`
	AttachmentID string         `json:"attachment_id"`
	OK           bool           `json:"ok"`
	Error        string         `json:"error,omitempty"`
	Kind         purge.Kind     `json:"kind,omitempty"`
	Outcome      *purge.Outcome `json:"outcome,omitempty"`
}

// BatchItem is one attachment in a batch purge request.
type BatchItem struct {
	ID       string           `json:"id"`
	Metadata purge.FileRecord `json:"metadata"`
}

// HandlePurge deletes one attachment. The request body is the attachment
// metadata as stored by the CMS.
func (h *Handler) HandlePurge(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "Attachment ID required", "")
		return
	}

	var record purge.FileRecord
	if err := h.decode(w, r, &record); err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid attachment metadata: %v", err), "")
		return
	}

	res := h.purge(r.Context(), id, record)

	status := http.StatusOK
	switch res.Kind {
	case purge.MissingMetadata:
		status = http.StatusUnprocessableEntity
	case purge.InvalidConfiguration:
		status = http.StatusInternalServerError
	}
	h.writeJSONResponse(w, status, res)
}

// HandleBatch purges several attachments, one batch delete request each.
// A failure in one item never stops the others.
func (h *Handler) HandleBatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Items []BatchItem `json:"items"`
	}

	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid JSON", "")
		return
	}

	if len(req.Items) == 0 {
		h.writeError(w, http.StatusBadRequest, "No items provided", "")
		return
	}

	if len(req.Items) > maxBatchSize {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("Batch size too large (max %d)", maxBatchSize), "")
		return
	}

	results := make([]*Result, 0, len(req.Items))
	for i, item := range req.Items {
		if item.ID == "" {
			item.ID = fmt.Sprintf("batch-%d", i)
		}
		results = append(results, h.purge(r.Context(), item.ID, item.Metadata))
	}

	h.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"results": results,
		"count":   len(results),
	})
}

// HandleKeys returns the keys a purge would delete, without deleting them.
func (h *Handler) HandleKeys(w http.ResponseWriter, r *http.Request) {
	var record purge.FileRecord
	if err := h.decode(w, r, &record); err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid attachment metadata: %v", err), "")
		return
	}

	keys, err := h.purger.Keys(record)
	if err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, err.Error(), purge.KindOf(err))
		return
	}

	h.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"keys":  keys,
		"count": len(keys),
	})
}

func (h *Handler) purge(ctx context.Context, id string, record purge.FileRecord) *Result {
	res := &Result{
		PurgeID:      uuid.NewString(),
		AttachmentID: id,
	}

	out, err := h.purger.Purge(ctx, id, record)
	res.Outcome = out
	if err != nil {
		res.Error = err.Error()
		res.Kind = purge.KindOf(err)
		h.logger.Warn().Err(err).Str("purge_id", res.PurgeID).Str("attachment_id", id).Msg("purge rejected")
		return res
	}

	res.OK = out.OK()
	h.logger.Info().
		Str("purge_id", res.PurgeID).
		Str("attachment_id", id).
		Int("deleted", len(out.Deleted)).
		Int("errors", len(out.Errors)).
		Msg("purge finished")
	return res
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v interface{}) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("body larger than %d bytes", maxErr.Limit)
		}
		return err
	}
	return nil
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string, kind purge.Kind) {
	body := map[string]string{"error": message}
	if kind != "" {
		body["kind"] = string(kind)
	}
	h.writeJSONResponse(w, status, body)
}

func (h *Handler) writeJSONResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode JSON response")
	}
}
