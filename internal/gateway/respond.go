package gateway

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strconv"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"

	"github.com/petcare-labs/petcare/internal/errors"
	"github.com/petcare-labs/petcare/pkg/api"
	"github.com/petcare-labs/petcare/pkg/models"
)

// maxBodyBytes bounds request bodies; every record fits in a few KB.
const maxBodyBytes = 1 << 20

// StatusFor maps an error code to an HTTP status.
func StatusFor(code errors.ErrorCode) int {
	switch code {
	case errors.CodeValidation:
		return http.StatusBadRequest
	case errors.CodeNotFound:
		return http.StatusNotFound
	case errors.CodeAuth:
		return http.StatusUnauthorized
	case errors.CodeForbidden:
		return http.StatusForbidden
	case errors.CodeRateLimit:
		return http.StatusTooManyRequests
	case errors.CodeStorage:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set(api.HeaderContentType, api.ContentTypeJSON)
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// writeError renders err as an ErrorResponse. Untyped errors become
// internal errors with the raw message as the reason.
func (g *Gateway) writeError(w http.ResponseWriter, r *http.Request, err error) {
	pe, ok := errors.As(err)
	if !ok {
		pe = &errors.PetCareError{
			Code:       errors.CodeInternal,
			Message:    "internal error",
			Reason:     err.Error(),
			Suggestion: "retry the request; if it keeps failing check the gateway logs",
		}
		if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
			pe.Message = "request cancelled"
			pe.Suggestion = ""
		}
	}

	status := StatusFor(pe.Code)
	if info := infoFrom(r.Context()); info != nil {
		info.err = pe.Message
	}
	if status >= http.StatusInternalServerError {
		g.logger.Error("request failed",
			zap.String("request_id", RequestIDFrom(r.Context())),
			zap.Error(err),
		)
		if g.config.ReportErrors {
			if hub := sentry.GetHubFromContext(r.Context()); hub != nil {
				hub.CaptureException(err)
			}
		}
	}
	if status == http.StatusTooManyRequests {
		w.Header().Set(api.HeaderRetryAfter, "1")
	}

	writeJSON(w, status, models.ErrorResponse{
		Error:      pe.Message,
		Reason:     pe.Reason,
		Suggestion: pe.Suggestion,
		Code:       int(pe.Code),
		RequestID:  RequestIDFrom(r.Context()),
	})
}

// decodeJSON reads a JSON body into v, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	empty, err := decodeOptionalJSON(r, v)
	if err != nil {
		return err
	}
	if empty {
		return errors.NewBadRequest("request body is empty")
	}
	return nil
}

// decodeOptionalJSON is decodeJSON for endpoints whose body may be
// omitted. empty reports that no JSON value was sent, whatever the
// Content-Length or transfer encoding.
func decodeOptionalJSON(r *http.Request, v any) (empty bool, err error) {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if stderrors.Is(err, io.EOF) {
			return true, nil
		}
		return false, errors.NewBadRequest("invalid JSON body: " + err.Error())
	}
	return false, nil
}

// pathID parses the {id} wildcard.
func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NewBadRequest("invalid id: " + strconv.Quote(raw))
	}
	return id, nil
}

// queryPetID parses the optional petId filter. Zero means all pets.
func queryPetID(r *http.Request) (int64, error) {
	raw := r.URL.Query().Get(api.ParamPet)
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NewBadRequest("invalid petId: " + strconv.Quote(raw))
	}
	return id, nil
}
