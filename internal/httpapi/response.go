package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"barsandbios/internal/apperr"
	"barsandbios/internal/logging"
	"barsandbios/internal/pagination"
)

const maxBodyBytes = 1 << 20

type envelope struct {
	Success    bool             `json:"success"`
	Data       any              `json:"data,omitempty"`
	Message    string           `json:"message,omitempty"`
	Pagination *pagination.Meta `json:"pagination,omitempty"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

type errorEnvelope struct {
	Success bool      `json:"success"`
	Error   errorBody `json:"error"`
}

var errBadJSON = apperr.Invalid("invalid JSON payload")

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

func writeMessage(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: message})
}

func writePage[T any](w http.ResponseWriter, page pagination.Page[T]) {
	items := page.Items
	if items == nil {
		items = []T{}
	}
	meta := page.Meta
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: items, Pagination: &meta})
}

// writeError maps err onto the error envelope. Unclassified errors become a
// generic 500; outside production the full error chain is returned as stack.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	body := errorBody{Code: apperr.CodeInternal, Message: "Internal server error"}
	status := http.StatusInternalServerError

	if appErr, ok := apperr.As(err); ok {
		status = appErr.Kind.Status()
		body.Code = appErr.Code
		body.Message = appErr.Message
	}

	logger := logging.FromContext(r.Context(), s.logger)
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	} else {
		logger.Debug().Err(err).Str("code", body.Code).Msg("request rejected")
	}

	if !s.production {
		body.Stack = err.Error()
	}
	writeJSON(w, status, errorEnvelope{Error: body})
}

// decode reads a JSON body into dst, rejecting unknown shapes and oversized payloads.
func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Invalid("request body is required")
		}
		return errBadJSON.Wrap(err)
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Invalid("invalid %s parameter", name)
	}
	return id, nil
}

// listParams reads the pagination request and the filter recognized by spec.
func listParams(r *http.Request, spec pagination.Spec) (pagination.Filter, pagination.Request, error) {
	q := r.URL.Query()
	f, err := spec.ParseFilter(q)
	if err != nil {
		return pagination.Filter{}, pagination.Request{}, err
	}
	return f, pagination.ParseRequest(q), nil
}
