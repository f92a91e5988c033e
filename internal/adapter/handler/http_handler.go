package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"github.com/rl1809/graphql-bench/internal/adapter/graphql"
	"github.com/rl1809/graphql-bench/internal/logging"
)

const maxBodyBytes = 1 << 20

// Executor runs one GraphQL request.
type Executor interface {
	Execute(ctx context.Context, req *graphql.Request) *graphql.Response
}

type HTTPHandler struct {
	executor Executor
	logger   *slog.Logger
}

type errorResponse struct {
	Message string `json:"message"`
}

func NewHTTPHandler(executor Executor, logger *slog.Logger) *HTTPHandler {
	if logger == nil {
		logger = logging.Nop()
	}
	return &HTTPHandler{executor: executor, logger: logger}
}

// Routes mounts /graphql and /health behind the request-id and access-log
// middleware.
func (h *HTTPHandler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.HealthCheck)
	mux.HandleFunc("/graphql", h.GraphQL)
	return RequestID(h.logger)(AccessLog(mux))
}

// GraphQL accepts POST with a JSON or application/graphql body, and GET with
// query, operationName and variables in the URL.
func (h *HTTPHandler) GraphQL(w http.ResponseWriter, r *http.Request) {
	var req graphql.Request

	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		req.Query = q.Get("query")
		req.OperationName = q.Get("operationName")
		if raw := q.Get("variables"); raw != "" {
			if err := decodeJSON([]byte(raw), &req.Variables); err != nil {
				writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid variables"})
				return
			}
		}

	case http.MethodPost:
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Message: "request body too large"})
				return
			}
			writeJSON(w, http.StatusBadRequest, errorResponse{Message: "failed to read request body"})
			return
		}

		if mediaType(r) == "application/graphql" {
			req.Query = string(body)
		} else if err := decodeJSON(body, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid request body"})
			return
		}

	default:
		w.Header().Set("Allow", "GET, POST")
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Message: "method not allowed"})
		return
	}

	resp := h.executor.Execute(r.Context(), &req)
	if resp.HasErrors() {
		logging.FromContext(r.Context(), h.logger).DebugContext(r.Context(), "graphql errors",
			"operation", req.OperationName, "count", len(resp.Errors), "first", resp.Errors[0].Message)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func mediaType(r *http.Request) string {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return ""
	}
	return mt
}

// decodeJSON keeps numbers as json.Number so Int variables keep full precision.
func decodeJSON(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
