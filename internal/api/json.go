package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/zeebo/xxh3"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

// writeCached writes a 200 response tagged with a content hash ETag and
// answers 304 when the client already holds that version.
func writeCached(w http.ResponseWriter, r *http.Request, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	etag := fmt.Sprintf(`"%016x"`, xxh3.Hash(data))
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(append(data, '\n'))
}

type errResponse struct {
	Error       string   `json:"error" validate:"required"`
	Suggestions []string `json:"suggestions,omitempty"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}
