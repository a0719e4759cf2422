// Package response writes JSON bodies for the HTTP handlers.
package response

import (
	"net/http"

	"github.com/de-tools/pricelist-atlas/pkg/models/api"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

const contentTypeJSON = "application/json; charset=utf-8"

func JSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(r.Context()).Error().
			Err(err).
			Msg("failed to encode response")
	}
}

// Raw writes an already-encoded JSON document.
func Raw(w http.ResponseWriter, r *http.Request, status int, data []byte) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		zerolog.Ctx(r.Context()).Error().
			Err(err).
			Msg("failed to write response")
	}
}

func Error(w http.ResponseWriter, r *http.Request, status int, message string) {
	JSON(w, r, status, api.ErrorResponse{Error: message})
}
