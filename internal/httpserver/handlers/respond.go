package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Souley97/wolof-sign-back/internal/apperr"
)

func respondJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func respondStatus(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

// respondErr maps service errors to HTTP statuses. Internal failures are
// collapsed to a generic message so details stay in the logs.
func respondErr(w http.ResponseWriter, err error) {
	respondStatus(w, apperr.Status(err), map[string]string{"error": apperr.Message(err)})
}
