package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Souley97/wolof-sign-back/internal/auth"
	"github.com/Souley97/wolof-sign-back/internal/services/vault"
)

type savedSignatureReq struct {
	Name          string `json:"name"`
	SignatureData string `json:"signature_data"`
	IsDefault     bool   `json:"is_default"`
}

func CreateSavedSignature(v *vault.Vault, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req savedSignatureReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		sig, err := v.Save(r.Context(), auth.Subject(r.Context()), req.Name, req.SignatureData, req.IsDefault)
		if err != nil {
			respondErr(w, err)
			return
		}
		respondStatus(w, http.StatusCreated, sig)
	}
}

func ListSavedSignatures(v *vault.Vault, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sigs, err := v.List(r.Context(), auth.Subject(r.Context()))
		if err != nil {
			respondErr(w, err)
			return
		}
		respondJSON(w, sigs)
	}
}

// GetSavedSignatureData returns the decrypted image for reuse in the
// signing UI and marks the signature as used.
func GetSavedSignatureData(v *vault.Vault, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, sig, err := v.GetDecrypted(r.Context(), auth.Subject(r.Context()), chi.URLParam(r, "id"))
		if err != nil {
			respondErr(w, err)
			return
		}
		respondJSON(w, map[string]any{
			"id":             sig.ID,
			"name":           sig.Name,
			"signature_data": data,
			"is_default":     sig.IsDefault,
		})
	}
}

func SetDefaultSavedSignature(v *vault.Vault, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := v.SetDefault(r.Context(), auth.Subject(r.Context()), chi.URLParam(r, "id")); err != nil {
			respondErr(w, err)
			return
		}
		respondJSON(w, map[string]string{"status": "default updated"})
	}
}

func DeleteSavedSignature(v *vault.Vault, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := v.Delete(r.Context(), auth.Subject(r.Context()), chi.URLParam(r, "id")); err != nil {
			respondErr(w, err)
			return
		}
		respondJSON(w, map[string]string{"status": "deleted"})
	}
}
