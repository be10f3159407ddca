package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Souley97/wolof-sign-back/internal/auth"
	"github.com/Souley97/wolof-sign-back/internal/services/signing"
)

type inviteReq struct {
	Email     string     `json:"email"`
	FullName  string     `json:"full_name"`
	Message   string     `json:"message,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Page      int        `json:"signature_page"`
	X         float64    `json:"signature_position_x"`
	Y         float64    `json:"signature_position_y"`
}

func InviteSigner(wf *signing.Workflow, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req inviteReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		signer, sent, err := wf.InviteSigner(r.Context(), signing.InviteRequest{
			DocumentID: chi.URLParam(r, "id"),
			OwnerID:    auth.Subject(r.Context()),
			Email:      req.Email,
			FullName:   req.FullName,
			Message:    req.Message,
			ExpiresAt:  req.ExpiresAt,
			Page:       req.Page,
			X:          req.X,
			Y:          req.Y,
		})
		if err != nil {
			respondErr(w, err)
			return
		}
		respondStatus(w, http.StatusCreated, map[string]any{
			"signer":          signer,
			"invitation_sent": sent,
		})
	}
}

func ListSigners(wf *signing.Workflow, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		signers, err := wf.ListSigners(r.Context(), auth.Subject(r.Context()), chi.URLParam(r, "id"))
		if err != nil {
			respondErr(w, err)
			return
		}
		respondJSON(w, signers)
	}
}

func SendReminder(wf *signing.Workflow, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		signer, err := wf.SendReminder(r.Context(), auth.Subject(r.Context()),
			chi.URLParam(r, "id"), chi.URLParam(r, "signer_id"))
		if err != nil {
			respondErr(w, err)
			return
		}
		respondJSON(w, signer)
	}
}

func CancelInvitation(wf *signing.Workflow, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := wf.CancelInvitation(r.Context(), auth.Subject(r.Context()),
			chi.URLParam(r, "id"), chi.URLParam(r, "signer_id"))
		if err != nil {
			respondErr(w, err)
			return
		}
		respondJSON(w, map[string]string{"status": "invitation cancelled"})
	}
}

type guestSignReq struct {
	Token     string  `json:"token"`
	Signature string  `json:"signature"`
	Page      int     `json:"signature_page"`
	X         float64 `json:"signature_position_x"`
	Y         float64 `json:"signature_position_y"`
}

// SignPDFWithToken is the public guest flow: the invitation token is the
// only credential.
func SignPDFWithToken(wf *signing.Workflow, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req guestSignReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.Token == "" {
			http.Error(w, "token required", http.StatusBadRequest)
			return
		}
		doc, sig, err := wf.GuestSign(r.Context(), chi.URLParam(r, "id"),
			req.Token, req.Signature, req.Page, req.X, req.Y)
		if err != nil {
			respondErr(w, err)
			return
		}
		respondJSON(w, map[string]any{
			"message":   "document signé",
			"document":  doc,
			"signature": sig,
		})
	}
}
