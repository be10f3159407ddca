package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Souley97/wolof-sign-back/internal/auth"
	"github.com/Souley97/wolof-sign-back/internal/models"
	"github.com/Souley97/wolof-sign-back/internal/services/signing"
)

const maxUploadBytes = 32 << 20

// UploadDocument accepts a multipart PDF under the "file" field.
func UploadDocument(wf *signing.Workflow, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			http.Error(w, "multipart form required", http.StatusBadRequest)
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "file field required", http.StatusBadRequest)
			return
		}
		defer file.Close()

		doc, err := wf.CreateDocument(r.Context(), auth.Subject(r.Context()),
			r.FormValue("title"), header.Filename, file)
		if err != nil {
			respondErr(w, err)
			return
		}
		respondStatus(w, http.StatusCreated, doc)
	}
}

func ListDocuments(wf *signing.Workflow, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		docs, err := wf.Documents(r.Context(), auth.Subject(r.Context()))
		if err != nil {
			respondErr(w, err)
			return
		}
		respondJSON(w, docs)
	}
}

func GetDocument(wf *signing.Workflow, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, sigs, err := wf.Document(r.Context(), auth.Subject(r.Context()), chi.URLParam(r, "id"))
		if err != nil {
			respondErr(w, err)
			return
		}
		respondJSON(w, map[string]any{"document": doc, "signatures": sigs})
	}
}

func DownloadDocument(wf *signing.Workflow, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, _, err := wf.Document(r.Context(), auth.Subject(r.Context()), chi.URLParam(r, "id"))
		if err != nil {
			respondErr(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", filepath.Base(doc.FilePath)))
		http.ServeFile(w, r, doc.FilePath)
	}
}

// Position defaults match what the signing UI sends when the user does not
// move the stamp.
type signPDFReq struct {
	CertificateID    string   `json:"certificate_id,omitempty"`
	Signature        string   `json:"signature"`
	SavedSignatureID string   `json:"saved_signature_id,omitempty"`
	Page             int      `json:"signature_page"`
	X                *float64 `json:"signature_position_x"`
	Y                *float64 `json:"signature_position_y"`
	Width            float64  `json:"signature_width"`
	Height           float64  `json:"signature_height"`
}

func (req *signPDFReq) toRequest(documentID, userID string) signing.SignRequest {
	x, y := 100.0, 100.0
	if req.X != nil {
		x = *req.X
	}
	if req.Y != nil {
		y = *req.Y
	}
	width, height := req.Width, req.Height
	if width == 0 && height == 0 {
		width, height = 200, 100
	}
	return signing.SignRequest{
		DocumentID:    documentID,
		UserID:        userID,
		CertificateID: req.CertificateID,
		Signature:     req.Signature,
		Page:          req.Page,
		X:             x,
		Y:             y,
		Width:         width,
		Height:        height,
	}
}

func SignPDF(wf *signing.Workflow, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req signPDFReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		sr := req.toRequest(chi.URLParam(r, "id"), auth.Subject(r.Context()))

		var (
			doc *models.Document
			sig *models.Signature
			err error
		)
		if req.SavedSignatureID != "" {
			doc, sig, err = wf.SignWithSaved(r.Context(), sr, req.SavedSignatureID)
		} else {
			doc, sig, err = wf.SignPDF(r.Context(), sr)
		}
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

func VerifySignature(wf *signing.Workflow, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := wf.Verify(r.Context(), auth.Subject(r.Context()),
			chi.URLParam(r, "id"), r.URL.Query().Get("signature_id"))
		if err != nil {
			respondErr(w, err)
			return
		}
		respondJSON(w, report)
	}
}

// UserStats summarizes the caller's documents and quota.
func UserStats(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := auth.Subject(r.Context())
		var total, signed, pending int64
		db.Model(&models.Document{}).Where("uploaded_by = ?", userID).Count(&total)
		db.Model(&models.Document{}).Where("uploaded_by = ? AND status = ?", userID, models.DocumentSigned).Count(&signed)
		db.Model(&models.Document{}).Where("uploaded_by = ? AND status = ?", userID, models.DocumentPending).Count(&pending)

		stats := map[string]any{
			"documents": map[string]int64{"total": total, "signed": signed, "pending": pending},
		}
		var sub models.Subscription
		err := db.Preload("Plan").
			Where("user_id = ? AND status IN ?", userID,
				[]models.SubscriptionStatus{models.SubscriptionActive, models.SubscriptionTrialing}).
			Order("created_at DESC").First(&sub).Error
		if err == nil {
			stats["subscription"] = map[string]any{
				"plan":                 sub.Plan.Name,
				"signatures_used":      sub.SignaturesUsed,
				"signatures_remaining": sub.RemainingSignatures(),
				"current_period_end":   sub.CurrentPeriodEnd,
			}
		}
		respondJSON(w, stats)
	}
}

// AdminStats is a platform-wide summary for administrators.
func AdminStats(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var users, documents, signatures, activeSubs int64
		db.Model(&models.User{}).Count(&users)
		db.Model(&models.Document{}).Count(&documents)
		db.Model(&models.Signature{}).Count(&signatures)
		db.Model(&models.Subscription{}).Where("status = ?", models.SubscriptionActive).Count(&activeSubs)
		respondJSON(w, map[string]int64{
			"users":                users,
			"documents":            documents,
			"signatures":           signatures,
			"active_subscriptions": activeSubs,
		})
	}
}
