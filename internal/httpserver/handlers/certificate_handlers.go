package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Souley97/wolof-sign-back/internal/auth"
	"github.com/Souley97/wolof-sign-back/internal/models"
	"github.com/Souley97/wolof-sign-back/internal/services/sigcrypto"
)

type generateCertificateReq struct {
	ValidUntil time.Time `json:"valid_until"`
}

// GenerateCertificate creates an RSA keypair for the caller. The private
// key never leaves the server.
func GenerateCertificate(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req generateCertificateReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.ValidUntil.IsZero() || !req.ValidUntil.After(time.Now()) {
			http.Error(w, "valid_until must be a future date", http.StatusBadRequest)
			return
		}

		pub, priv, err := sigcrypto.GenerateKeyPair()
		if err != nil {
			respondErr(w, err)
			return
		}
		cert := models.Certificate{
			UserID:     auth.Subject(r.Context()),
			PublicKey:  pub,
			PrivateKey: priv,
			ValidUntil: req.ValidUntil,
			Status:     models.CertificateActive,
		}
		if err := db.Create(&cert).Error; err != nil {
			respondErr(w, err)
			return
		}
		lg.Infow("certificate generated", "certificate_id", cert.ID, "user_id", cert.UserID)
		respondStatus(w, http.StatusCreated, cert)
	}
}

func ListCertificates(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var certs []models.Certificate
		if err := db.Where("user_id = ?", auth.Subject(r.Context())).
			Order("valid_from DESC").Find(&certs).Error; err != nil {
			respondErr(w, err)
			return
		}
		// Surface expiry without waiting for a write.
		now := time.Now()
		for i := range certs {
			if certs[i].Status == models.CertificateActive && certs[i].IsExpired(now) {
				certs[i].Status = models.CertificateExpired
			}
		}
		respondJSON(w, certs)
	}
}

type revokeCertificateReq struct {
	Reason string `json:"reason,omitempty"`
}

func RevokeCertificate(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req revokeCertificateReq
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&req)
		}
		var cert models.Certificate
		if err := db.First(&cert, "id = ? AND user_id = ?",
			chi.URLParam(r, "id"), auth.Subject(r.Context())).Error; err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if cert.Status == models.CertificateRevoked {
			http.Error(w, "certificate already revoked", http.StatusBadRequest)
			return
		}
		if err := db.Model(&cert).Updates(map[string]any{
			"status":            models.CertificateRevoked,
			"revocation_reason": req.Reason,
		}).Error; err != nil {
			respondErr(w, err)
			return
		}
		lg.Infow("certificate revoked", "certificate_id", cert.ID, "reason", req.Reason)
		respondJSON(w, cert)
	}
}
