package signing

import (
	"context"
	"fmt"
	"time"

	"github.com/Souley97/wolof-sign-back/internal/apperr"
	"github.com/Souley97/wolof-sign-back/internal/models"
	"github.com/Souley97/wolof-sign-back/internal/services/sigcrypto"
)

// VerifyReport is the outcome of checking one signature against its
// document and certificate.
type VerifyReport struct {
	Valid       bool                `json:"valid"`
	Message     string              `json:"message"`
	Certificate *models.Certificate `json:"certificate,omitempty"`
	Signature   *models.Signature   `json:"signature"`
}

// Verify checks the cryptographic signature recorded for a document. A
// drawn-only signature has nothing to verify; a certificate that is
// revoked or expired invalidates the report even when the RSA check would
// pass.
func (w *Workflow) Verify(ctx context.Context, userID, documentID, signatureID string) (*VerifyReport, error) {
	doc, err := w.ownedDocument(ctx, documentID, userID)
	if err != nil {
		return nil, err
	}

	var sig models.Signature
	q := w.db.WithContext(ctx).Where("document_id = ?", doc.ID)
	if signatureID != "" {
		q = q.Where("id = ?", signatureID)
	}
	if err := q.Order("timestamp DESC").First(&sig).Error; err != nil {
		return nil, apperr.ErrNotFound
	}

	if sig.CertificateID == nil {
		return &VerifyReport{
			Valid:     false,
			Message:   "signature graphique sans certificat : aucune vérification cryptographique possible",
			Signature: &sig,
		}, nil
	}

	var cert models.Certificate
	if err := w.db.WithContext(ctx).First(&cert, "id = ?", *sig.CertificateID).Error; err != nil {
		return nil, apperr.ErrNotFound
	}

	if problem := certificateProblem(&cert, time.Now()); problem != "" {
		return &VerifyReport{
			Valid:       false,
			Message:     problem,
			Certificate: &cert,
			Signature:   &sig,
		}, nil
	}

	if err := sigcrypto.VerifySignature(sig.SignatureData, doc.Hash, cert.PublicKey); err != nil {
		w.lg.Infow("signature verification failed",
			"document_id", doc.ID, "signature_id", sig.ID, "error", err)
		return &VerifyReport{
			Valid:       false,
			Message:     "la signature ne correspond pas au document",
			Certificate: &cert,
			Signature:   &sig,
		}, nil
	}

	return &VerifyReport{
		Valid:       true,
		Message:     "signature valide",
		Certificate: &cert,
		Signature:   &sig,
	}, nil
}

// certificateProblem reports why a certificate cannot vouch for a
// signature, or "" when it can.
func certificateProblem(cert *models.Certificate, now time.Time) string {
	switch {
	case cert.Status == models.CertificateRevoked:
		if cert.RevocationReason != "" {
			return fmt.Sprintf("certificat révoqué : %s", cert.RevocationReason)
		}
		return "certificat révoqué"
	case cert.Status == models.CertificateExpired || cert.IsExpired(now):
		return "certificat expiré"
	case cert.Status != models.CertificateActive:
		return fmt.Sprintf("certificat inutilisable (statut : %s)", cert.Status)
	default:
		return ""
	}
}
