// Package signing implements the document lifecycle: upload, owner and
// guest signing, invitations and signature verification.
package signing

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Souley97/wolof-sign-back/internal/apperr"
	"github.com/Souley97/wolof-sign-back/internal/models"
	"github.com/Souley97/wolof-sign-back/internal/notify"
	"github.com/Souley97/wolof-sign-back/internal/services/pdfstamp"
	"github.com/Souley97/wolof-sign-back/internal/services/quota"
	"github.com/Souley97/wolof-sign-back/internal/services/sigcrypto"
	"github.com/Souley97/wolof-sign-back/internal/services/vault"
)

// Placeholder recorded as SignatureData for drawn signatures, which carry
// no cryptographic material of their own.
const drawnSignatureLabel = "Signature électronique"

type Workflow struct {
	db          *gorm.DB
	stamper     *pdfstamp.Stamper
	vault       *vault.Vault
	guard       *quota.Guard
	mailer      *notify.Mailer
	mediaRoot   string
	frontendURL string
	lg          *zap.SugaredLogger
}

func NewWorkflow(db *gorm.DB, stamper *pdfstamp.Stamper, v *vault.Vault, guard *quota.Guard,
	mailer *notify.Mailer, mediaRoot, frontendURL string, lg *zap.SugaredLogger) *Workflow {
	return &Workflow{
		db: db, stamper: stamper, vault: v, guard: guard,
		mailer: mailer, mediaRoot: mediaRoot, frontendURL: frontendURL, lg: lg,
	}
}

// CreateDocument stores an uploaded PDF under the media tree and records
// it. The SHA-256 is computed while copying; a hash already on file means
// the same bytes were uploaded before and the upload is rejected.
func (w *Workflow) CreateDocument(ctx context.Context, userID, title, filename string, r io.Reader) (*models.Document, error) {
	if !strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return nil, apperr.Validation("only PDF files are accepted")
	}

	head := make([]byte, 5)
	if _, err := io.ReadFull(r, head); err != nil || string(head) != "%PDF-" {
		return nil, apperr.Validation("file does not look like a PDF")
	}

	dir := filepath.Join(w.mediaRoot, "documents")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	path := filepath.Join(dir, fmt.Sprintf("%s_%s", uuid.New(), filepath.Base(filename)))

	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	hash, err := sigcrypto.HashDocument(io.TeeReader(io.MultiReader(strings.NewReader(string(head)), r), f))
	f.Close()
	if err != nil {
		os.Remove(path)
		return nil, err
	}

	var existing models.Document
	if err := w.db.WithContext(ctx).Where("hash = ?", hash).First(&existing).Error; err == nil {
		os.Remove(path)
		return nil, apperr.Validation("an identical document already exists")
	}

	if strings.TrimSpace(title) == "" {
		title = strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	}
	doc := &models.Document{
		Title:      title,
		FilePath:   path,
		UploadedBy: userID,
		Status:     models.DocumentPending,
		Hash:       hash,
	}
	if err := w.db.WithContext(ctx).Create(doc).Error; err != nil {
		os.Remove(path)
		return nil, err
	}

	w.audit(ctx, &userID, &doc.ID, "document.uploaded", models.Meta(map[string]any{
		"title": doc.Title, "hash": hash,
	}))
	return doc, nil
}

// SignRequest carries everything needed to stamp a document as its owner.
// Width and Height of zero take the standard stamp size.
type SignRequest struct {
	DocumentID    string
	UserID        string
	CertificateID string
	Signature     string
	Page          int
	X, Y          float64
	Width, Height float64
}

// SignPDF signs a document the caller owns: stamp the drawn signature onto
// the PDF, record the signature, flip the document to signed and charge the
// quota, all in one transaction.
func (w *Workflow) SignPDF(ctx context.Context, req SignRequest) (*models.Document, *models.Signature, error) {
	placement, err := validatePlacement(req.Page, req.X, req.Y, req.Width, req.Height)
	if err != nil {
		return nil, nil, err
	}
	if strings.TrimSpace(req.Signature) == "" {
		return nil, nil, apperr.Validation("signature data is required")
	}

	doc, err := w.ownedDocument(ctx, req.DocumentID, req.UserID)
	if err != nil {
		return nil, nil, err
	}

	var certID *string
	var signatureData = drawnSignatureLabel
	if req.CertificateID != "" {
		cert, err := w.usableCertificate(ctx, req.CertificateID, req.UserID)
		if err != nil {
			return nil, nil, err
		}
		signed, err := sigcrypto.SignHash(doc.Hash, cert.PrivateKey)
		if err != nil {
			return nil, nil, err
		}
		signatureData = signed
		certID = &cert.ID
	}

	sub, err := w.guard.Authorize(ctx, req.UserID)
	if err != nil {
		return nil, nil, err
	}

	sig := &models.Signature{
		DocumentID:     doc.ID,
		SignerID:       &req.UserID,
		CertificateID:  certID,
		SignatureData:  signatureData,
		DrawnSignature: req.Signature,
		PositionX:      placement.X,
		PositionY:      placement.Y,
		Page:           placement.Page,
	}
	if err := w.finalize(ctx, doc, sig, req.Signature, placement, sub.ID); err != nil {
		return nil, nil, err
	}

	w.notifyOwnerSigned(ctx, req.UserID, doc)
	return doc, sig, nil
}

// SignWithSaved signs using a signature from the caller's vault instead of
// a freshly drawn one.
func (w *Workflow) SignWithSaved(ctx context.Context, req SignRequest, savedSignatureID string) (*models.Document, *models.Signature, error) {
	imageData, saved, err := w.vault.GetDecrypted(ctx, req.UserID, savedSignatureID)
	if err != nil {
		return nil, nil, err
	}
	req.Signature = imageData
	doc, sig, err := w.SignPDF(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	if err := w.db.WithContext(ctx).Model(sig).UpdateColumn("saved_signature_id", saved.ID).Error; err != nil {
		w.lg.Warnw("could not link saved signature", "signature_id", sig.ID, "error", err)
	} else {
		sig.SavedSignatureID = &saved.ID
	}
	return doc, sig, nil
}

// finalize runs the transactional tail of every signing path: stamp the
// PDF, create the signature row, mark the document signed and, when a
// subscription is charged, consume one quota unit. The stamped file is
// removed again if any later step rolls the transaction back.
func (w *Workflow) finalize(ctx context.Context, doc *models.Document, sig *models.Signature,
	imageData string, placement pdfstamp.Placement, chargeSubID string) error {
	var signedPath string
	err := w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		signedPath, err = w.stamper.SignWithBase64(doc.FilePath, imageData, placement)
		if err != nil {
			return err
		}
		if err := tx.Model(doc).Updates(map[string]any{
			"file_path": signedPath,
			"status":    models.DocumentSigned,
		}).Error; err != nil {
			return err
		}
		if err := tx.Create(sig).Error; err != nil {
			return err
		}
		if chargeSubID != "" {
			if err := w.guard.Consume(tx, chargeSubID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if signedPath != "" {
			os.Remove(signedPath)
		}
		return err
	}
	doc.FilePath = signedPath
	doc.Status = models.DocumentSigned

	w.audit(ctx, sig.SignerID, &doc.ID, "document.signed", models.Meta(map[string]any{
		"signature_id": sig.ID, "page": sig.Page,
	}))
	return nil
}

func (w *Workflow) ownedDocument(ctx context.Context, documentID, userID string) (*models.Document, error) {
	var doc models.Document
	if err := w.db.WithContext(ctx).First(&doc, "id = ?", documentID).Error; err != nil {
		return nil, apperr.ErrNotFound
	}
	if doc.UploadedBy != userID {
		return nil, apperr.ErrForbidden
	}
	return &doc, nil
}

func (w *Workflow) usableCertificate(ctx context.Context, certID, userID string) (*models.Certificate, error) {
	var cert models.Certificate
	if err := w.db.WithContext(ctx).First(&cert, "id = ? AND user_id = ?", certID, userID).Error; err != nil {
		return nil, apperr.ErrNotFound
	}
	if problem := certificateProblem(&cert, time.Now()); problem != "" {
		return nil, apperr.Validation("%s", problem)
	}
	return &cert, nil
}

// validatePlacement rejects malformed coordinates before any file work.
// The page index is only range-checked against the real PDF later, by the
// stamper.
func validatePlacement(page int, x, y, width, height float64) (pdfstamp.Placement, error) {
	if page < 0 {
		return pdfstamp.Placement{}, apperr.Validation("page must not be negative")
	}
	if x < 0 || y < 0 {
		return pdfstamp.Placement{}, apperr.Validation("signature position must not be negative")
	}
	if width == 0 && height == 0 {
		width, height = 200, 100
	}
	if width <= 0 || height <= 0 {
		return pdfstamp.Placement{}, apperr.Validation("signature size must be positive")
	}
	return pdfstamp.Placement{Page: page, X: x, Y: y, Width: width, Height: height}, nil
}

// Documents lists everything the user uploaded, newest first.
func (w *Workflow) Documents(ctx context.Context, userID string) ([]models.Document, error) {
	var docs []models.Document
	err := w.db.WithContext(ctx).
		Where("uploaded_by = ?", userID).
		Order("created_at DESC").
		Find(&docs).Error
	return docs, err
}

// Document fetches one owned document with its signatures.
func (w *Workflow) Document(ctx context.Context, userID, documentID string) (*models.Document, []models.Signature, error) {
	doc, err := w.ownedDocument(ctx, documentID, userID)
	if err != nil {
		return nil, nil, err
	}
	var sigs []models.Signature
	if err := w.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("timestamp ASC").
		Find(&sigs).Error; err != nil {
		return nil, nil, err
	}
	return doc, sigs, nil
}

func (w *Workflow) audit(ctx context.Context, userID, documentID *string, action string, meta models.JSONB) {
	entry := &models.AuditLog{UserID: userID, DocumentID: documentID, Action: action, Metadata: meta}
	if err := w.db.WithContext(ctx).Create(entry).Error; err != nil {
		w.lg.Warnw("audit write failed", "action", action, "error", err)
	}
}

func (w *Workflow) notifyOwnerSigned(ctx context.Context, userID string, doc *models.Document) {
	var user models.User
	if err := w.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return
	}
	subject := fmt.Sprintf("Document signé : %s", doc.Title)
	body := fmt.Sprintf("Bonjour %s,\n\nVotre document « %s » a bien été signé.\n\nWolof Sign",
		user.FullName, doc.Title)
	go w.mailer.Send(subject, body, []string{user.Email}, "")
}
