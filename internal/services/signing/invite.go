package signing

import (
	"context"
	"fmt"
	"net/mail"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Souley97/wolof-sign-back/internal/apperr"
	"github.com/Souley97/wolof-sign-back/internal/models"
)

// Invitations are valid for two weeks unless the owner sets a deadline.
const defaultInvitationTTL = 14 * 24 * time.Hour

// InviteRequest describes one third-party signer to invite.
type InviteRequest struct {
	DocumentID string
	OwnerID    string
	Email      string
	FullName   string
	Message    string
	ExpiresAt  *time.Time
	Page       int
	X, Y       float64
}

// InviteSigner creates a tokenized invitation for a guest to sign an owned
// document and emails them the signing link. Mail failure does not undo the
// invitation; the second return value reports whether the email went out.
func (w *Workflow) InviteSigner(ctx context.Context, req InviteRequest) (*models.DocumentSigner, bool, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, false, apperr.Validation("a valid email address is required")
	}
	if strings.TrimSpace(req.FullName) == "" {
		return nil, false, apperr.Validation("the signer's full name is required")
	}

	doc, err := w.ownedDocument(ctx, req.DocumentID, req.OwnerID)
	if err != nil {
		return nil, false, err
	}
	if err := w.guard.CheckSignerLimit(ctx, req.OwnerID, doc.ID); err != nil {
		return nil, false, err
	}

	var existing models.DocumentSigner
	if err := w.db.WithContext(ctx).
		Where("document_id = ? AND email = ?", doc.ID, email).
		First(&existing).Error; err == nil {
		return nil, false, apperr.Validation("%s has already been invited to sign this document", email)
	}

	now := time.Now()
	expiresAt := now.Add(defaultInvitationTTL)
	if req.ExpiresAt != nil {
		if !req.ExpiresAt.After(now) {
			return nil, false, apperr.Validation("expiration must be in the future")
		}
		expiresAt = *req.ExpiresAt
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	signer := &models.DocumentSigner{
		DocumentID:          doc.ID,
		Email:               email,
		FullName:            strings.TrimSpace(req.FullName),
		Token:               uuid.NewString(),
		Status:              models.SignerPending,
		InvitationSentAt:    now,
		InvitationExpiresAt: expiresAt,
		PositionX:           req.X,
		PositionY:           req.Y,
		Page:                page,
		Message:             req.Message,
	}

	// Link the invitation to an account when the address is already
	// registered, so the guest's history shows up once they log in.
	var user models.User
	if err := w.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err == nil {
		signer.UserID = &user.ID
	}

	if err := w.db.WithContext(ctx).Create(signer).Error; err != nil {
		return nil, false, err
	}

	w.audit(ctx, &req.OwnerID, &doc.ID, "signer.invited", models.Meta(map[string]any{
		"email": email, "expires_at": expiresAt,
	}))

	sent := w.sendInvitationMail(doc, signer)
	return signer, sent, nil
}

func (w *Workflow) signingLink(token string) string {
	return fmt.Sprintf("%s/sign/%s", strings.TrimRight(w.frontendURL, "/"), token)
}

func (w *Workflow) sendInvitationMail(doc *models.Document, signer *models.DocumentSigner) bool {
	subject := fmt.Sprintf("Invitation à signer : %s", doc.Title)
	link := w.signingLink(signer.Token)
	body := fmt.Sprintf(
		"Bonjour %s,\n\nVous êtes invité(e) à signer le document « %s ».\n\n%s\n\nSignez ici : %s\n\nCe lien expire le %s.\n\nWolof Sign",
		signer.FullName, doc.Title, signer.Message, link,
		signer.InvitationExpiresAt.Format("02/01/2006"))
	return w.mailer.Send(subject, body, []string{signer.Email}, "")
}

// SendReminder re-sends the signing link to a pending signer.
func (w *Workflow) SendReminder(ctx context.Context, ownerID, documentID, signerID string) (*models.DocumentSigner, error) {
	doc, err := w.ownedDocument(ctx, documentID, ownerID)
	if err != nil {
		return nil, err
	}
	var signer models.DocumentSigner
	if err := w.db.WithContext(ctx).
		First(&signer, "id = ? AND document_id = ?", signerID, doc.ID).Error; err != nil {
		return nil, apperr.ErrNotFound
	}
	if signer.Status != models.SignerPending {
		return nil, apperr.Validation("only pending signers can be reminded")
	}
	if signer.IsExpired(time.Now()) {
		return nil, apperr.ErrInvitationExpired
	}

	if !w.sendInvitationMail(doc, &signer) {
		return nil, apperr.Validation("reminder email could not be sent")
	}

	now := time.Now()
	if err := w.db.WithContext(ctx).Model(&signer).Updates(map[string]any{
		"reminder_sent_at": now,
		"reminder_count":   gorm.Expr("reminder_count + 1"),
	}).Error; err != nil {
		return nil, err
	}
	signer.ReminderSentAt = &now
	signer.ReminderCount++
	return &signer, nil
}

// CancelInvitation marks a pending invitation as expired, which invalidates
// its token. A signature already made cannot be cancelled.
func (w *Workflow) CancelInvitation(ctx context.Context, ownerID, documentID, signerID string) error {
	doc, err := w.ownedDocument(ctx, documentID, ownerID)
	if err != nil {
		return err
	}
	var signer models.DocumentSigner
	if err := w.db.WithContext(ctx).
		First(&signer, "id = ? AND document_id = ?", signerID, doc.ID).Error; err != nil {
		return apperr.ErrNotFound
	}
	if signer.Status == models.SignerSigned {
		return apperr.Validation("this signer has already signed")
	}
	if err := w.db.WithContext(ctx).Model(&signer).
		UpdateColumn("status", models.SignerExpired).Error; err != nil {
		return err
	}
	w.audit(ctx, &ownerID, &doc.ID, "signer.cancelled", models.Meta(map[string]any{
		"signer_id": signer.ID, "email": signer.Email,
	}))
	return nil
}

// ListSigners returns the invited signers of an owned document.
func (w *Workflow) ListSigners(ctx context.Context, ownerID, documentID string) ([]models.DocumentSigner, error) {
	if _, err := w.ownedDocument(ctx, documentID, ownerID); err != nil {
		return nil, err
	}
	var signers []models.DocumentSigner
	err := w.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("created_at ASC").
		Find(&signers).Error
	return signers, err
}

// GuestSign signs a document through an invitation token. The token is the
// sole credential; no quota is charged since the owner already paid for the
// document. Stamp, signature row, signer status and document status all
// commit or roll back together.
func (w *Workflow) GuestSign(ctx context.Context, documentID, token, imageData string, page int, x, y float64) (*models.Document, *models.Signature, error) {
	if strings.TrimSpace(imageData) == "" {
		return nil, nil, apperr.Validation("signature data is required")
	}

	var signer models.DocumentSigner
	if err := w.db.WithContext(ctx).
		First(&signer, "token = ? AND document_id = ?", token, documentID).Error; err != nil {
		return nil, nil, apperr.Validation("invalid signing token")
	}
	if signer.Status != models.SignerPending {
		return nil, nil, apperr.Validation("this invitation is no longer open (status: %s)", signer.Status)
	}
	if signer.IsExpired(time.Now()) {
		return nil, nil, apperr.ErrInvitationExpired
	}

	var doc models.Document
	if err := w.db.WithContext(ctx).First(&doc, "id = ?", documentID).Error; err != nil {
		return nil, nil, apperr.ErrNotFound
	}

	// The invitation's stored position wins unless the guest moved the
	// stamp in the signing UI.
	if page < 1 && x == 0 && y == 0 {
		page, x, y = signer.Page, signer.PositionX, signer.PositionY
	}
	if page < 1 {
		page = 1
	}
	placement, err := validatePlacement(page-1, x, y, 200, 100)
	if err != nil {
		return nil, nil, err
	}

	sig := &models.Signature{
		DocumentID:     doc.ID,
		SignerID:       signer.UserID,
		SignatureData:  drawnSignatureLabel,
		DrawnSignature: imageData,
		PositionX:      placement.X,
		PositionY:      placement.Y,
		Page:           placement.Page,
	}

	now := time.Now()
	var signedPath string
	err = w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		signedPath, err = w.stamper.SignWithBase64(doc.FilePath, imageData, placement)
		if err != nil {
			return err
		}
		if err := tx.Model(&doc).Updates(map[string]any{
			"file_path": signedPath,
			"status":    models.DocumentSigned,
		}).Error; err != nil {
			return err
		}
		if err := tx.Create(sig).Error; err != nil {
			return err
		}
		return tx.Model(&signer).Updates(map[string]any{
			"status":    models.SignerSigned,
			"signed_at": now,
		}).Error
	})
	if err != nil {
		if signedPath != "" {
			os.Remove(signedPath)
		}
		return nil, nil, err
	}
	doc.FilePath = signedPath
	doc.Status = models.DocumentSigned

	w.audit(ctx, signer.UserID, &doc.ID, "document.guest_signed", models.Meta(map[string]any{
		"signer_email": signer.Email, "signature_id": sig.ID,
	}))
	w.notifyOwnerGuestSigned(ctx, &doc, &signer)
	return &doc, sig, nil
}

func (w *Workflow) notifyOwnerGuestSigned(ctx context.Context, doc *models.Document, signer *models.DocumentSigner) {
	var owner models.User
	if err := w.db.WithContext(ctx).First(&owner, "id = ?", doc.UploadedBy).Error; err != nil {
		return
	}
	subject := fmt.Sprintf("%s a signé votre document", signer.FullName)
	body := fmt.Sprintf("Bonjour %s,\n\n%s (%s) a signé le document « %s ».\n\nWolof Sign",
		owner.FullName, signer.FullName, signer.Email, doc.Title)
	go w.mailer.Send(subject, body, []string{owner.Email}, "")
}

// ExpirePendingInvitations flips pending invitations past their deadline to
// expired. Run daily from cron.
func (w *Workflow) ExpirePendingInvitations(ctx context.Context) {
	res := w.db.WithContext(ctx).Model(&models.DocumentSigner{}).
		Where("status = ? AND invitation_expires_at <= ?", models.SignerPending, time.Now()).
		UpdateColumn("status", models.SignerExpired)
	if res.Error != nil {
		w.lg.Errorw("invitation expiry sweep failed", "error", res.Error)
		return
	}
	if res.RowsAffected > 0 {
		w.lg.Infow("expired stale invitations", "count", res.RowsAffected)
	}
}
