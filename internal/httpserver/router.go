package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Souley97/wolof-sign-back/internal/auth"
	"github.com/Souley97/wolof-sign-back/internal/httpserver/handlers"
	"github.com/Souley97/wolof-sign-back/internal/services/signing"
	"github.com/Souley97/wolof-sign-back/internal/services/vault"
)

func NewRouter(db *gorm.DB, wf *signing.Workflow, v *vault.Vault, lg *zap.SugaredLogger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer, middleware.Logger)

	r.Post("/v1/auth/login", handlers.Login(db, lg))
	// Guest signing is public: the invitation token is the credential.
	r.Post("/v1/documents/{id}/sign_pdf_with_token", handlers.SignPDFWithToken(wf, lg))
	r.Get("/v1/plans", handlers.ListPlans(db, lg))

	r.Group(func(protected chi.Router) {
		protected.Use(auth.JWTAuth(db))
		protected.Get("/v1/me", handlers.Me(db, lg))
		protected.Post("/v1/auth/logout", handlers.Logout(db))

		protected.Post("/v1/documents", handlers.UploadDocument(wf, lg))
		protected.Get("/v1/documents", handlers.ListDocuments(wf, lg))
		protected.Get("/v1/documents/{id}", handlers.GetDocument(wf, lg))
		protected.Get("/v1/documents/{id}/download", handlers.DownloadDocument(wf, lg))
		protected.Post("/v1/documents/{id}/sign_pdf", handlers.SignPDF(wf, lg))
		protected.Get("/v1/documents/{id}/verify", handlers.VerifySignature(wf, lg))

		protected.Post("/v1/documents/{id}/signers", handlers.InviteSigner(wf, lg))
		protected.Get("/v1/documents/{id}/signers", handlers.ListSigners(wf, lg))
		protected.Post("/v1/documents/{id}/signers/{signer_id}/remind", handlers.SendReminder(wf, lg))
		protected.Delete("/v1/documents/{id}/signers/{signer_id}", handlers.CancelInvitation(wf, lg))

		protected.Post("/v1/saved_signatures", handlers.CreateSavedSignature(v, lg))
		protected.Get("/v1/saved_signatures", handlers.ListSavedSignatures(v, lg))
		protected.Get("/v1/saved_signatures/{id}/data", handlers.GetSavedSignatureData(v, lg))
		protected.Post("/v1/saved_signatures/{id}/default", handlers.SetDefaultSavedSignature(v, lg))
		protected.Delete("/v1/saved_signatures/{id}", handlers.DeleteSavedSignature(v, lg))

		protected.Post("/v1/certificates", handlers.GenerateCertificate(db, lg))
		protected.Get("/v1/certificates", handlers.ListCertificates(db, lg))
		protected.Post("/v1/certificates/{id}/revoke", handlers.RevokeCertificate(db, lg))

		protected.Get("/v1/subscription", handlers.MySubscription(db, lg))
		protected.Get("/v1/subscription/payments", handlers.MyPayments(db, lg))
		protected.Get("/v1/stats", handlers.UserStats(db, lg))

		protected.Group(func(admin chi.Router) {
			admin.Use(auth.RequireRole("Administrator"))
			admin.Get("/v1/admin/stats", handlers.AdminStats(db, lg))
		})
	})
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	return r
}
