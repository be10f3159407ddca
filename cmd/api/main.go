package main

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fernet/fernet-go"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Souley97/wolof-sign-back/internal/auth"
	"github.com/Souley97/wolof-sign-back/internal/config"
	"github.com/Souley97/wolof-sign-back/internal/httpserver"
	"github.com/Souley97/wolof-sign-back/internal/logger"
	"github.com/Souley97/wolof-sign-back/internal/models"
	"github.com/Souley97/wolof-sign-back/internal/notify"
	"github.com/Souley97/wolof-sign-back/internal/services/pdfstamp"
	"github.com/Souley97/wolof-sign-back/internal/services/quota"
	"github.com/Souley97/wolof-sign-back/internal/services/sigcrypto"
	"github.com/Souley97/wolof-sign-back/internal/services/signing"
	"github.com/Souley97/wolof-sign-back/internal/services/vault"
)

func main() {
	_ = godotenv.Load()
	lg := logger.New()
	defer lg.Sync()

	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		lg.Fatalw("DATABASE_URL is empty")
	}
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		lg.Fatalw("db connect failed", "error", err)
	}
	if err := db.AutoMigrate(
		&models.Role{}, &models.User{}, &models.Session{}, &models.AuditLog{},
		&models.Document{}, &models.Signature{}, &models.SavedSignature{}, &models.DocumentSigner{},
		&models.Certificate{}, &models.Plan{}, &models.Subscription{}, &models.PaymentHistory{},
	); err != nil {
		lg.Fatalw("automigrate failed", "error", err)
	}
	seedRoles(db)
	seedPlans(db, lg)
	seedDefaultAdmin(db, lg)

	key := cfg.SignatureEncryptionKey
	if key == "" {
		// Saved signatures encrypted under an ephemeral key become
		// unreadable after a restart; fine for development only.
		var k fernet.Key
		if err := k.Generate(); err != nil {
			lg.Fatalw("could not generate encryption key", "error", err)
		}
		key = k.Encode()
		lg.Warnw("SIGNATURE_ENCRYPTION_KEY is empty, using an ephemeral key")
	}
	enc, err := sigcrypto.NewEncryptor(key)
	if err != nil {
		lg.Fatalw("invalid signature encryption key", "error", err)
	}

	smtpPort, _ := strconv.Atoi(cfg.SMTPPort)
	mailer := notify.NewMailer(cfg.SMTPHost, smtpPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.FromEmail, lg)
	stamper := pdfstamp.NewStamper(cfg.MediaRoot, lg)
	sigVault := vault.New(db, enc, lg)
	guard := quota.New(db, lg)
	wf := signing.NewWorkflow(db, stamper, sigVault, guard, mailer, cfg.MediaRoot, cfg.FrontendURL, lg)

	c := cron.New()
	c.AddFunc("@daily", func() { wf.ExpirePendingInvitations(context.Background()) })
	c.AddFunc("@daily", func() { guard.RenewFreePeriods(context.Background()) })
	c.Start()
	defer c.Stop()

	router := httpserver.NewRouter(db, wf, sigVault, lg)
	lg.Infow("listening", "port", cfg.HTTPPort)
	if err := http.ListenAndServe(":"+cfg.HTTPPort, router); err != nil {
		log.Fatal(err)
	}
}

func seedRoles(db *gorm.DB) {
	db.Exec("INSERT INTO roles(name) VALUES ('Administrator') ON CONFLICT DO NOTHING")
	db.Exec("INSERT INTO roles(name) VALUES ('User') ON CONFLICT DO NOTHING")
}

func seedPlans(db *gorm.DB, lg *zap.SugaredLogger) {
	plans := []models.Plan{
		{
			Name: "Découverte", PlanType: models.PlanDecouverte,
			Description:   "Pour essayer la signature électronique",
			MaxSignatures: 5, MaxSigners: 1, StorageLimit: 100 << 20, RetentionDays: 30,
			SupportLevel: "email",
		},
		{
			Name: "Professionnel", PlanType: models.PlanProfessionnel,
			Description:  "Pour les indépendants et petites équipes",
			PriceMonthly: 15000, PriceAnnually: 150000,
			MaxSignatures: 50, MaxSigners: 5, StorageLimit: 5 << 30, RetentionDays: 365,
			SupportLevel: "priority",
		},
		{
			Name: "Entreprise", PlanType: models.PlanEntreprise,
			Description:  "Signatures illimitées pour les organisations",
			PriceMonthly: 45000, PriceAnnually: 450000,
			MaxSignatures: 0, MaxSigners: 0, StorageLimit: 50 << 30, RetentionDays: 1825,
			HasAPIAccess: true, SupportLevel: "dedicated",
		},
		{
			Name: "Gouvernement", PlanType: models.PlanGouvernement,
			Description:   "Offre dédiée aux administrations",
			MaxSignatures: 0, MaxSigners: 0, StorageLimit: 100 << 30, RetentionDays: 3650,
			HasAPIAccess: true, SupportLevel: "dedicated",
		},
	}
	for _, p := range plans {
		var existing models.Plan
		if err := db.Where("plan_type = ?", p.PlanType).First(&existing).Error; err == nil {
			continue
		}
		p.IsActive = true
		if err := db.Create(&p).Error; err != nil {
			lg.Warnw("plan seed failed", "plan", p.PlanType, "error", err)
		}
	}
}

func seedDefaultAdmin(db *gorm.DB, lg *zap.SugaredLogger) {
	var count int64
	db.Model(&models.User{}).Where("LOWER(email)=?", "admin@wolofsign.local").Count(&count)
	if count > 0 {
		return
	}
	hash, _ := auth.HashPassword("changeme")
	u := models.User{
		Email:        strings.ToLower("admin@wolofsign.local"),
		FullName:     "Administrateur",
		PasswordHash: hash,
		IsActive:     true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := db.Create(&u).Error; err == nil {
		var adminRole models.Role
		if err := db.First(&adminRole, "name = 'Administrator'").Error; err == nil {
			_ = db.Model(&u).Association("Roles").Append(&adminRole)
		}
	}
	lg.Infow("seeded default admin", "email", "admin@wolofsign.local")
}
