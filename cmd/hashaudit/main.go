// Command hashaudit reports accounts whose stored credential still has the
// legacy digest width. With -notify each active one is sent a reset code, and
// with -upload the CSV report is stored in MinIO.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/njprem/Apartment_APP_BackEnd/internal/config"
	"github.com/njprem/Apartment_APP_BackEnd/internal/repository/minio"
	"github.com/njprem/Apartment_APP_BackEnd/internal/repository/ports"
	"github.com/njprem/Apartment_APP_BackEnd/internal/repository/postgres"
	"github.com/njprem/Apartment_APP_BackEnd/internal/service"
	"github.com/njprem/Apartment_APP_BackEnd/internal/transport/mail"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.LoadAudit()

	var (
		dsn    = flag.String("dsn", cfg.DatabaseURL, "postgres connection string")
		csvOut = flag.String("csv", "", "write the report as CSV to this file ('-' for stdout)")
		notify = flag.Bool("notify", false, "send a password reset code to every active legacy account")
		upload = flag.Bool("upload", false, "upload the CSV report to MinIO")
		bucket = flag.String("bucket", cfg.MinIOBucketReports, "MinIO bucket for -upload")
	)
	flag.Parse()
	log.SetFlags(0)

	if *dsn == "" {
		log.Println("hashaudit: -dsn or DATABASE_URL is required")
		return 2
	}
	if *notify && !cfg.MailConfigured() {
		log.Println("hashaudit: -notify needs SMTP_HOST, SMTP_PORT and SMTP_FROM")
		return 2
	}
	if *upload && (!cfg.StorageConfigured() || *bucket == "") {
		log.Println("hashaudit: -upload needs MINIO_ENDPOINT, MINIO_ACCESS_KEY, MINIO_SECRET_KEY and a bucket")
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.New(*dsn)
	if err != nil {
		log.Printf("hashaudit: connect db: %v", err)
		return 1
	}
	defer db.Close()

	users := postgres.NewUserRepo(db)

	var storage ports.ObjectStorage
	if *upload {
		client, err := minio.NewClient(cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOUseSSL)
		if err != nil {
			log.Printf("hashaudit: minio client: %v", err)
			return 1
		}
		storage = minio.NewStorage(client, cfg.MinIOPublicURL)
	}

	var auditor *service.HashAuditService
	if *notify {
		sender := mail.NewPasswordResetMailer(cfg.Mailer())
		resets := service.NewPasswordResetService(users, postgres.NewPasswordResetRepo(db), sender, cfg.PasswordResetOTPLength, nil)
		auditor = service.NewHashAuditService(users, resets, storage)
	} else {
		auditor = service.NewHashAuditService(users, nil, storage)
	}

	report, err := auditor.Audit(ctx)
	if err != nil {
		log.Printf("hashaudit: audit: %v", err)
		return 1
	}
	fmt.Printf("accounts: %d\nlegacy credentials: %d\n", report.TotalAccounts, report.LegacyCount())
	for _, u := range report.Legacy {
		state := "active"
		if !u.IsActive {
			state = "inactive"
		}
		fmt.Printf("  %s\t%s\t%s\t%s\n", u.ID, u.Username, u.Email, state)
	}

	status := 0
	if *csvOut != "" {
		if err := writeCSV(auditor, report, *csvOut); err != nil {
			log.Printf("hashaudit: write csv: %v", err)
			status = 1
		}
	}
	if *notify {
		sent, err := auditor.Notify(ctx, report)
		fmt.Printf("reset codes sent: %d\n", sent)
		if err != nil {
			log.Printf("hashaudit: notify: %v", err)
			status = 1
		}
	}
	if *upload {
		location, err := auditor.Upload(ctx, *bucket, report)
		if err != nil {
			log.Printf("hashaudit: upload: %v", err)
			status = 1
		} else {
			fmt.Printf("report uploaded: %s\n", location)
		}
	}
	return status
}

func writeCSV(auditor *service.HashAuditService, report *service.HashAuditReport, path string) error {
	if path == "-" {
		return auditor.WriteCSV(os.Stdout, report)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := auditor.WriteCSV(f, report); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
