package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/njprem/Apartment_APP_BackEnd/internal/domain"
	"github.com/njprem/Apartment_APP_BackEnd/internal/repository/ports"
	"github.com/njprem/Apartment_APP_BackEnd/internal/util"
)

type resetRequester interface {
	RequestReset(ctx context.Context, email string) error
}

// HashAuditReport lists the accounts still holding a legacy-width credential.
type HashAuditReport struct {
	GeneratedAt   time.Time
	TotalAccounts int64
	Legacy        []domain.User
}

func (r *HashAuditReport) LegacyCount() int {
	return len(r.Legacy)
}

type HashAuditService struct {
	users   ports.UserRepository
	resets  resetRequester
	storage ports.ObjectStorage
	now     func() time.Time
}

// NewHashAuditService accepts nil resets or storage when notification or
// uploads are not needed.
func NewHashAuditService(users ports.UserRepository, resets resetRequester, storage ports.ObjectStorage) *HashAuditService {
	return &HashAuditService{users: users, resets: resets, storage: storage, now: time.Now}
}

func (s *HashAuditService) Audit(ctx context.Context) (*HashAuditReport, error) {
	total, err := s.users.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count accounts: %w", err)
	}
	candidates, err := s.users.ListByHashLength(ctx, []int{util.LegacyDigestWidth})
	if err != nil {
		return nil, fmt.Errorf("list legacy credentials: %w", err)
	}
	legacy := make([]domain.User, 0, len(candidates))
	for _, u := range candidates {
		if util.NeedsRehash(u.PasswordHash) {
			legacy = append(legacy, u)
		}
	}
	return &HashAuditReport{GeneratedAt: s.now().UTC(), TotalAccounts: total, Legacy: legacy}, nil
}

// Notify sends a reset code to every active legacy account and returns how
// many requests went through.
func (s *HashAuditService) Notify(ctx context.Context, report *HashAuditReport) (int, error) {
	if s.resets == nil {
		return 0, errors.New("hash audit: reset notifications are not configured")
	}
	var (
		sent int
		errs []error
	)
	for _, u := range report.Legacy {
		if !u.IsActive {
			continue
		}
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := s.resets.RequestReset(ctx, u.Email); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", u.ID, err))
			continue
		}
		sent++
	}
	return sent, errors.Join(errs...)
}

var auditHeader = []string{"user_id", "username", "email", "role", "is_active", "format", "created_at"}

func (s *HashAuditService) WriteCSV(w io.Writer, report *HashAuditReport) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(auditHeader); err != nil {
		return err
	}
	for _, u := range report.Legacy {
		record := []string{
			u.ID.String(),
			u.Username,
			u.Email,
			string(u.Role),
			strconv.FormatBool(u.IsActive),
			util.DetectHashFormat(u.PasswordHash).String(),
			u.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Upload stores the CSV rendering of report in bucket and returns its location.
func (s *HashAuditService) Upload(ctx context.Context, bucket string, report *HashAuditReport) (string, error) {
	if s.storage == nil {
		return "", errors.New("hash audit: object storage is not configured")
	}
	var buf bytes.Buffer
	if err := s.WriteCSV(&buf, report); err != nil {
		return "", err
	}
	objectName := fmt.Sprintf("hash-audit/%s.csv", report.GeneratedAt.Format("20060102T150405Z"))
	return s.storage.Upload(ctx, bucket, objectName, "text/csv", bytes.NewReader(buf.Bytes()), int64(buf.Len()))
}
