package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/njprem/Apartment_APP_BackEnd/internal/domain"
	"github.com/njprem/Apartment_APP_BackEnd/internal/util"
)

type fakeResetRequester struct {
	emails []string
	failOn map[string]error
}

func (f *fakeResetRequester) RequestReset(ctx context.Context, email string) error {
	f.emails = append(f.emails, email)
	return f.failOn[email]
}

func TestHashAuditFindsLegacyCredentials(t *testing.T) {
	ctx := context.Background()
	modern := newResident(t, "modern", "modern@example.com", "secret1")
	legacy := newResident(t, "legacy", "legacy@example.com", "secret1")
	legacy.PasswordHash = util.LegacyDigest("secret1")
	repo := newFakeUserRepo(modern, legacy)

	svc := NewHashAuditService(repo, nil, nil)
	svc.now = func() time.Time { return time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC) }

	report, err := svc.Audit(ctx)
	if err != nil {
		t.Fatalf("audit: %v", err)
	}
	if report.TotalAccounts != 2 || report.LegacyCount() != 1 || report.Legacy[0].ID != legacy.ID {
		t.Fatalf("unexpected report: total=%d legacy=%+v", report.TotalAccounts, report.Legacy)
	}
	if len(repo.listLengths) != 1 || repo.listLengths[0] != util.LegacyDigestWidth {
		t.Fatalf("expected lookup by legacy width, got %v", repo.listLengths)
	}

	var buf bytes.Buffer
	if err := svc.WriteCSV(&buf, report); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one row, got %q", buf.String())
	}
	if lines[0] != "user_id,username,email,role,is_active,format,created_at" {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if !strings.Contains(lines[1], "legacy@example.com") || !strings.Contains(lines[1], ",legacy,") {
		t.Fatalf("unexpected row %q", lines[1])
	}
}

func TestHashAuditAuditError(t *testing.T) {
	repo := newFakeUserRepo()
	repo.countErr = errors.New("db down")
	if _, err := NewHashAuditService(repo, nil, nil).Audit(context.Background()); err == nil {
		t.Fatalf("expected count failure to surface")
	}
}

func TestHashAuditNotify(t *testing.T) {
	ctx := context.Background()
	active := newResident(t, "a", "a@example.com", "secret1")
	inactive := newResident(t, "b", "b@example.com", "secret1")
	inactive.IsActive = false
	failing := newResident(t, "c", "c@example.com", "secret1")
	report := &HashAuditReport{Legacy: []domain.User{*active, *inactive, *failing}}

	requester := &fakeResetRequester{failOn: map[string]error{"c@example.com": ErrDeliveryFailed}}
	svc := NewHashAuditService(newFakeUserRepo(), requester, nil)

	sent, err := svc.Notify(ctx, report)
	if sent != 1 {
		t.Fatalf("expected one notification, got %d", sent)
	}
	if !errors.Is(err, ErrDeliveryFailed) {
		t.Fatalf("expected delivery failure to be reported, got %v", err)
	}
	if len(requester.emails) != 2 {
		t.Fatalf("inactive accounts must be skipped, requested %v", requester.emails)
	}

	if _, err := NewHashAuditService(newFakeUserRepo(), nil, nil).Notify(ctx, report); err == nil {
		t.Fatalf("expected error without a reset requester")
	}
}

func TestHashAuditUpload(t *testing.T) {
	ctx := context.Background()
	storage := &fakeStorage{}
	svc := NewHashAuditService(newFakeUserRepo(), nil, storage)
	report := &HashAuditReport{GeneratedAt: time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)}

	location, err := svc.Upload(ctx, "reports", report)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if location != "reports/hash-audit/20250301T080000Z.csv" {
		t.Fatalf("unexpected location %q", location)
	}
	if len(storage.uploaded) != 1 || storage.uploaded[0].contentType != "text/csv" {
		t.Fatalf("unexpected uploads %+v", storage.uploaded)
	}
	if !strings.HasPrefix(storage.uploaded[0].body, "user_id,") {
		t.Fatalf("expected csv body, got %q", storage.uploaded[0].body)
	}

	if _, err := NewHashAuditService(newFakeUserRepo(), nil, nil).Upload(ctx, "reports", report); err == nil {
		t.Fatalf("expected error without storage")
	}
}
