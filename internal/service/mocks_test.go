package service

import (
	"context"
	"sort"
	"time"

	"hrcore/internal/gateway"
	"hrcore/internal/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// memoryApprovalStore is an in-memory ApprovalRepository. It supports
// snapshot/restore so memoryTxManager can roll a failed unit of work back the
// way a database transaction would.
type memoryApprovalStore struct {
	requests map[uuid.UUID]model.ApprovalRequest
}

func newMemoryApprovalStore() *memoryApprovalStore {
	return &memoryApprovalStore{requests: make(map[uuid.UUID]model.ApprovalRequest)}
}

func (s *memoryApprovalStore) snapshot() map[uuid.UUID]model.ApprovalRequest {
	copied := make(map[uuid.UUID]model.ApprovalRequest, len(s.requests))
	for id, req := range s.requests {
		copied[id] = req
	}
	return copied
}

func (s *memoryApprovalStore) restore(snap map[uuid.UUID]model.ApprovalRequest) {
	s.requests = snap
}

func (s *memoryApprovalStore) seed(req model.ApprovalRequest) model.ApprovalRequest {
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	s.requests[req.ID] = req
	return req
}

func (s *memoryApprovalStore) Create(_ context.Context, req *model.ApprovalRequest) error {
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	s.requests[req.ID] = *req
	return nil
}

func (s *memoryApprovalStore) FindByID(_ context.Context, id uuid.UUID) (*model.ApprovalRequest, error) {
	req, ok := s.requests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &req, nil
}

func (s *memoryApprovalStore) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.ApprovalRequest, error) {
	return s.FindByID(ctx, id)
}

func (s *memoryApprovalStore) ListByStatus(_ context.Context, status string, page, limit int) ([]model.ApprovalRequest, int64, error) {
	var matched []model.ApprovalRequest
	for _, req := range s.requests {
		if status == "" || req.Status == status {
			matched = append(matched, req)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].RequestedAt.After(matched[j].RequestedAt)
	})

	total := int64(len(matched))
	offset := (page - 1) * limit
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (s *memoryApprovalStore) ListByApplicant(_ context.Context, applicantNo int64) ([]model.ApprovalRequest, error) {
	var matched []model.ApprovalRequest
	for _, req := range s.requests {
		if req.ApplicantNo == applicantNo {
			matched = append(matched, req)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].RequestedAt.After(matched[j].RequestedAt)
	})
	return matched, nil
}

func (s *memoryApprovalStore) ListProcessedBy(_ context.Context, approverNo int64) ([]model.ApprovalRequest, error) {
	var matched []model.ApprovalRequest
	for _, req := range s.requests {
		if req.ApproverNo != nil && *req.ApproverNo == approverNo && req.Status != model.StatusPending {
			matched = append(matched, req)
		}
	}
	return matched, nil
}

func (s *memoryApprovalStore) FindOverlapping(_ context.Context, applicantNo int64, start, end time.Time) ([]model.ApprovalRequest, error) {
	var matched []model.ApprovalRequest
	for _, req := range s.requests {
		if req.ApplicantNo != applicantNo || !req.HasDateRange() {
			continue
		}
		if req.RequestType != model.RequestTypeVacation && req.RequestType != model.RequestTypeAbsence {
			continue
		}
		if req.Status != model.StatusPending && req.Status != model.StatusApproved {
			continue
		}
		if !req.StartDate.After(end) && !req.EndDate.Before(start) {
			matched = append(matched, req)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].RequestedAt.Before(matched[j].RequestedAt)
	})
	return matched, nil
}

func (s *memoryApprovalStore) HasPendingCertificate(_ context.Context, applicantNo int64, certificateType string) (bool, error) {
	for _, req := range s.requests {
		if req.ApplicantNo == applicantNo &&
			req.RequestType == model.RequestTypeCertificate &&
			req.Status == model.StatusPending &&
			req.CertificateType != nil && *req.CertificateType == certificateType {
			return true, nil
		}
	}
	return false, nil
}

func (s *memoryApprovalStore) FindApprovedLeaveOn(_ context.Context, applicantNo int64, day time.Time) (*model.ApprovalRequest, error) {
	var matched []model.ApprovalRequest
	for _, req := range s.requests {
		if req.ApplicantNo != applicantNo || req.Status != model.StatusApproved || !req.HasDateRange() {
			continue
		}
		if req.RequestType != model.RequestTypeVacation && req.RequestType != model.RequestTypeAbsence {
			continue
		}
		if !req.StartDate.After(day) && !req.EndDate.Before(day) {
			matched = append(matched, req)
		}
	}
	if len(matched) == 0 {
		return nil, nil
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].RequestedAt.Before(matched[j].RequestedAt)
	})
	return &matched[0], nil
}

func (s *memoryApprovalStore) Update(_ context.Context, req *model.ApprovalRequest) error {
	s.requests[req.ID] = *req
	return nil
}

func (s *memoryApprovalStore) Delete(_ context.Context, id uuid.UUID) error {
	delete(s.requests, id)
	return nil
}

// memoryAuditStore is an in-memory AuditRepository.
type memoryAuditStore struct {
	entries []model.AuditLog
}

func (s *memoryAuditStore) Log(_ context.Context, entry *model.AuditLog) error {
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *memoryAuditStore) List(_ context.Context, page, limit int) ([]model.AuditLog, int64, error) {
	return s.entries, int64(len(s.entries)), nil
}

// memoryTxManager snapshots both stores before running the unit of work and
// restores them when it fails, mirroring a rolled-back transaction.
type memoryTxManager struct {
	store *memoryApprovalStore
	audit *memoryAuditStore
}

func (t *memoryTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	snap := t.store.snapshot()
	auditSnap := make([]model.AuditLog, len(t.audit.entries))
	copy(auditSnap, t.audit.entries)

	if err := fn(ctx); err != nil {
		t.store.restore(snap)
		t.audit.entries = auditSnap
		return err
	}
	return nil
}

// --- Gateway mocks. Nil func fields mean the call succeeds / returns empty.

type mockDirectoryGateway struct {
	GetUsersFn        func(ctx context.Context, employeeNos []int64) ([]gateway.DirectoryUser, error)
	GetHRRoleHolderFn func(ctx context.Context) (*gateway.DirectoryUser, error)
}

func (m *mockDirectoryGateway) GetUsers(ctx context.Context, employeeNos []int64) ([]gateway.DirectoryUser, error) {
	if m.GetUsersFn != nil {
		return m.GetUsersFn(ctx, employeeNos)
	}
	return nil, nil
}

func (m *mockDirectoryGateway) GetHRRoleHolder(ctx context.Context) (*gateway.DirectoryUser, error) {
	if m.GetHRRoleHolderFn != nil {
		return m.GetHRRoleHolderFn(ctx)
	}
	return nil, nil
}

type mockVacationGateway struct {
	ApplyBalanceChangeFn func(ctx context.Context, change gateway.BalanceChange) error
	Changes              []gateway.BalanceChange
}

func (m *mockVacationGateway) ApplyBalanceChange(ctx context.Context, change gateway.BalanceChange) error {
	m.Changes = append(m.Changes, change)
	if m.ApplyBalanceChangeFn != nil {
		return m.ApplyBalanceChangeFn(ctx, change)
	}
	return nil
}

type mockCertificateGateway struct {
	SetApprovedFn         func(ctx context.Context, certificateID, approverNo int64, approverName string) error
	SetRejectedFn         func(ctx context.Context, certificateID int64, rejectComment string, approverNo int64, approverName string) error
	HasValidCertificateFn func(ctx context.Context, applicantNo int64, certificateType string) (bool, error)
}

func (m *mockCertificateGateway) SetApproved(ctx context.Context, certificateID, approverNo int64, approverName string) error {
	if m.SetApprovedFn != nil {
		return m.SetApprovedFn(ctx, certificateID, approverNo, approverName)
	}
	return nil
}

func (m *mockCertificateGateway) SetRejected(ctx context.Context, certificateID int64, rejectComment string, approverNo int64, approverName string) error {
	if m.SetRejectedFn != nil {
		return m.SetRejectedFn(ctx, certificateID, rejectComment, approverNo, approverName)
	}
	return nil
}

func (m *mockCertificateGateway) HasValidCertificate(ctx context.Context, applicantNo int64, certificateType string) (bool, error) {
	if m.HasValidCertificateFn != nil {
		return m.HasValidCertificateFn(ctx, applicantNo, certificateType)
	}
	return false, nil
}

type mockAbsenceGateway struct {
	ApproveFn func(ctx context.Context, absenceID, approverNo int64) error
	RejectFn  func(ctx context.Context, absenceID, approverNo int64, rejectComment string) error
}

func (m *mockAbsenceGateway) Approve(ctx context.Context, absenceID, approverNo int64) error {
	if m.ApproveFn != nil {
		return m.ApproveFn(ctx, absenceID, approverNo)
	}
	return nil
}

func (m *mockAbsenceGateway) Reject(ctx context.Context, absenceID, approverNo int64, rejectComment string) error {
	if m.RejectFn != nil {
		return m.RejectFn(ctx, absenceID, approverNo, rejectComment)
	}
	return nil
}

// --- Shared fixture wiring ---

type serviceFixture struct {
	svc          ApprovalService
	store        *memoryApprovalStore
	audit        *memoryAuditStore
	directory    *mockDirectoryGateway
	vacations    *mockVacationGateway
	certificates *mockCertificateGateway
	absences     *mockAbsenceGateway
}

func newServiceFixture() *serviceFixture {
	f := &serviceFixture{
		store:        newMemoryApprovalStore(),
		audit:        &memoryAuditStore{},
		directory:    &mockDirectoryGateway{},
		vacations:    &mockVacationGateway{},
		certificates: &mockCertificateGateway{},
		absences:     &mockAbsenceGateway{},
	}

	log := zap.NewNop()
	validator := NewConflictValidator(f.store, f.certificates)
	dispatcher := NewDispatcher(f.vacations, f.certificates, f.absences, f.directory, log)
	names := NewNameResolver(f.directory, log)
	tx := &memoryTxManager{store: f.store, audit: f.audit}

	f.svc = NewApprovalService(f.store, f.audit, tx, validator, dispatcher, f.directory, names, nil, log)
	return f
}

func date(value string) time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return t
}

func datePtr(value string) *time.Time {
	t := date(value)
	return &t
}

func strPtr(v string) *string { return &v }

func int64Ptr(v int64) *int64 { return &v }
