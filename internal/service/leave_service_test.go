package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/faculty-portal-api/internal/dto"
	"github.com/noah-isme/faculty-portal-api/internal/models"
	appErrors "github.com/noah-isme/faculty-portal-api/pkg/errors"
)

func newLeaveFixture(leaves ...*models.LeaveRequest) (*LeaveService, *fakeLeaveRepo, *fakeAccountRepo, *fakeDispatcher) {
	accounts := newFakeAccountRepo(
		&models.Account{ID: "admin-1", Name: "Root", Email: "root@uni.edu", Role: models.RoleAdmin, IsApproved: true},
		&models.Account{ID: "lec-1", Name: "Ada", Email: "ada@uni.edu", Role: models.RoleLecturer, IsApproved: true},
	)
	repo := newFakeLeaveRepo(accounts, leaves...)
	dispatcher := &fakeDispatcher{}
	svc := NewLeaveService(repo, accounts, &fakeAuditRepo{}, NewNotificationService(dispatcher, "Faculty Portal"), nil, validator.New(), zap.NewNop())
	svc.now = func() time.Time { return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC) }
	return svc, repo, accounts, dispatcher
}

func mustDate(t *testing.T, value string) models.Date {
	t.Helper()
	d, err := models.ParseDate(value)
	require.NoError(t, err)
	return d
}

func TestLeaveServiceApply(t *testing.T) {
	svc, repo, _, _ := newLeaveFixture()

	leave, err := svc.Apply(context.Background(), lecturer("lec-1"), dto.ApplyLeaveRequest{
		Reason: "Conference", StartDate: mustDate(t, "2026-06-10"), EndDate: mustDate(t, "2026-06-05"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.LeaveStatusPending, leave.Status)
	assert.Equal(t, "lec-1", leave.AccountID)
	assert.Contains(t, repo.leaves, leave.ID)
}

func TestLeaveServiceApplyValidation(t *testing.T) {
	svc, _, _, _ := newLeaveFixture()

	_, err := svc.Apply(context.Background(), lecturer("lec-1"), dto.ApplyLeaveRequest{StartDate: mustDate(t, "2026-06-10"), EndDate: mustDate(t, "2026-06-11")})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Apply(context.Background(), lecturer("lec-1"), dto.ApplyLeaveRequest{Reason: "x"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Apply(context.Background(), lecturer("ghost"), dto.ApplyLeaveRequest{Reason: "x", StartDate: mustDate(t, "2026-06-10"), EndDate: mustDate(t, "2026-06-11")})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestLeaveServiceListMineAndAll(t *testing.T) {
	svc, _, accounts, _ := newLeaveFixture(
		&models.LeaveRequest{ID: "l1", AccountID: "lec-1", Status: models.LeaveStatusPending},
		&models.LeaveRequest{ID: "l2", AccountID: "admin-1", Status: models.LeaveStatusPending},
		&models.LeaveRequest{ID: "l3", AccountID: "gone", Status: models.LeaveStatusApproved},
	)

	mine, err := svc.ListMine(context.Background(), lecturer("lec-1"))
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "l1", mine[0].ID)

	_, err = svc.ListAll(context.Background(), hod())
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	all, err := svc.ListAll(context.Background(), admin())
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Ada", all[0].Owner.Name)
	assert.Nil(t, all[2].Owner)

	delete(accounts.accounts, "lec-1")
	all, err = svc.ListAll(context.Background(), admin())
	require.NoError(t, err)
	assert.Nil(t, all[0].Owner)
}

func TestLeaveServiceReview(t *testing.T) {
	svc, repo, _, dispatcher := newLeaveFixture(&models.LeaveRequest{ID: "l1", AccountID: "lec-1", Status: models.LeaveStatusPending, AdminComment: strPtr("earlier")})

	view, err := svc.Review(context.Background(), admin(), "l1", dto.ReviewLeaveRequest{Status: models.LeaveStatusApproved})
	require.NoError(t, err)
	assert.Equal(t, models.LeaveStatusApproved, view.Status)
	assert.Equal(t, "earlier", *view.AdminComment)
	assert.Equal(t, "admin-1", *view.ReviewedBy)
	require.NotNil(t, view.Owner)
	assert.Equal(t, "ada@uni.edu", view.Owner.Email)

	view, err = svc.Review(context.Background(), admin(), "l1", dto.ReviewLeaveRequest{Status: models.LeaveStatusRejected, AdminComment: strPtr("clash with exams")})
	require.NoError(t, err)
	assert.Equal(t, models.LeaveStatusRejected, view.Status)
	assert.Equal(t, "clash with exams", *repo.leaves["l1"].AdminComment)

	_, err = svc.Review(context.Background(), admin(), "l1", dto.ReviewLeaveRequest{Status: models.LeaveStatusRejected, AdminComment: strPtr("")})
	require.NoError(t, err)
	assert.Equal(t, "clash with exams", *repo.leaves["l1"].AdminComment)

	require.Len(t, dispatcher.sent, 3)
	assert.Equal(t, "ada@uni.edu", dispatcher.sent[0].To.Address)
	assert.Contains(t, dispatcher.sent[1].Text, "clash with exams")
}

func TestLeaveServiceReviewChecks(t *testing.T) {
	svc, _, _, dispatcher := newLeaveFixture(&models.LeaveRequest{ID: "l1", AccountID: "gone", Status: models.LeaveStatusPending})

	_, err := svc.Review(context.Background(), admin(), "l1", dto.ReviewLeaveRequest{Status: models.LeaveStatusPending})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Review(context.Background(), admin(), "missing", dto.ReviewLeaveRequest{Status: models.LeaveStatusApproved})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	_, err = svc.Review(context.Background(), lecturer("lec-1"), "l1", dto.ReviewLeaveRequest{Status: models.LeaveStatusApproved})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	view, err := svc.Review(context.Background(), admin(), "l1", dto.ReviewLeaveRequest{Status: models.LeaveStatusApproved})
	require.NoError(t, err)
	assert.Nil(t, view.Owner)
	assert.Empty(t, dispatcher.sent)
}
