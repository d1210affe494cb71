package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/faculty-portal-api/internal/models"
)

func TestDirectoryServiceReadThrough(t *testing.T) {
	accounts := newFakeAccountRepo(&models.Account{ID: "lec-1", Name: "Ada", Email: "ada@uni.edu", Role: models.RoleLecturer})
	cacheRepo := newFakeCacheRepo()
	cache := NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true)
	svc := NewDirectoryService(accounts, cache, time.Minute)

	entries, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, cacheRepo.values, DirectoryCacheKey)

	accounts.accounts["lec-2"] = &models.Account{ID: "lec-2", Name: "Grace", Role: models.RoleLecturer}
	entries, err = svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, entries, 1, "served from cache")

	svc.Invalidate(context.Background())
	assert.Equal(t, []string{DirectoryCacheKey}, cacheRepo.deleted)

	entries, err = svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestDirectoryServiceCacheErrorFallsBack(t *testing.T) {
	accounts := newFakeAccountRepo(&models.Account{ID: "lec-1", Name: "Ada", Role: models.RoleLecturer})
	cacheRepo := newFakeCacheRepo()
	cacheRepo.getErr = errDB
	svc := NewDirectoryService(accounts, NewCacheService(cacheRepo, nil, 0, nil, true), 0)

	entries, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestDirectoryServiceCacheDisabled(t *testing.T) {
	accounts := newFakeAccountRepo(&models.Account{ID: "lec-1", Name: "Ada", Role: models.RoleLecturer})
	cacheRepo := newFakeCacheRepo()
	svc := NewDirectoryService(accounts, NewCacheService(cacheRepo, nil, 0, nil, false), 0)

	_, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, cacheRepo.values)

	var nilSvc *DirectoryService
	nilSvc.Invalidate(context.Background())
}

func TestNotificationServiceMessages(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	notifier := NewNotificationService(dispatcher, "Faculty Portal")
	account := &models.Account{Name: "Ada", Email: "ada@uni.edu"}

	notifier.AccountApproved(account)
	start, _ := models.ParseDate("2026-06-01")
	end, _ := models.ParseDate("2026-06-03")
	notifier.LeaveReviewed(account, &models.LeaveRequest{StartDate: start, EndDate: end, Status: models.LeaveStatusRejected})

	require.Len(t, dispatcher.sent, 2)
	assert.Equal(t, "Account approved", dispatcher.sent[0].Subject)
	assert.Contains(t, dispatcher.sent[0].Text, "Faculty Portal")
	assert.Equal(t, "Leave request rejected", dispatcher.sent[1].Subject)
	assert.Contains(t, dispatcher.sent[1].Text, "from 2026-06-01 to 2026-06-03")

	var disabled *NotificationService
	disabled.AccountApproved(account)
	NewNotificationService(nil, "x").AccountApproved(account)
}
