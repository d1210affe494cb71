package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/noah-isme/faculty-portal-api/internal/models"
	appErrors "github.com/noah-isme/faculty-portal-api/pkg/errors"
	"github.com/noah-isme/faculty-portal-api/pkg/mailer"
)

var errDB = errors.New("db unavailable")

type fakeAccountRepo struct {
	accounts map[string]*models.Account
	nextID   int
	findErr  error
	writeErr error
}

func newFakeAccountRepo(accounts ...*models.Account) *fakeAccountRepo {
	repo := &fakeAccountRepo{accounts: map[string]*models.Account{}}
	for _, a := range accounts {
		clone := *a
		repo.accounts[a.ID] = &clone
	}
	return repo
}

func (f *fakeAccountRepo) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, a := range f.accounts {
		if a.Email == email {
			clone := *a
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeAccountRepo) FindByID(ctx context.Context, id string) (*models.Account, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	a, ok := f.accounts[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *a
	return &clone, nil
}

func (f *fakeAccountRepo) List(ctx context.Context) ([]models.Account, error) {
	out := []models.Account{}
	for _, a := range f.accounts {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeAccountRepo) Directory(ctx context.Context) ([]models.DirectoryEntry, error) {
	accounts, _ := f.List(ctx)
	out := make([]models.DirectoryEntry, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, models.DirectoryEntry{ID: a.ID, Name: a.Name, Email: a.Email, Department: a.Department, Role: a.Role})
	}
	return out, nil
}

func (f *fakeAccountRepo) CountByRole(ctx context.Context) (map[models.Role]int, error) {
	counts := map[models.Role]int{}
	for _, a := range f.accounts {
		counts[a.Role]++
	}
	return counts, nil
}

func (f *fakeAccountRepo) Create(ctx context.Context, account *models.Account) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	if account.ID == "" {
		f.nextID++
		account.ID = fmt.Sprintf("acc-%d", f.nextID)
	}
	clone := *account
	f.accounts[account.ID] = &clone
	return nil
}

func (f *fakeAccountRepo) Update(ctx context.Context, account *models.Account) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	if _, ok := f.accounts[account.ID]; !ok {
		return sql.ErrNoRows
	}
	clone := *account
	f.accounts[account.ID] = &clone
	return nil
}

func (f *fakeAccountRepo) SetApproval(ctx context.Context, id string, approved bool) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	a, ok := f.accounts[id]
	if !ok {
		return sql.ErrNoRows
	}
	a.IsApproved = approved
	return nil
}

func (f *fakeAccountRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.accounts[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.accounts, id)
	return nil
}

type fakeTaskRepo struct {
	tasks    map[string]*models.Task
	accounts *fakeAccountRepo
	listErr  error
}

func newFakeTaskRepo(accounts *fakeAccountRepo, tasks ...*models.Task) *fakeTaskRepo {
	repo := &fakeTaskRepo{tasks: map[string]*models.Task{}, accounts: accounts}
	for _, t := range tasks {
		clone := *t
		repo.tasks[t.ID] = &clone
	}
	return repo
}

func (f *fakeTaskRepo) Create(ctx context.Context, task *models.Task) error {
	if task.ID == "" {
		task.ID = "task-new"
	}
	clone := *task
	f.tasks[task.ID] = &clone
	return nil
}

func (f *fakeTaskRepo) FindByID(ctx context.Context, id string) (*models.Task, error) {
	t, ok := f.tasks[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *t
	return &clone, nil
}

func (f *fakeTaskRepo) UpdateProgress(ctx context.Context, task *models.Task) error {
	if _, ok := f.tasks[task.ID]; !ok {
		return sql.ErrNoRows
	}
	clone := *task
	f.tasks[task.ID] = &clone
	return nil
}

func (f *fakeTaskRepo) view(t *models.Task) models.TaskView {
	v := models.TaskView{Task: *t}
	if a, ok := f.accounts.accounts[t.AssignedToID]; ok {
		name := a.Name
		v.AssignedToName = &name
	}
	if a, ok := f.accounts.accounts[t.AssignedByID]; ok {
		name := a.Name
		v.AssignedByName = &name
	}
	v.Resolve()
	return v
}

func (f *fakeTaskRepo) ListViews(ctx context.Context) ([]models.TaskView, error) {
	return f.filter(func(*models.Task) bool { return true })
}

func (f *fakeTaskRepo) ListViewsByAssignee(ctx context.Context, accountID string) ([]models.TaskView, error) {
	return f.filter(func(t *models.Task) bool { return t.AssignedToID == accountID })
}

func (f *fakeTaskRepo) filter(keep func(*models.Task) bool) ([]models.TaskView, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := []models.TaskView{}
	for _, t := range f.tasks {
		if keep(t) {
			out = append(out, f.view(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeTaskRepo) CountByStatus(ctx context.Context) (map[models.TaskStatus]int, error) {
	counts := map[models.TaskStatus]int{}
	for _, t := range f.tasks {
		counts[t.Status]++
	}
	return counts, nil
}

type fakeLeaveRepo struct {
	leaves   map[string]*models.LeaveRequest
	accounts *fakeAccountRepo
}

func newFakeLeaveRepo(accounts *fakeAccountRepo, leaves ...*models.LeaveRequest) *fakeLeaveRepo {
	repo := &fakeLeaveRepo{leaves: map[string]*models.LeaveRequest{}, accounts: accounts}
	for _, l := range leaves {
		clone := *l
		repo.leaves[l.ID] = &clone
	}
	return repo
}

func (f *fakeLeaveRepo) Create(ctx context.Context, leave *models.LeaveRequest) error {
	if leave.ID == "" {
		leave.ID = "leave-new"
	}
	clone := *leave
	f.leaves[leave.ID] = &clone
	return nil
}

func (f *fakeLeaveRepo) FindByID(ctx context.Context, id string) (*models.LeaveRequest, error) {
	l, ok := f.leaves[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *l
	return &clone, nil
}

func (f *fakeLeaveRepo) view(l *models.LeaveRequest) models.LeaveView {
	v := models.LeaveView{LeaveRequest: *l}
	if a, ok := f.accounts.accounts[l.AccountID]; ok {
		name, email := a.Name, a.Email
		v.OwnerName, v.OwnerEmail = &name, &email
	}
	v.Resolve()
	return v
}

func (f *fakeLeaveRepo) FindView(ctx context.Context, id string) (*models.LeaveView, error) {
	l, ok := f.leaves[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	v := f.view(l)
	return &v, nil
}

func (f *fakeLeaveRepo) ListByAccount(ctx context.Context, accountID string) ([]models.LeaveRequest, error) {
	out := []models.LeaveRequest{}
	for _, l := range f.leaves {
		if l.AccountID == accountID {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeLeaveRepo) ListViews(ctx context.Context) ([]models.LeaveView, error) {
	out := []models.LeaveView{}
	for _, l := range f.leaves {
		out = append(out, f.view(l))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeLeaveRepo) SaveReview(ctx context.Context, leave *models.LeaveRequest) error {
	if _, ok := f.leaves[leave.ID]; !ok {
		return sql.ErrNoRows
	}
	clone := *leave
	f.leaves[leave.ID] = &clone
	return nil
}

func (f *fakeLeaveRepo) CountByStatus(ctx context.Context) (map[models.LeaveStatus]int, error) {
	counts := map[models.LeaveStatus]int{}
	for _, l := range f.leaves {
		counts[l.Status]++
	}
	return counts, nil
}

type fakeAuditRepo struct {
	entries []*models.AuditLog
	err     error
}

func (f *fakeAuditRepo) Create(ctx context.Context, log *models.AuditLog) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, log)
	return nil
}

func (f *fakeAuditRepo) actions() []string {
	out := make([]string, len(f.entries))
	for i, e := range f.entries {
		out[i] = e.Action
	}
	return out
}

type fakeDispatcher struct {
	mu   sync.Mutex
	sent []mailer.Message
}

func (f *fakeDispatcher) Dispatch(msg mailer.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
}

type fakeCacheRepo struct {
	values  map[string]interface{}
	deleted []string
	getErr  error
}

func newFakeCacheRepo() *fakeCacheRepo {
	return &fakeCacheRepo{values: map[string]interface{}{}}
}

func (f *fakeCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	if f.getErr != nil {
		return f.getErr
	}
	value, ok := f.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	if entries, ok := dest.(*[]models.DirectoryEntry); ok {
		*entries = value.([]models.DirectoryEntry)
	}
	return nil
}

func (f *fakeCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	f.values[key] = value
	return nil
}

func (f *fakeCacheRepo) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.values, key)
		f.deleted = append(f.deleted, key)
	}
	return nil
}

func strPtr(value string) *string { return &value }

func admin() *models.Principal {
	return &models.Principal{AccountID: "admin-1", Name: "Root", Role: models.RoleAdmin}
}

func hod() *models.Principal {
	return &models.Principal{AccountID: "hod-1", Name: "Head", Role: models.RoleHOD}
}

func lecturer(id string) *models.Principal {
	return &models.Principal{AccountID: id, Name: "Lecturer " + id, Role: models.RoleLecturer}
}
