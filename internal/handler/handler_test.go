package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/faculty-portal-api/internal/dto"
	"github.com/noah-isme/faculty-portal-api/internal/middleware"
	"github.com/noah-isme/faculty-portal-api/internal/models"
	appErrors "github.com/noah-isme/faculty-portal-api/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func asPrincipal(c *gin.Context, id string, role models.Role) {
	c.Set(middleware.ContextUserKey, &models.Principal{AccountID: id, Name: id, Role: role})
}

type envelope struct {
	Data  json.RawMessage        `json:"data"`
	Error *appErrors.Error       `json:"error"`
	Meta  map[string]interface{} `json:"meta"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

type authServiceStub struct {
	loginReq    models.LoginRequest
	loginResp   *models.LoginResponse
	registerErr error
}

func (s *authServiceStub) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	s.loginReq = req
	if s.loginResp == nil {
		return nil, appErrors.ErrInvalidCredentials
	}
	return s.loginResp, nil
}

func (s *authServiceStub) Register(ctx context.Context, req models.RegisterRequest) (*models.RegisterResponse, error) {
	if s.registerErr != nil {
		return nil, s.registerErr
	}
	return &models.RegisterResponse{ID: "acc-1", Name: req.Name, Email: req.Email, Role: models.RoleLecturer, Message: "pending approval"}, nil
}

func TestAuthHandlerLogin(t *testing.T) {
	svc := &authServiceStub{loginResp: &models.LoginResponse{Profile: models.Profile{ID: "acc-1", Role: models.RoleHOD}, Token: "tok"}}
	h := NewAuthHandler(svc)

	c, w := newGinContext(http.MethodPost, "/auth/login", []byte(`{"email":"a@uni.edu","password":"secret"}`))
	c.Request.Header.Set("User-Agent", "test-agent")
	h.Login(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "a@uni.edu", svc.loginReq.Email)
	assert.Equal(t, "test-agent", svc.loginReq.UserAgent)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &body))
	assert.Equal(t, "tok", body["token"])
	assert.Equal(t, "hod", body["role"])

	svc.loginResp = nil
	c, w = newGinContext(http.MethodPost, "/auth/login", []byte(`{"email":"a@uni.edu","password":"bad"}`))
	h.Login(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, decode(t, w).Error.Code)

	c, w = newGinContext(http.MethodPost, "/auth/login", []byte(`{`))
	h.Login(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandlerRegister(t *testing.T) {
	svc := &authServiceStub{}
	h := NewAuthHandler(svc)

	c, w := newGinContext(http.MethodPost, "/auth/register", []byte(`{"name":"Ada","email":"ada@uni.edu","password":"secret1"}`))
	h.Register(c)
	assert.Equal(t, http.StatusCreated, w.Code)

	svc.registerErr = appErrors.ErrEmailTaken
	c, w = newGinContext(http.MethodPost, "/auth/register", []byte(`{"name":"Ada","email":"ada@uni.edu","password":"secret1"}`))
	h.Register(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, appErrors.ErrEmailTaken.Code, decode(t, w).Error.Code)
}

type accountServiceStub struct {
	accounts map[string]*models.Account
	lastID   string
	err      error
}

func (s *accountServiceStub) List(ctx context.Context, actor *models.Principal) ([]models.Account, error) {
	out := []models.Account{}
	for _, a := range s.accounts {
		out = append(out, *a)
	}
	return out, s.err
}

func (s *accountServiceStub) Get(ctx context.Context, id string) (*models.Account, error) {
	if a, ok := s.accounts[id]; ok {
		return a, nil
	}
	return nil, appErrors.ErrNotFound
}

func (s *accountServiceStub) Create(ctx context.Context, actor *models.Principal, req dto.CreateAccountRequest) (*models.Account, error) {
	return &models.Account{ID: "new", Name: req.Name, Email: req.Email, Role: req.Role, IsApproved: true, PasswordHash: "hash"}, s.err
}

func (s *accountServiceStub) Approve(ctx context.Context, actor *models.Principal, id string) (*models.Account, error) {
	s.lastID = id
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	a.IsApproved = true
	return a, nil
}

func (s *accountServiceStub) Suspend(ctx context.Context, actor *models.Principal, id string) (*models.Account, error) {
	s.lastID = id
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	a.IsApproved = false
	return a, nil
}

func (s *accountServiceStub) UpdateProfile(ctx context.Context, actor *models.Principal, req dto.UpdateProfileRequest) (*models.Account, error) {
	a, err := s.Get(ctx, actor.AccountID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		a.Name = *req.Name
	}
	return a, nil
}

func (s *accountServiceStub) AdminUpdate(ctx context.Context, actor *models.Principal, id string, req dto.AdminUpdateAccountRequest) (*models.Account, error) {
	s.lastID = id
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Role != nil {
		a.Role = *req.Role
	}
	return a, nil
}

func (s *accountServiceStub) Delete(ctx context.Context, actor *models.Principal, id string) error {
	s.lastID = id
	if _, ok := s.accounts[id]; !ok {
		return appErrors.ErrNotFound
	}
	delete(s.accounts, id)
	return nil
}

func newAccountStub() *accountServiceStub {
	return &accountServiceStub{accounts: map[string]*models.Account{
		"lec-1": {ID: "lec-1", Name: "Ada", Email: "ada@uni.edu", Role: models.RoleLecturer, PasswordHash: "hash"},
	}}
}

func TestAccountHandlerListAndCreate(t *testing.T) {
	h := NewAccountHandler(newAccountStub())

	c, w := newGinContext(http.MethodGet, "/admin/users", nil)
	asPrincipal(c, "admin-1", models.RoleAdmin)
	h.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w)
	assert.EqualValues(t, 1, env.Meta["total"])
	assert.NotContains(t, string(env.Data), "hash")

	c, w = newGinContext(http.MethodPost, "/admin/users", []byte(`{"name":"Grace","email":"g@uni.edu","password":"secret1","role":"hod"}`))
	asPrincipal(c, "admin-1", models.RoleAdmin)
	h.Create(c)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"isApproved":true`)
}

func TestAccountHandlerApprovalAndDelete(t *testing.T) {
	stub := newAccountStub()
	h := NewAccountHandler(stub)

	c, w := newGinContext(http.MethodPut, "/admin/users/lec-1/approve", nil)
	c.Params = gin.Params{{Key: "id", Value: "lec-1"}}
	asPrincipal(c, "admin-1", models.RoleAdmin)
	h.Approve(c)
	require.Equal(t, http.StatusOK, w.Code)
	var approval dto.ApprovalResponse
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &approval))
	assert.True(t, approval.IsApproved)

	c, w = newGinContext(http.MethodPut, "/admin/users/lec-1/disapprove", nil)
	c.Params = gin.Params{{Key: "id", Value: "lec-1"}}
	asPrincipal(c, "admin-1", models.RoleAdmin)
	h.Disapprove(c)
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &approval))
	assert.False(t, approval.IsApproved)

	c, w = newGinContext(http.MethodPut, "/admin/users/lec-1", []byte(`{"role":"hod"}`))
	c.Params = gin.Params{{Key: "id", Value: "lec-1"}}
	asPrincipal(c, "admin-1", models.RoleAdmin)
	h.Update(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.RoleHOD, stub.accounts["lec-1"].Role)

	c, w = newGinContext(http.MethodDelete, "/admin/users/lec-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "lec-1"}}
	asPrincipal(c, "admin-1", models.RoleAdmin)
	h.Delete(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "User removed")

	c, w = newGinContext(http.MethodDelete, "/admin/users/lec-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "lec-1"}}
	asPrincipal(c, "admin-1", models.RoleAdmin)
	h.Delete(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAccountHandlerRequiresPrincipal(t *testing.T) {
	h := NewAccountHandler(newAccountStub())
	c, w := newGinContext(http.MethodGet, "/admin/users", nil)
	h.List(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

type directoryStub struct {
	entries []models.DirectoryEntry
	err     error
}

func (s directoryStub) List(ctx context.Context) ([]models.DirectoryEntry, error) {
	return s.entries, s.err
}

func TestFacultyHandlerProfile(t *testing.T) {
	h := NewFacultyHandler(newAccountStub(), directoryStub{})

	c, w := newGinContext(http.MethodGet, "/faculty/profile", nil)
	asPrincipal(c, "lec-1", models.RoleLecturer)
	h.Profile(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "isApproved")

	c, w = newGinContext(http.MethodPut, "/faculty/profile", []byte(`{"name":"Ada Lovelace"}`))
	asPrincipal(c, "lec-1", models.RoleLecturer)
	h.UpdateProfile(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Ada Lovelace")

	c, w = newGinContext(http.MethodGet, "/faculty/profile", nil)
	asPrincipal(c, "ghost", models.RoleLecturer)
	h.Profile(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFacultyHandlerDirectory(t *testing.T) {
	h := NewFacultyHandler(newAccountStub(), directoryStub{entries: []models.DirectoryEntry{{ID: "lec-1", Name: "Ada"}}})
	c, w := newGinContext(http.MethodGet, "/faculty/all", nil)
	asPrincipal(c, "lec-1", models.RoleLecturer)
	h.Directory(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w).Meta["total"])

	h = NewFacultyHandler(newAccountStub(), directoryStub{err: errors.New("db down")})
	c, w = newGinContext(http.MethodGet, "/faculty/all", nil)
	h.Directory(c)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
