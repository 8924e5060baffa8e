package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bengamraiheb/backloft/internal/api/shared"
	"github.com/bengamraiheb/backloft/internal/domain"
	"github.com/bengamraiheb/backloft/internal/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// withPrincipal injects an authenticated principal, standing in for the
// auth middleware on protected routes.
func withPrincipal(p domain.Principal) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(shared.WithPrincipal(r.Context(), p)))
		})
	}
}

func testPrincipal() domain.Principal {
	return domain.Principal{
		ID:    uuid.New(),
		Email: "alice@example.com",
		Role:  domain.RoleUser,
	}
}

func jsonBody(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

func doJSON(t *testing.T, handler http.Handler, method, target string, body *bytes.Reader) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, body)
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

// stubTaskService lets each test wire exactly the calls it expects.
type stubTaskService struct {
	createFn       func(ctx context.Context, p domain.Principal, input service.CreateTaskInput) (*domain.Task, error)
	getFn          func(ctx context.Context, p domain.Principal, id uuid.UUID) (*domain.Task, error)
	listFn         func(ctx context.Context, p domain.Principal) ([]*domain.Task, error)
	updateFn       func(ctx context.Context, p domain.Principal, id uuid.UUID, patch domain.TaskPatch) (*domain.Task, error)
	deleteFn       func(ctx context.Context, p domain.Principal, id uuid.UUID) error
	addCommentFn   func(ctx context.Context, p domain.Principal, taskID uuid.UUID, content string) (*domain.Comment, error)
	listCommentsFn func(ctx context.Context, p domain.Principal, taskID uuid.UUID) ([]*domain.Comment, error)
	listHistoryFn  func(ctx context.Context, p domain.Principal, taskID uuid.UUID) ([]*domain.HistoryEntry, error)
}

func (s *stubTaskService) CreateTask(ctx context.Context, p domain.Principal, input service.CreateTaskInput) (*domain.Task, error) {
	return s.createFn(ctx, p, input)
}

func (s *stubTaskService) GetTask(ctx context.Context, p domain.Principal, id uuid.UUID) (*domain.Task, error) {
	return s.getFn(ctx, p, id)
}

func (s *stubTaskService) ListTasks(ctx context.Context, p domain.Principal) ([]*domain.Task, error) {
	return s.listFn(ctx, p)
}

func (s *stubTaskService) UpdateTask(ctx context.Context, p domain.Principal, id uuid.UUID, patch domain.TaskPatch) (*domain.Task, error) {
	return s.updateFn(ctx, p, id, patch)
}

func (s *stubTaskService) DeleteTask(ctx context.Context, p domain.Principal, id uuid.UUID) error {
	return s.deleteFn(ctx, p, id)
}

func (s *stubTaskService) AddComment(ctx context.Context, p domain.Principal, taskID uuid.UUID, content string) (*domain.Comment, error) {
	return s.addCommentFn(ctx, p, taskID, content)
}

func (s *stubTaskService) ListComments(ctx context.Context, p domain.Principal, taskID uuid.UUID) ([]*domain.Comment, error) {
	return s.listCommentsFn(ctx, p, taskID)
}

func (s *stubTaskService) ListHistory(ctx context.Context, p domain.Principal, taskID uuid.UUID) ([]*domain.HistoryEntry, error) {
	return s.listHistoryFn(ctx, p, taskID)
}

// stubAuthService mirrors stubTaskService for the auth flows.
type stubAuthService struct {
	registerFn func(ctx context.Context, name, email, password string) (*domain.User, service.TokenPair, error)
	loginFn    func(ctx context.Context, email, password string) (*domain.User, service.TokenPair, error)
	refreshFn  func(ctx context.Context, refreshToken string) (service.TokenPair, error)
	logoutFn   func(ctx context.Context, principal domain.Principal) error
	forgotFn   func(ctx context.Context, email string) error
	resetFn    func(ctx context.Context, token, newPassword string) error
}

func (s *stubAuthService) Register(ctx context.Context, name, email, password string) (*domain.User, service.TokenPair, error) {
	return s.registerFn(ctx, name, email, password)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*domain.User, service.TokenPair, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) Refresh(ctx context.Context, refreshToken string) (service.TokenPair, error) {
	return s.refreshFn(ctx, refreshToken)
}

func (s *stubAuthService) Logout(ctx context.Context, principal domain.Principal) error {
	return s.logoutFn(ctx, principal)
}

func (s *stubAuthService) RequestPasswordReset(ctx context.Context, email string) error {
	return s.forgotFn(ctx, email)
}

func (s *stubAuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	return s.resetFn(ctx, token, newPassword)
}

// stubUserService mirrors stubTaskService for the user directory.
type stubUserService struct {
	getFn    func(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	listFn   func(ctx context.Context) ([]*domain.User, error)
	updateFn func(ctx context.Context, p domain.Principal, userID uuid.UUID, input service.UpdateUserInput) (*domain.User, error)
	deleteFn func(ctx context.Context, p domain.Principal, userID uuid.UUID) error
}

func (s *stubUserService) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return s.getFn(ctx, userID)
}

func (s *stubUserService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.listFn(ctx)
}

func (s *stubUserService) UpdateUser(ctx context.Context, p domain.Principal, userID uuid.UUID, input service.UpdateUserInput) (*domain.User, error) {
	return s.updateFn(ctx, p, userID, input)
}

func (s *stubUserService) DeleteUser(ctx context.Context, p domain.Principal, userID uuid.UUID) error {
	return s.deleteFn(ctx, p, userID)
}

// stubNotificationService mirrors stubTaskService for the inbox.
type stubNotificationService struct {
	listFn        func(ctx context.Context, p domain.Principal) ([]*domain.Notification, error)
	markReadFn    func(ctx context.Context, p domain.Principal, id uuid.UUID) (*domain.Notification, error)
	markAllReadFn func(ctx context.Context, p domain.Principal) error
	deleteFn      func(ctx context.Context, p domain.Principal, id uuid.UUID) error
}

func (s *stubNotificationService) ListNotifications(ctx context.Context, p domain.Principal) ([]*domain.Notification, error) {
	return s.listFn(ctx, p)
}

func (s *stubNotificationService) MarkRead(ctx context.Context, p domain.Principal, id uuid.UUID) (*domain.Notification, error) {
	return s.markReadFn(ctx, p, id)
}

func (s *stubNotificationService) MarkAllRead(ctx context.Context, p domain.Principal) error {
	return s.markAllReadFn(ctx, p)
}

func (s *stubNotificationService) DeleteNotification(ctx context.Context, p domain.Principal, id uuid.UUID) error {
	return s.deleteFn(ctx, p, id)
}
