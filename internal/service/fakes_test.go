package service

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"sync"
	"testing"

	"github.com/bengamraiheb/backloft/internal/domain"
	"github.com/bengamraiheb/backloft/internal/realtime"
	"github.com/bengamraiheb/backloft/internal/service/auth"
	"github.com/bengamraiheb/backloft/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// txDriver is a no-op SQL driver so transaction-running services can be
// unit tested. The store fakes ignore the *sql.Tx they are handed.
type txDriver struct{}

func (txDriver) Open(string) (driver.Conn, error) { return &txConn{}, nil }

type txConn struct{}

func (*txConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("not implemented") }
func (*txConn) Close() error                        { return nil }
func (*txConn) Begin() (driver.Tx, error)           { return txHandle{}, nil }

type txHandle struct{}

func (txHandle) Commit() error   { return nil }
func (txHandle) Rollback() error { return nil }

var registerTxDriver sync.Once

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	registerTxDriver.Do(func() {
		sql.Register("servicetest", txDriver{})
	})
	db, err := sql.Open("servicetest", "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// fakeTaskStore is an in-memory TaskStore.
type fakeTaskStore struct {
	tasks     map[uuid.UUID]*domain.Task
	order     []uuid.UUID
	createErr error
	updateErr error
	deleteErr error
}

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{tasks: map[uuid.UUID]*domain.Task{}}
}

func (f *fakeTaskStore) Create(_ context.Context, task *domain.Task) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.tasks[task.ID] = task.Clone()
	f.order = append(f.order, task.ID)
	return nil
}

func (f *fakeTaskStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Task, error) {
	task, ok := f.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	return task.Clone(), nil
}

func (f *fakeTaskStore) List(_ context.Context) ([]*domain.Task, error) {
	out := make([]*domain.Task, 0, len(f.order))
	for i := len(f.order) - 1; i >= 0; i-- {
		if task, ok := f.tasks[f.order[i]]; ok {
			out = append(out, task.Clone())
		}
	}
	return out, nil
}

func (f *fakeTaskStore) Update(_ context.Context, task *domain.Task) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.tasks[task.ID]; !ok {
		return store.ErrTaskNotFound
	}
	f.tasks[task.ID] = task.Clone()
	return nil
}

func (f *fakeTaskStore) Delete(_ context.Context, id uuid.UUID) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.tasks[id]; !ok {
		return store.ErrTaskNotFound
	}
	delete(f.tasks, id)
	return nil
}

func (f *fakeTaskStore) WithTx(*sql.Tx) store.TaskStore { return f }

// fakeHistoryStore is an in-memory HistoryStore.
type fakeHistoryStore struct {
	entries   []*domain.HistoryEntry
	appendErr error
}

func (f *fakeHistoryStore) Append(_ context.Context, entry *domain.HistoryEntry) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeHistoryStore) ListByTask(_ context.Context, taskID uuid.UUID) ([]*domain.HistoryEntry, error) {
	var out []*domain.HistoryEntry
	for _, e := range f.entries {
		if e.TaskID == taskID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeHistoryStore) WithTx(*sql.Tx) store.HistoryStore { return f }

// byTask returns the history entries recorded for one task.
func (f *fakeHistoryStore) byTask(taskID uuid.UUID) []*domain.HistoryEntry {
	entries, _ := f.ListByTask(context.Background(), taskID)
	return entries
}

// fakeCommentStore is an in-memory CommentStore.
type fakeCommentStore struct {
	comments  []*domain.Comment
	createErr error
}

func (f *fakeCommentStore) Create(_ context.Context, comment *domain.Comment) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.comments = append(f.comments, comment)
	return nil
}

func (f *fakeCommentStore) ListByTask(_ context.Context, taskID uuid.UUID) ([]*domain.Comment, error) {
	var out []*domain.Comment
	for _, c := range f.comments {
		if c.TaskID == taskID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCommentStore) WithTx(*sql.Tx) store.CommentStore { return f }

// fakeUserStore is an in-memory UserStore. It does not hash passwords;
// tests inspect the plaintext it was handed. Tokens live beside the
// users the way they live in dedicated columns in the real store.
type fakeUserStore struct {
	users         map[uuid.UUID]*domain.User
	refreshTokens map[uuid.UUID]string
	resetTokens   map[uuid.UUID]string
	createErr     error
	updateErr     error
}

func newFakeUserStore(users ...*domain.User) *fakeUserStore {
	f := &fakeUserStore{
		users:         map[uuid.UUID]*domain.User{},
		refreshTokens: map[uuid.UUID]string{},
		resetTokens:   map[uuid.UUID]string{},
	}
	for _, u := range users {
		copied := *u
		f.users[u.ID] = &copied
	}
	return f
}

func (f *fakeUserStore) Create(_ context.Context, user *domain.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return store.ErrEmailExists
		}
	}
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (f *fakeUserStore) List(_ context.Context) ([]*domain.User, error) {
	out := make([]*domain.User, 0, len(f.users))
	for _, user := range f.users {
		copied := *user
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeUserStore) Update(_ context.Context, user *domain.User) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.users[user.ID]; !ok {
		return store.ErrUserNotFound
	}
	if err := user.Validate(); err != nil {
		return err
	}
	for id, existing := range f.users {
		if id != user.ID && existing.Email == user.Email {
			return store.ErrEmailExists
		}
	}
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.users[id]; !ok {
		return store.ErrUserNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserStore) SetRefreshToken(_ context.Context, id uuid.UUID, token string) error {
	if _, ok := f.users[id]; !ok {
		return store.ErrUserNotFound
	}
	if token == "" {
		delete(f.refreshTokens, id)
		return nil
	}
	f.refreshTokens[id] = token
	return nil
}

func (f *fakeUserStore) GetByRefreshToken(_ context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, store.ErrUserNotFound
	}
	for id, stored := range f.refreshTokens {
		if stored == token {
			copied := *f.users[id]
			return &copied, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (f *fakeUserStore) SetPasswordResetToken(
	_ context.Context,
	id uuid.UUID,
	token string,
	expiresAt sql.NullTime,
) error {
	user, ok := f.users[id]
	if !ok {
		return store.ErrUserNotFound
	}
	if token == "" {
		delete(f.resetTokens, id)
	} else {
		f.resetTokens[id] = token
	}
	if expiresAt.Valid {
		expiry := expiresAt.Time
		user.PasswordResetExpires = &expiry
	} else {
		user.PasswordResetExpires = nil
	}
	return nil
}

func (f *fakeUserStore) GetByPasswordResetToken(_ context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, store.ErrUserNotFound
	}
	for id, stored := range f.resetTokens {
		if stored == token {
			copied := *f.users[id]
			return &copied, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (f *fakeUserStore) WithTx(*sql.Tx) store.UserStore { return f }

// fakeNotificationStore is an in-memory NotificationStore.
type fakeNotificationStore struct {
	created   []*domain.Notification
	createErr error
}

func (f *fakeNotificationStore) Create(_ context.Context, n *domain.Notification) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, n)
	return nil
}

func (f *fakeNotificationStore) ListByUser(_ context.Context, userID uuid.UUID) ([]*domain.Notification, error) {
	var out []*domain.Notification
	for i := len(f.created) - 1; i >= 0; i-- {
		if f.created[i].UserID == userID {
			out = append(out, f.created[i])
		}
	}
	return out, nil
}

func (f *fakeNotificationStore) MarkRead(_ context.Context, id, userID uuid.UUID) (*domain.Notification, error) {
	for _, n := range f.created {
		if n.ID == id && n.UserID == userID {
			n.IsRead = true
			return n, nil
		}
	}
	return nil, store.ErrNotificationNotFound
}

func (f *fakeNotificationStore) MarkAllRead(_ context.Context, userID uuid.UUID) error {
	for _, n := range f.created {
		if n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}

func (f *fakeNotificationStore) Delete(_ context.Context, id, userID uuid.UUID) error {
	for i, n := range f.created {
		if n.ID == id && n.UserID == userID {
			f.created = append(f.created[:i], f.created[i+1:]...)
			return nil
		}
	}
	return store.ErrNotificationNotFound
}

func (f *fakeNotificationStore) CountByTask(_ context.Context, taskID uuid.UUID) (int, error) {
	count := 0
	for _, n := range f.created {
		if n.TaskID != nil && *n.TaskID == taskID {
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationStore) WithTx(*sql.Tx) store.NotificationStore { return f }

// forUser returns the notifications persisted for one recipient.
func (f *fakeNotificationStore) forUser(userID uuid.UUID) []*domain.Notification {
	var out []*domain.Notification
	for _, n := range f.created {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

// targetedEvent is a PublishTo call captured by the fake broadcaster.
type targetedEvent struct {
	UserID string
	Event  realtime.Event
}

// fakeBroadcaster records published events instead of delivering them.
type fakeBroadcaster struct {
	broadcast []realtime.Event
	targeted  []targetedEvent
}

func (f *fakeBroadcaster) Publish(_ context.Context, event realtime.Event) {
	f.broadcast = append(f.broadcast, event)
}

func (f *fakeBroadcaster) PublishTo(_ context.Context, userID string, event realtime.Event) {
	f.targeted = append(f.targeted, targetedEvent{UserID: userID, Event: event})
}

// fakeJWTService issues predictable tokens keyed by user ID.
type fakeJWTService struct {
	generateErr error
	refreshErr  error
	validateErr error
}

func (f *fakeJWTService) GenerateToken(_ context.Context, user *domain.User) (string, error) {
	if f.generateErr != nil {
		return "", f.generateErr
	}
	return "access-" + user.ID.String() + "-" + uuid.NewString(), nil
}

func (f *fakeJWTService) GenerateRefreshToken(_ context.Context, user *domain.User) (string, error) {
	if f.refreshErr != nil {
		return "", f.refreshErr
	}
	return "refresh-" + user.ID.String() + "-" + uuid.NewString(), nil
}

func (f *fakeJWTService) ValidateToken(_ context.Context, _ string) (*auth.Claims, error) {
	if f.validateErr != nil {
		return nil, f.validateErr
	}
	return &auth.Claims{}, nil
}

func (f *fakeJWTService) ValidateRefreshToken(_ context.Context, token string) (*auth.Claims, error) {
	if f.validateErr != nil {
		return nil, f.validateErr
	}
	if len(token) < len("refresh-") || token[:len("refresh-")] != "refresh-" {
		return nil, auth.ErrInvalidRefreshToken
	}
	return &auth.Claims{}, nil
}

// fakeVerifier compares passwords by string equality against the stored
// "hash".
type fakeVerifier struct{}

func (fakeVerifier) Compare(hashedPassword, password string) error {
	if hashedPassword != "hashed:"+password {
		return errors.New("crypto/bcrypt: hashedPassword is not the hash of the given password")
	}
	return nil
}

// fakeMailer records outgoing mail.
type fakeMailer struct {
	welcomes   []string
	resets     map[string]string // email -> token
	welcomeErr error
	resetErr   error
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{resets: map[string]string{}}
}

func (f *fakeMailer) SendWelcome(_ context.Context, to, _ string) error {
	if f.welcomeErr != nil {
		return f.welcomeErr
	}
	f.welcomes = append(f.welcomes, to)
	return nil
}

func (f *fakeMailer) SendPasswordReset(_ context.Context, to, token string) error {
	if f.resetErr != nil {
		return f.resetErr
	}
	f.resets[to] = token
	return nil
}
