package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/sakif/messagely/internal/apperror"
	"github.com/sakif/messagely/internal/auth"
	"github.com/sakif/messagely/internal/model"
)

// =========================================================================
// FAKES AND HELPERS
// =========================================================================

// fakeUserRepo is an in-memory implementation of repository.UserRepository.
// A hand-written fake keeps the tests readable — you can see exactly what
// the store does, no mock framework indirection.
type fakeUserRepo struct {
	users map[string]*model.User
	// set to a non-nil error to simulate a database failure
	createErr error
	getErr    error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (f *fakeUserRepo) CreateUser(_ context.Context, user *model.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.users[user.Username]; ok {
		return apperror.Conflict("user", user.Username)
	}
	now := time.Now()
	user.JoinAt = now
	user.LastLoginAt = now
	stored := *user
	f.users[user.Username] = &stored
	return nil
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.users[username]
	if !ok {
		return nil, apperror.NotFound("user", username)
	}
	result := *u
	return &result, nil
}

func (f *fakeUserRepo) UpdateLoginTimestamp(_ context.Context, username string) error {
	u, ok := f.users[username]
	if !ok {
		return apperror.NotFound("user", username)
	}
	u.LastLoginAt = time.Now()
	return nil
}

func (f *fakeUserRepo) List(_ context.Context) ([]model.UserSummary, error) {
	result := make([]model.UserSummary, 0, len(f.users))
	for _, u := range f.users {
		result = append(result, u.Summary())
	}
	return result, nil
}

// newTestAuthService returns an AuthService wired with the fake repository,
// a fixed-secret token service, and bcrypt at its minimum cost.
func newTestAuthService(t *testing.T, repo *fakeUserRepo) *AuthService {
	t.Helper()

	ts, err := auth.NewTokenService("test-secret-at-least-16-chars!!", 0)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewAuthService(repo, ts, auth.NewPasswordServiceForTest(), logger)
}

func validParams() RegisterParams {
	return RegisterParams{
		Username:  "alice",
		Password:  "s3cret-password",
		FirstName: "Alice",
		LastName:  "Anderson",
		Phone:     "+14155550101",
	}
}

// =========================================================================
// REGISTER TESTS
// =========================================================================

func TestRegister_Success(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)

	result, err := svc.Register(context.Background(), validParams())
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if result.Token == "" {
		t.Error("Register() returned empty token")
	}
	if result.User.Username != "alice" {
		t.Errorf("User.Username = %q, want %q", result.User.Username, "alice")
	}
	if result.User.JoinAt.IsZero() || result.User.LastLoginAt.IsZero() {
		t.Error("Register() did not set timestamps")
	}
}

func TestRegister_HashesPassword(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)

	p := validParams()
	if _, err := svc.Register(context.Background(), p); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	stored := repo.users["alice"]
	if stored.PasswordHash == p.Password {
		t.Error("Register() stored the plaintext password")
	}
	if stored.PasswordHash == "" {
		t.Error("Register() stored an empty hash")
	}
}

func TestRegister_MissingFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RegisterParams)
	}{
		{"missing username", func(p *RegisterParams) { p.Username = "" }},
		{"missing password", func(p *RegisterParams) { p.Password = "" }},
		{"missing first_name", func(p *RegisterParams) { p.FirstName = "" }},
		{"missing last_name", func(p *RegisterParams) { p.LastName = "" }},
		{"missing phone", func(p *RegisterParams) { p.Phone = "" }},
		{"whitespace username", func(p *RegisterParams) { p.Username = "   " }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestAuthService(t, newFakeUserRepo())

			p := validParams()
			tt.mutate(&p)

			_, err := svc.Register(context.Background(), p)
			if err == nil {
				t.Fatal("Register() should have failed")
			}
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("Register() error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)

	if _, err := svc.Register(context.Background(), validParams()); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}

	_, err := svc.Register(context.Background(), validParams())
	if err == nil {
		t.Fatal("second Register() should have failed")
	}
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("Register() error = %v, want ErrConflict", err)
	}
}

func TestRegister_RepositoryError(t *testing.T) {
	repo := newFakeUserRepo()
	repo.createErr = errors.New("database is on fire")
	svc := newTestAuthService(t, repo)

	_, err := svc.Register(context.Background(), validParams())
	if err == nil {
		t.Fatal("Register() should propagate repository errors")
	}
}

// =========================================================================
// AUTHENTICATE TESTS
// =========================================================================

func TestAuthenticate_CorrectPassword(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)

	p := validParams()
	if _, err := svc.Register(context.Background(), p); err != nil {
		t.Fatalf("setup: %v", err)
	}

	ok, err := svc.Authenticate(context.Background(), p.Username, p.Password)
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if !ok {
		t.Error("Authenticate() = false for correct password")
	}
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)

	if _, err := svc.Register(context.Background(), validParams()); err != nil {
		t.Fatalf("setup: %v", err)
	}

	ok, err := svc.Authenticate(context.Background(), "alice", "wrong-password")
	if err != nil {
		t.Fatalf("Authenticate() should not error for a wrong password, got %v", err)
	}
	if ok {
		t.Error("Authenticate() = true for wrong password")
	}
}

func TestAuthenticate_UnknownUsername(t *testing.T) {
	svc := newTestAuthService(t, newFakeUserRepo())

	_, err := svc.Authenticate(context.Background(), "nobody", "anything")
	if err == nil {
		t.Fatal("Authenticate() should fail for unknown username")
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Authenticate() error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// LOGIN TESTS
// =========================================================================

func TestLogin_Success(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)

	p := validParams()
	if _, err := svc.Register(context.Background(), p); err != nil {
		t.Fatalf("setup: %v", err)
	}

	result, err := svc.Login(context.Background(), p.Username, p.Password)
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if result.Token == "" {
		t.Error("Login() returned empty token")
	}
}

func TestLogin_UpdatesLoginTimestamp(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)

	p := validParams()
	if _, err := svc.Register(context.Background(), p); err != nil {
		t.Fatalf("setup: %v", err)
	}
	before := repo.users["alice"].LastLoginAt

	time.Sleep(5 * time.Millisecond)
	if _, err := svc.Login(context.Background(), p.Username, p.Password); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	after := repo.users["alice"].LastLoginAt
	if !after.After(before) {
		t.Errorf("LastLoginAt not advanced: before=%v after=%v", before, after)
	}
}

func TestLogin_MissingFields(t *testing.T) {
	svc := newTestAuthService(t, newFakeUserRepo())

	_, err := svc.Login(context.Background(), "", "password")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Login() error = %v, want ErrValidation", err)
	}

	_, err = svc.Login(context.Background(), "alice", "")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Login() error = %v, want ErrValidation", err)
	}
}

// TestLogin_UniformFailureMessage is the enumeration check: an unknown
// username and a wrong password must be indistinguishable to the caller.
func TestLogin_UniformFailureMessage(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)

	if _, err := svc.Register(context.Background(), validParams()); err != nil {
		t.Fatalf("setup: %v", err)
	}

	_, errUnknownUser := svc.Login(context.Background(), "nobody", "whatever")
	_, errWrongPassword := svc.Login(context.Background(), "alice", "wrong-password")

	if errUnknownUser == nil || errWrongPassword == nil {
		t.Fatal("both logins should have failed")
	}
	if !errors.Is(errUnknownUser, apperror.ErrUnauthenticated) {
		t.Errorf("unknown-user error = %v, want ErrUnauthenticated", errUnknownUser)
	}
	if !errors.Is(errWrongPassword, apperror.ErrUnauthenticated) {
		t.Errorf("wrong-password error = %v, want ErrUnauthenticated", errWrongPassword)
	}
	if errUnknownUser.Error() != errWrongPassword.Error() {
		t.Errorf("failure messages differ: %q vs %q — this allows username enumeration",
			errUnknownUser.Error(), errWrongPassword.Error())
	}
}

func TestLogin_TokenCarriesUsername(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)

	p := validParams()
	if _, err := svc.Register(context.Background(), p); err != nil {
		t.Fatalf("setup: %v", err)
	}

	result, err := svc.Login(context.Background(), p.Username, p.Password)
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	ts, _ := auth.NewTokenService("test-secret-at-least-16-chars!!", 0)
	username, err := ts.Validate(result.Token)
	if err != nil {
		t.Fatalf("Validate() on login token: %v", err)
	}
	if username != "alice" {
		t.Errorf("token subject = %q, want %q", username, "alice")
	}
}
