package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/medlembra/medlembra/internal/models"
)

type authUserRepositoryStub struct {
	users   map[string]models.User
	nextID  int
	updates []map[string]any
}

func newAuthUserRepositoryStub(users ...models.User) *authUserRepositoryStub {
	stub := &authUserRepositoryStub{users: make(map[string]models.User)}
	for _, user := range users {
		stub.users[user.ID] = user
	}
	return stub
}

func (stub *authUserRepositoryStub) FindByID(_ context.Context, userID string) (models.User, bool, error) {
	user, ok := stub.users[userID]
	return user, ok, nil
}

func (stub *authUserRepositoryStub) FindByNormalizedEmail(_ context.Context, email string) (models.User, bool, error) {
	for _, user := range stub.users {
		if user.Email == email {
			return user, true, nil
		}
	}
	return models.User{}, false, nil
}

func (stub *authUserRepositoryStub) FindByGoogleID(_ context.Context, googleID string) (models.User, bool, error) {
	for _, user := range stub.users {
		if user.GoogleID != nil && *user.GoogleID == googleID {
			return user, true, nil
		}
	}
	return models.User{}, false, nil
}

func (stub *authUserRepositoryStub) Create(_ context.Context, user *models.User) error {
	stub.nextID++
	user.ID = fmt.Sprintf("user-%d", stub.nextID)
	stub.users[user.ID] = *user
	return nil
}

func (stub *authUserRepositoryStub) UpdateByID(_ context.Context, userID string, updates map[string]any) error {
	stub.updates = append(stub.updates, updates)
	user, ok := stub.users[userID]
	if !ok {
		return errors.New("missing user")
	}
	for key, value := range updates {
		switch key {
		case "google_id":
			googleID := value.(string)
			user.GoogleID = &googleID
		case "name":
			user.Name = value.(string)
		case "picture":
			if picture, ok := value.(string); ok {
				user.Picture = &picture
			} else {
				user.Picture = nil
			}
		case "age":
			age := value.(int)
			user.Age = &age
		}
	}
	stub.users[userID] = user
	return nil
}

type streakRecorderStub struct {
	events []StreakEvent
	err    error
}

func (stub *streakRecorderStub) Record(_ context.Context, _ string, event StreakEvent) (StreakResult, error) {
	stub.events = append(stub.events, event)
	return StreakResult{Streak: 1}, stub.err
}

type googleVerifierStub struct {
	identity GoogleIdentity
	err      error
}

func (stub googleVerifierStub) Verify(context.Context, string) (GoogleIdentity, error) {
	return stub.identity, stub.err
}

func TestAuthServiceRegisterAndLogin(t *testing.T) {
	users := newAuthUserRepositoryStub()
	streaks := &streakRecorderStub{}
	service := NewAuthService(users, nil, streaks)
	ctx := context.Background()

	user, err := service.Register(ctx, " Maria@Example.com ", "StrongPass1", "")
	if err != nil {
		t.Fatalf("Register() unexpected error: %v", err)
	}
	if user.Email != "maria@example.com" || user.Name != "maria" {
		t.Fatalf("unexpected registered user %#v", user)
	}
	if user.PasswordHash == "" || user.PasswordHash == "StrongPass1" {
		t.Fatal("expected bcrypt hash to be stored")
	}

	if _, err := service.Register(ctx, "maria@example.com", "StrongPass1", "Maria"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
	if _, err := service.Register(ctx, "other@example.com", "weak", ""); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}

	if _, err := service.Login(ctx, "maria@example.com", "WrongPass1"); !errors.Is(err, ErrAuthCredentialsInvalid) {
		t.Fatalf("expected ErrAuthCredentialsInvalid, got %v", err)
	}
	if _, err := service.Login(ctx, "nobody@example.com", "StrongPass1"); !errors.Is(err, ErrAuthCredentialsInvalid) {
		t.Fatalf("expected ErrAuthCredentialsInvalid for unknown email, got %v", err)
	}
	loggedIn, err := service.Login(ctx, "MARIA@example.com", "StrongPass1")
	if err != nil || loggedIn.ID != user.ID {
		t.Fatalf("Login() = %#v err=%v", loggedIn, err)
	}

	if len(streaks.events) != 2 {
		t.Fatalf("expected login events for register and login, got %v", streaks.events)
	}
	for _, event := range streaks.events {
		if event != StreakEventLogin {
			t.Fatalf("expected login event, got %q", event)
		}
	}
}

func TestAuthServiceLoginRejectsGoogleOnlyAccount(t *testing.T) {
	googleID := "g-1"
	users := newAuthUserRepositoryStub(models.User{ID: "u1", Email: "ana@example.com", GoogleID: &googleID})
	service := NewAuthService(users, nil, &streakRecorderStub{})

	if _, err := service.Login(context.Background(), "ana@example.com", "StrongPass1"); !errors.Is(err, ErrAuthCredentialsInvalid) {
		t.Fatalf("expected ErrAuthCredentialsInvalid, got %v", err)
	}
}

func TestAuthServiceGoogleLogin(t *testing.T) {
	ctx := context.Background()
	identity := GoogleIdentity{Subject: "g-42", Email: "Ana@Example.com", Name: "Ana Souza", Picture: "https://example.com/a.png"}

	t.Run("disabled without verifier", func(t *testing.T) {
		service := NewAuthService(newAuthUserRepositoryStub(), nil, &streakRecorderStub{})
		if _, err := service.LoginWithGoogle(ctx, "token"); !errors.Is(err, ErrGoogleLoginDisabled) {
			t.Fatalf("expected ErrGoogleLoginDisabled, got %v", err)
		}
	})

	t.Run("rejects invalid token", func(t *testing.T) {
		service := NewAuthService(newAuthUserRepositoryStub(), googleVerifierStub{err: errors.New("bad audience")}, &streakRecorderStub{})
		if _, err := service.LoginWithGoogle(ctx, "token"); !errors.Is(err, ErrGoogleTokenInvalid) {
			t.Fatalf("expected ErrGoogleTokenInvalid, got %v", err)
		}
		if _, err := service.LoginWithGoogle(ctx, "  "); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput for empty token, got %v", err)
		}
	})

	t.Run("creates account", func(t *testing.T) {
		users := newAuthUserRepositoryStub()
		streaks := &streakRecorderStub{}
		service := NewAuthService(users, googleVerifierStub{identity: identity}, streaks)

		user, err := service.LoginWithGoogle(ctx, "token")
		if err != nil {
			t.Fatalf("LoginWithGoogle() unexpected error: %v", err)
		}
		if user.Email != "ana@example.com" || user.GoogleID == nil || *user.GoogleID != "g-42" {
			t.Fatalf("unexpected google user %#v", user)
		}
		if user.Picture == nil || *user.Picture != identity.Picture {
			t.Fatalf("expected picture from token, got %#v", user.Picture)
		}
		if len(streaks.events) != 1 || streaks.events[0] != StreakEventLogin {
			t.Fatalf("expected login streak event, got %v", streaks.events)
		}
	})

	t.Run("links existing email account", func(t *testing.T) {
		users := newAuthUserRepositoryStub(models.User{ID: "u1", Email: "ana@example.com", Name: "ana"})
		service := NewAuthService(users, googleVerifierStub{identity: identity}, &streakRecorderStub{})

		user, err := service.LoginWithGoogle(ctx, "token")
		if err != nil {
			t.Fatalf("LoginWithGoogle() unexpected error: %v", err)
		}
		if user.ID != "u1" || user.Name != "Ana Souza" || user.GoogleID == nil {
			t.Fatalf("expected linked account, got %#v", user)
		}
		if len(users.users) != 1 {
			t.Fatalf("expected no new account, got %d users", len(users.users))
		}
	})
}

func TestAuthServiceSurfacesStreakErrors(t *testing.T) {
	streaks := &streakRecorderStub{err: ErrStreakConflict}
	service := NewAuthService(newAuthUserRepositoryStub(), nil, streaks)

	if _, err := service.Register(context.Background(), "ana@example.com", "StrongPass1", "Ana"); !errors.Is(err, ErrStreakConflict) {
		t.Fatalf("expected ErrStreakConflict, got %v", err)
	}
}
