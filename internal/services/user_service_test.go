package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/medlembra/medlembra/internal/models"
)

func TestAvatarFor(t *testing.T) {
	picture := "https://example.com/p.png"
	if avatar := AvatarFor(models.User{Name: "Ana", Picture: &picture}); avatar != nil {
		t.Fatalf("expected no avatar with picture, got %q", *avatar)
	}

	first := AvatarFor(models.User{Name: "João"})
	second := AvatarFor(models.User{Name: "Joao"})
	if first == nil || second == nil || *first != *second {
		t.Fatal("expected avatar to depend on character count only")
	}
	if got := *AvatarFor(models.User{Name: ""}); got != avatarEmojis[0] {
		t.Fatalf("expected first avatar for empty name, got %q", got)
	}
}

func TestUserServiceProfileRecordsActivity(t *testing.T) {
	users := newAuthUserRepositoryStub(models.User{ID: "u1", Email: "ana@example.com", Name: "Ana", Streak: 4})
	streaks := &streakRecorderStub{}
	service := NewUserService(users, streaks)

	profile, err := service.Profile(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Profile() unexpected error: %v", err)
	}
	if profile.Streak != 4 || profile.Avatar == nil {
		t.Fatalf("unexpected profile %#v", profile)
	}
	if len(streaks.events) != 1 || streaks.events[0] != StreakEventProfileRead {
		t.Fatalf("expected profile_read event, got %v", streaks.events)
	}

	if _, err := service.Profile(context.Background(), "missing"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserServiceUpdateProfile(t *testing.T) {
	picture := "https://example.com/p.png"
	users := newAuthUserRepositoryStub(models.User{ID: "u1", Email: "ana@example.com", Name: "Ana", Picture: &picture})
	service := NewUserService(users, &streakRecorderStub{})
	ctx := context.Background()

	name := "  Ana Maria "
	age := 67
	empty := " "
	profile, err := service.UpdateProfile(ctx, "u1", ProfileUpdate{Name: &name, Age: &age, Picture: &empty})
	if err != nil {
		t.Fatalf("UpdateProfile() unexpected error: %v", err)
	}
	if profile.Name != "Ana Maria" || profile.Age == nil || *profile.Age != 67 {
		t.Fatalf("unexpected profile %#v", profile)
	}
	if profile.Picture != nil || profile.Avatar == nil {
		t.Fatalf("expected cleared picture to fall back to avatar, got %#v", profile)
	}

	tooLong := strings.Repeat("a", maxDisplayNameLength+1)
	negative := -1
	invalid := []ProfileUpdate{
		{Name: &empty},
		{Name: &tooLong},
		{Age: &negative},
	}
	for _, update := range invalid {
		if _, err := service.UpdateProfile(ctx, "u1", update); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput for %#v, got %v", update, err)
		}
	}
}
