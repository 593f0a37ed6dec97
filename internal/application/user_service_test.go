package application

import (
	"context"
	"errors"
	"testing"
)

func newTestUserService(repo *userRepoStub) *UserService {
	ids := 0
	return NewUserService(repo, fakeHash, func() string {
		ids++
		return "user-" + string(rune('0'+ids))
	}, fixedNow)
}

func TestUserService_Register(t *testing.T) {
	t.Run("creates account with hashed password", func(t *testing.T) {
		repo := newUserRepoStub()
		svc := newTestUserService(repo)

		user, err := svc.Register(context.Background(), RegisterInput{Name: " Ada ", Email: "Ada@Example.com ", Password: "s3cret-pass"})
		if err != nil {
			t.Fatalf("Register returned error: %v", err)
		}
		if user.ID != "user-1" || user.Name != "Ada" || user.Email != "ada@example.com" || user.IsAdmin {
			t.Fatalf("unexpected user %+v", user)
		}
		if stored := repo.users["user-1"]; stored.PasswordHash != "hashed:s3cret-pass" {
			t.Fatalf("expected hashed password to be stored, got %q", stored.PasswordHash)
		}
	})

	t.Run("validates fields", func(t *testing.T) {
		svc := newTestUserService(newUserRepoStub())

		_, err := svc.Register(context.Background(), RegisterInput{Email: "not-an-email", Password: "short"})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		for _, field := range []string{"name", "email", "password"} {
			if _, ok := vErr.FieldErrors[field]; !ok {
				t.Fatalf("expected %s error, got %+v", field, vErr.FieldErrors)
			}
		}
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		svc := newTestUserService(newUserRepoStub())
		input := RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "s3cret-pass"}

		if _, err := svc.Register(context.Background(), input); err != nil {
			t.Fatalf("first Register returned error: %v", err)
		}
		input.Email = "ADA@example.com"
		if _, err := svc.Register(context.Background(), input); !errors.Is(err, ErrEmailTaken) {
			t.Fatalf("expected ErrEmailTaken, got %v", err)
		}
	})
}

func TestUserService_RegisterAdmin(t *testing.T) {
	repo := newUserRepoStub()
	svc := newTestUserService(repo)
	input := RegisterInput{Name: "Root", Email: "root@example.com", Password: "s3cret-pass"}

	first, err := svc.RegisterAdmin(context.Background(), input)
	if err != nil {
		t.Fatalf("RegisterAdmin returned error: %v", err)
	}
	if !first.IsAdmin {
		t.Fatalf("expected admin account")
	}

	again, err := svc.RegisterAdmin(context.Background(), input)
	if err != nil {
		t.Fatalf("second RegisterAdmin returned error: %v", err)
	}
	if again.ID != first.ID {
		t.Fatalf("expected existing account %s, got %s", first.ID, again.ID)
	}
}

func TestUserService_Profile(t *testing.T) {
	repo := newUserRepoStub()
	svc := newTestUserService(repo)
	created, _ := svc.Register(context.Background(), RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "s3cret-pass"})

	user, err := svc.Profile(context.Background(), Principal{UserID: created.ID})
	if err != nil {
		t.Fatalf("Profile returned error: %v", err)
	}
	if user.Email != "ada@example.com" {
		t.Fatalf("unexpected profile %+v", user)
	}

	if _, err := svc.Profile(context.Background(), Principal{UserID: "ghost"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
