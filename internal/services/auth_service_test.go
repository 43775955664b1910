package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/SJJP-F-2025/requests-service/internal/cache"
	"github.com/SJJP-F-2025/requests-service/internal/models"
	"github.com/SJJP-F-2025/requests-service/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seededStore(t *testing.T) *store.JSONStore {
	t.Helper()
	s, err := store.NewJSONStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Save(s, store.Users, []models.User{
		{PSNumber: "PS1724", Password: "PS1724", Credential: models.CredentialAdmin, Name: "Administrator"},
		{PSNumber: "PS100", Password: "secret", Credential: models.CredentialCoach, Name: "Ana"},
		{PSNumber: "PS300", Password: "pw", Credential: "Whatever", Name: "Bad Role"},
	}); err != nil {
		t.Fatal(err)
	}
	return s
}

func memoryAuth(t *testing.T) AuthService {
	t.Helper()
	return NewAuthService(seededStore(t), cache.NewCacheHelper(nil, "test:"), time.Hour, testLogger())
}

func TestAuthService_Login(t *testing.T) {
	auth := memoryAuth(t)
	ctx := context.Background()

	t.Run("valid credentials", func(t *testing.T) {
		session, err := auth.Login(ctx, "ps100", "secret")
		if err != nil {
			t.Fatalf("login failed: %v", err)
		}
		if session.Token == "" {
			t.Error("session should carry a token")
		}
		if session.Identity.PSNumber != "PS100" || session.Identity.IsAdmin() {
			t.Errorf("unexpected identity: %+v", session.Identity)
		}
	})

	t.Run("admin role", func(t *testing.T) {
		session, err := auth.Login(ctx, "PS1724", "PS1724")
		if err != nil {
			t.Fatalf("login failed: %v", err)
		}
		if !session.Identity.IsAdmin() {
			t.Error("default admin should have the Admin credential")
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		if _, err := auth.Login(ctx, "PS100", "nope"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		if _, err := auth.Login(ctx, "PS404", "x"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("unknown credential coerces to coach", func(t *testing.T) {
		session, err := auth.Login(ctx, "PS300", "pw")
		if err != nil {
			t.Fatalf("login failed: %v", err)
		}
		if session.Identity.Credential != models.CredentialCoach {
			t.Errorf("invalid stored role should become Coach, got %q", session.Identity.Credential)
		}
	})
}

func TestAuthService_SessionLifecycle(t *testing.T) {
	auth := memoryAuth(t)
	ctx := context.Background()

	session, err := auth.Login(ctx, "PS100", "secret")
	if err != nil {
		t.Fatal(err)
	}

	got, err := auth.Session(ctx, session.Token)
	if err != nil {
		t.Fatalf("session lookup failed: %v", err)
	}
	if got.Identity.PSNumber != "PS100" {
		t.Errorf("unexpected session identity: %+v", got.Identity)
	}

	if err := auth.Logout(ctx, session.Token); err != nil {
		t.Fatal(err)
	}
	if _, err := auth.Session(ctx, session.Token); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound after logout, got %v", err)
	}

	if _, err := auth.Session(ctx, "bogus"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound for bogus token, got %v", err)
	}
}

func TestAuthService_UnsyncedTracking(t *testing.T) {
	auth := memoryAuth(t)
	ctx := context.Background()

	session, err := auth.Login(ctx, "PS100", "secret")
	if err != nil {
		t.Fatal(err)
	}

	if err := auth.MarkUnsynced(ctx, session.Token, "r1", "r2"); err != nil {
		t.Fatal(err)
	}
	got, _ := auth.Session(ctx, session.Token)
	if len(got.UnsyncedRequestIDs) != 2 {
		t.Fatalf("expected 2 unsynced ids, got %v", got.UnsyncedRequestIDs)
	}

	if err := auth.ClearUnsynced(ctx, session.Token, "r1"); err != nil {
		t.Fatal(err)
	}
	got, _ = auth.Session(ctx, session.Token)
	if len(got.UnsyncedRequestIDs) != 1 || got.UnsyncedRequestIDs[0] != "r2" {
		t.Fatalf("expected only r2 left, got %v", got.UnsyncedRequestIDs)
	}

	// No IDs clears everything.
	if err := auth.ClearUnsynced(ctx, session.Token); err != nil {
		t.Fatal(err)
	}
	got, _ = auth.Session(ctx, session.Token)
	if len(got.UnsyncedRequestIDs) != 0 {
		t.Fatalf("expected no unsynced ids, got %v", got.UnsyncedRequestIDs)
	}
}

func TestAuthService_RedisSessions(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	auth := NewAuthService(seededStore(t), cache.NewCacheHelper(client, "test:"), time.Hour, testLogger())
	ctx := context.Background()

	session, err := auth.Login(ctx, "PS1724", "PS1724")
	if err != nil {
		t.Fatal(err)
	}
	got, err := auth.Session(ctx, session.Token)
	if err != nil {
		t.Fatalf("redis-backed session lookup failed: %v", err)
	}
	if !got.Identity.IsAdmin() {
		t.Errorf("unexpected identity: %+v", got.Identity)
	}

	// Expired sessions disappear.
	mr.FastForward(2 * time.Hour)
	if _, err := auth.Session(ctx, session.Token); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound after TTL, got %v", err)
	}
}
