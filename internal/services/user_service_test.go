package services

import (
	"context"
	"strings"
	"testing"

	"github.com/SJJP-F-2025/requests-service/internal/models"
	"github.com/SJJP-F-2025/requests-service/internal/store"
	"github.com/SJJP-F-2025/requests-service/internal/validator"
)

func userFixture(t *testing.T) (UserService, *store.JSONStore, *stubRemote) {
	t.Helper()
	local, err := store.NewJSONStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	stub := newStubRemote()
	return NewUserService(local, stub, testLogger()), local, stub
}

func TestUserService_SaveNormalizesAndMirrors(t *testing.T) {
	svc, local, stub := userFixture(t)

	result, err := svc.Save(context.Background(), admin, []validator.UserRow{
		{PSNumber: " ps101 ", Password: "pw", Credential: "Coach", Name: "Ana"},
		{PSNumber: "PS102", Credential: "Director", Name: "Bruno"},
	})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if result.Saved != 2 || result.Synced != 2 || result.Mirrored != 2 {
		t.Errorf("expected saved=synced=mirrored=2, got %+v", result)
	}

	byPS := map[string]models.User{}
	for _, u := range store.Load[models.User](local, store.Users) {
		byPS[u.PSNumber] = u
	}
	if _, ok := byPS["PS101"]; !ok {
		t.Error("PS numbers should be upper-cased and trimmed")
	}
	if u := byPS["PS102"]; u.Credential != models.CredentialCoach {
		t.Errorf("unknown role should coerce to Coach, got %q", u.Credential)
	}
	if u := byPS["PS102"]; u.Password != "PS102" {
		t.Errorf("blank password should default to the PS number, got %q", u.Password)
	}

	coaches := stub.tables["coaches"]
	if len(coaches) != 2 {
		t.Fatalf("expected 2 mirrored coach rows, got %d", len(coaches))
	}
	if _, ok := coaches[0]["name"]; ok {
		t.Error("the coaches mirror must not carry names")
	}
}

func TestUserService_SaveValidation(t *testing.T) {
	svc, _, _ := userFixture(t)
	ctx := context.Background()

	if _, err := svc.Save(ctx, coach, []validator.UserRow{{PSNumber: "PS1"}}); !IsPermissionError(err) {
		t.Errorf("coaches must not edit users, got %v", err)
	}

	_, err := svc.Save(ctx, admin, []validator.UserRow{{PSNumber: "X123"}})
	if err == nil || !strings.Contains(err.Error(), "not a valid PS number") {
		t.Errorf("malformed PS number should abort the batch, got %v", err)
	}

	_, err = svc.Save(ctx, admin, []validator.UserRow{
		{PSNumber: "PS1"},
		{PSNumber: "ps1"},
	})
	if err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Errorf("duplicate PS numbers should abort the batch, got %v", err)
	}
}

func TestUserService_DeleteProtectsOwnAccount(t *testing.T) {
	svc, local, stub := userFixture(t)
	if err := store.Save(local, store.Users, []models.User{
		{PSNumber: "PS1724", Password: "x", Credential: models.CredentialAdmin},
		{PSNumber: "PS100", Password: "y", Credential: models.CredentialCoach},
	}); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if _, err := svc.Delete(ctx, admin, []string{"PS1724"}); err == nil {
		t.Error("deleting your own account should fail")
	}

	result, err := svc.Delete(ctx, admin, []string{"PS100"})
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if result.Deleted != 1 {
		t.Errorf("expected 1 deletion, got %+v", result)
	}
	if got := stub.deleted["users"]; len(got) != 1 || got[0] != "PS100" {
		t.Errorf("remote users delete should mirror, got %v", got)
	}
	if got := stub.deleted["coaches"]; len(got) != 1 || got[0] != "PS100" {
		t.Errorf("the coaches mirror row should go too, got %v", got)
	}
}

func TestUserService_Lookup(t *testing.T) {
	svc, local, _ := userFixture(t)
	if err := store.Save(local, store.Users, []models.User{
		{PSNumber: "PS1", Name: "Ana"},
		{PSNumber: "PS2"},
	}); err != nil {
		t.Fatal(err)
	}

	names := svc.Lookup(context.Background())
	if names["PS1"] != "Ana" {
		t.Errorf("expected Ana, got %q", names["PS1"])
	}
	if _, ok := names["PS2"]; ok {
		t.Error("users without a name should not appear in the lookup")
	}
}
