package services

import (
	"context"
	"strings"
	"testing"

	"github.com/SJJP-F-2025/requests-service/internal/models"
	"github.com/SJJP-F-2025/requests-service/internal/store"
	"github.com/SJJP-F-2025/requests-service/internal/validator"
)

func schoolFixture(t *testing.T) (SchoolService, *store.JSONStore, *stubRemote) {
	t.Helper()
	local, err := store.NewJSONStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	stub := newStubRemote()
	return NewSchoolService(local, stub, testLogger()), local, stub
}

func TestSchoolService_SaveNormalizesCoaches(t *testing.T) {
	svc, local, stub := schoolFixture(t)

	result, err := svc.Save(context.Background(), admin, []validator.SchoolRow{
		{ID: "S1", Nome: "Escola Azul", City: "Lisboa", Coaches: []string{" ps100 ", "PS100", "banana", "PS200"}},
	})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if result.Saved != 1 || result.Synced != 1 {
		t.Errorf("expected saved=synced=1, got %+v", result)
	}
	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0], "banana") {
		t.Errorf("invalid coach entries should warn, got %v", result.Warnings)
	}

	schools := store.Load[models.School](local, store.Schools)
	if len(schools) != 1 {
		t.Fatalf("expected 1 school, got %d", len(schools))
	}
	got := []string(schools[0].Coaches)
	if len(got) != 2 || got[0] != "PS100" || got[1] != "PS200" {
		t.Errorf("coaches should normalize and dedupe, got %v", got)
	}
	if len(stub.tables["schools"]) != 1 {
		t.Error("the school should reach the remote store")
	}
}

func TestSchoolService_SaveRequiresID(t *testing.T) {
	svc, local, _ := schoolFixture(t)

	_, err := svc.Save(context.Background(), admin, []validator.SchoolRow{
		{ID: "S1", Nome: "Ok"},
		{Nome: "No ID"},
	})
	if err == nil || !strings.Contains(err.Error(), "school id is required") {
		t.Errorf("a row without an ID should abort the batch, got %v", err)
	}
	if len(store.Load[models.School](local, store.Schools)) != 0 {
		t.Error("an aborted batch must not write anything")
	}
}

func TestSchoolService_AdminOnlyMutations(t *testing.T) {
	svc, _, _ := schoolFixture(t)
	ctx := context.Background()

	if _, err := svc.Save(ctx, coach, []validator.SchoolRow{{ID: "S1"}}); !IsPermissionError(err) {
		t.Errorf("coaches must not edit schools, got %v", err)
	}
	if _, err := svc.Delete(ctx, coach, []string{"S1"}); !IsPermissionError(err) {
		t.Errorf("coaches must not delete schools, got %v", err)
	}
}

func TestSchoolService_Delete(t *testing.T) {
	svc, local, stub := schoolFixture(t)
	if err := store.Save(local, store.Schools, []models.School{
		{ID: "S1"}, {ID: "S2"},
	}); err != nil {
		t.Fatal(err)
	}

	result, err := svc.Delete(context.Background(), admin, []string{"S2", "S404"})
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if result.Deleted != 1 {
		t.Errorf("expected 1 deletion, got %+v", result)
	}
	if remaining := store.Load[models.School](local, store.Schools); len(remaining) != 1 || remaining[0].ID != "S1" {
		t.Errorf("unexpected remaining schools: %+v", remaining)
	}
	if got := stub.deleted["schools"]; len(got) != 1 || got[0] != "S2" {
		t.Errorf("remote delete should mirror, got %v", got)
	}
}
