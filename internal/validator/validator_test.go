package validator

import (
	"errors"
	"testing"
)

func TestValidPSNumber(t *testing.T) {
	valid := []string{"PS1", "PS1724", "PS000123"}
	for _, ps := range valid {
		if !ValidPSNumber(ps) {
			t.Errorf("%q should be valid", ps)
		}
	}

	invalid := []string{"", "ps1724", "PS", "PS12X", "XPS12", "PS 12"}
	for _, ps := range invalid {
		if ValidPSNumber(ps) {
			t.Errorf("%q should be invalid", ps)
		}
	}
}

func TestValidator_RequestItem(t *testing.T) {
	v := New()

	if err := v.Validate(RequestItem{SchoolID: "S1", Category: "Judogi", Material: "Kimono", Quantity: 1}); err != nil {
		t.Errorf("valid item should pass, got %v", err)
	}

	err := v.Validate(RequestItem{SchoolID: "S1", Category: "Judogi", Material: "Kimono"})
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected typed validation errors, got %v", err)
	}
	if len(verrs) != 1 || verrs[0].Field != "Quantity" {
		t.Errorf("expected a Quantity error, got %+v", verrs)
	}
}

func TestValidator_StatusUpdate(t *testing.T) {
	v := New()

	if err := v.Validate(StatusUpdate{IDs: []string{"r1"}, Status: "Approved"}); err != nil {
		t.Errorf("valid update should pass, got %v", err)
	}
	if err := v.Validate(StatusUpdate{IDs: []string{"r1"}, Status: "Lost"}); err == nil {
		t.Error("unknown status should fail")
	}
	if err := v.Validate(StatusUpdate{Status: "Approved"}); err == nil {
		t.Error("empty id batch should fail")
	}
}

func TestValidator_CustomRules(t *testing.T) {
	v := New()

	type probe struct {
		PS   string `validate:"omitempty,ps_number"`
		Role string `validate:"omitempty,credential"`
	}

	if err := v.Validate(probe{PS: "PS77", Role: "Admin"}); err != nil {
		t.Errorf("valid probe should pass, got %v", err)
	}
	if err := v.Validate(probe{PS: "77"}); err == nil {
		t.Error("ps_number rule should reject a bare number")
	}
	if err := v.Validate(probe{Role: "Director"}); err == nil {
		t.Error("credential rule should reject unknown roles")
	}
}
