package http

import (
	"errors"
	"testing"
)

func TestDec2Validation(t *testing.T) {
	type P struct {
		Amount float64 `validate:"dec2"`
	}
	cv := NewValidator()

	for _, v := range []float64{1.29, 2.00, 0.9, 1.2, 2500} {
		if err := cv.Validate(P{Amount: v}); err != nil {
			t.Fatalf("expected dec2 OK for %v, got %v", v, err)
		}
	}
	for _, v := range []float64{1.234, 2.9999} {
		err := cv.Validate(P{Amount: v})
		if err == nil {
			t.Fatalf("expected dec2 error for %v", v)
		}
		fe := ToFieldErrors(err)
		if !containsFieldMsg(fe, "Amount", "at most 2 decimal places") {
			t.Fatalf("expected 'at most 2 decimal places' for %v, got %+v", v, fe)
		}
	}
}

func TestOneofMapping(t *testing.T) {
	type P struct {
		Currency string `validate:"oneof=USD EUR GBP SAR AED"`
	}
	cv := NewValidator()

	if err := cv.Validate(P{Currency: "SAR"}); err != nil {
		t.Fatalf("expected SAR accepted, got %v", err)
	}
	err := cv.Validate(P{Currency: "IDR"})
	if err == nil {
		t.Fatalf("expected oneof error for IDR")
	}
	fe := ToFieldErrors(err)
	if !containsFieldMsg(fe, "Currency", "must be one of") {
		t.Fatalf("expected oneof message, got %+v", fe)
	}
}

func TestRequiredAndBoundsMapping(t *testing.T) {
	type P struct {
		Name   string  `validate:"required"`
		Months int     `validate:"gte=1,lte=240"`
		Amount float64 `validate:"dec2,gt=0"`
	}
	cv := NewValidator()

	// Intentionally violate all
	err := cv.Validate(P{
		Name:   "",     // required
		Months: 241,    // lte=240
		Amount: -1.333, // dec2 triggers before gt
	})
	if err == nil {
		t.Fatalf("expected validation errors")
	}
	fe := ToFieldErrors(err)

	// required
	if !containsFieldMsg(fe, "Name", "is required") {
		t.Fatalf("missing 'is required' for Name: %+v", fe)
	}
	// lte
	if !containsFieldMsg(fe, "Months", "less than or equal to 240") {
		t.Fatalf("missing lte message for Months: %+v", fe)
	}
	// dec2 mapping should show for Amount
	if !containsFieldMsg(fe, "Amount", "at most 2 decimal places") {
		t.Fatalf("missing dec2 message for Amount: %+v", fe)
	}

	// gte on its own
	err = cv.Validate(P{Name: "ok", Months: 0, Amount: 10})
	if err == nil {
		t.Fatalf("expected gte error")
	}
	fe = ToFieldErrors(err)
	if !containsFieldMsg(fe, "Months", "greater than or equal to 1") {
		t.Fatalf("missing gte message for Months: %+v", fe)
	}
}

func TestToFieldErrors_NonValidation(t *testing.T) {
	err := errors.New("boom")
	fe := ToFieldErrors(err)
	if len(fe) != 1 {
		t.Fatalf("expected 1 field error, got %d", len(fe))
	}
	if fe[0].Field != "_" || fe[0].Message != "boom" {
		t.Fatalf("unexpected mapping: %+v", fe[0])
	}
}
