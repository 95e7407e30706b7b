package validation

import (
	"errors"
	"reflect"
	"testing"
)

type employeeForm struct {
	Name  string `json:"name" validate:"required"`
	Role  string `json:"role" validate:"required"`
	Phone string `json:"phone" validate:"required"`
}

func TestStruct(t *testing.T) {
	if err := Struct(employeeForm{Name: "김민수", Role: "매니저", Phone: "010-1234-5678"}, "모든 항목을 입력해주세요."); err != nil {
		t.Fatalf("Expected complete form to pass, got %v", err)
	}

	err := Struct(employeeForm{Name: "김민수"}, "모든 항목을 입력해주세요.")
	if err == nil {
		t.Fatalf("Expected missing fields to fail")
	}
	var ve *Error
	if !errors.As(err, &ve) {
		t.Fatalf("Expected *Error, got %T", err)
	}
	if !reflect.DeepEqual(ve.Fields, []string{"role", "phone"}) {
		t.Errorf("Expected fields [role phone], got %v", ve.Fields)
	}
	if ve.Message != "모든 항목을 입력해주세요." {
		t.Errorf("Expected user message to be kept, got %q", ve.Message)
	}
	if !IsValidation(err) {
		t.Errorf("Expected IsValidation to be true")
	}
}

func TestNew(t *testing.T) {
	err := New("파일을 선택해 주세요.")
	if err.Error() != "파일을 선택해 주세요." {
		t.Errorf("Expected plain message, got %q", err.Error())
	}
	if IsValidation(errors.New("other")) {
		t.Errorf("Expected plain errors not to count as validation")
	}
}
