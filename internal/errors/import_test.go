package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
)

func TestRowLocation(t *testing.T) {
	if !BatchLevel.IsBatchLevel() {
		t.Errorf("Expected BatchLevel to be batch level")
	}
	if !Row(0).IsBatchLevel() || !Row(-1).IsBatchLevel() {
		t.Errorf("Expected non-positive rows to collapse to batch level")
	}

	n, ok := Row(3).Number()
	if !ok || n != 3 {
		t.Errorf("Expected row 3, got %d (%v)", n, ok)
	}
	if _, ok := BatchLevel.Number(); ok {
		t.Errorf("Expected batch level to have no row number")
	}
}

func TestRowLocationJSON(t *testing.T) {
	data, err := json.Marshal(struct {
		A RowLocation `json:"a"`
		B RowLocation `json:"b"`
	}{A: Row(7), B: BatchLevel})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if string(data) != `{"a":7,"b":null}` {
		t.Errorf("Unexpected JSON %s", data)
	}

	var loc RowLocation
	if err := json.Unmarshal([]byte("12"), &loc); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if n, _ := loc.Number(); n != 12 {
		t.Errorf("Expected row 12, got %d", n)
	}
}

func TestImportErrorMessages(t *testing.T) {
	rowErr := NewRowValidationError("Triage Reason", "triageReason", Row(4), "duplicate id: triage-dupeid")
	if rowErr.Error() != "duplicate id: triage-dupeid on Triage Reason at row 4" {
		t.Errorf("Unexpected message '%s'", rowErr.Error())
	}

	batchErr := NewRowValidationError("Lab Test Type", "labTestType", BatchLevel, "Only sensitive lab test types allowed in sensitive category")
	if batchErr.Error() != "Only sensitive lab test types allowed in sensitive category on Lab Test Type" {
		t.Errorf("Unexpected message '%s'", batchErr.Error())
	}

	fkErr := NewForeignKeyError("Permission", "permission", Row(20), "valid foreign key expected in column role (corresponding to roleId) but found: invalid")
	if !IsImportErrorKind(fkErr, KindForeignKey) {
		t.Errorf("Expected a foreign key error")
	}
	if IsImportErrorKind(fkErr, KindValidation) {
		t.Errorf("Foreign key error must not match the validation kind")
	}
}

func TestGeneralImportErrorWrapsCause(t *testing.T) {
	cause := errors.New("open ./missing.xlsx: no such file or directory")
	err := NewGeneralImportError(fmt.Errorf("read workbook: %w", cause))

	if err.Error() != "read workbook: open ./missing.xlsx: no such file or directory" {
		t.Errorf("Unexpected message '%s'", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Errorf("Expected the cause to be reachable with errors.Is")
	}
}
