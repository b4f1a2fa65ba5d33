package errors

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ImportErrorKind tags the variant of an ImportError
type ImportErrorKind string

const (
	KindValidation ImportErrorKind = "ValidationError"
	KindForeignKey ImportErrorKind = "ForeignkeyResolutionError"
	KindGeneral    ImportErrorKind = "GeneralImportError"
)

// RowLocation points either at one worksheet row (1-based, header excluded) or at the
// worksheet as a whole. The zero value is the batch-level location.
type RowLocation struct {
	row int
}

// BatchLevel is the location of errors about a whole worksheet or batch
var BatchLevel = RowLocation{}

// Row returns the location of the n-th data row. Non-positive n yields BatchLevel.
func Row(n int) RowLocation {
	if n < 1 {
		return BatchLevel
	}
	return RowLocation{row: n}
}

// IsBatchLevel reports whether the location is not tied to a single row
func (l RowLocation) IsBatchLevel() bool {
	return l.row == 0
}

// Number returns the row number and false for batch-level locations
func (l RowLocation) Number() (int, bool) {
	return l.row, l.row > 0
}

func (l RowLocation) String() string {
	if l.IsBatchLevel() {
		return "batch"
	}
	return fmt.Sprintf("row %d", l.row)
}

func (l RowLocation) MarshalJSON() ([]byte, error) {
	if l.IsBatchLevel() {
		return []byte("null"), nil
	}
	return json.Marshal(l.row)
}

func (l *RowLocation) UnmarshalJSON(data []byte) error {
	var n *int
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	if n == nil {
		*l = BatchLevel
		return nil
	}
	*l = Row(*n)
	return nil
}

// ImportError is one problem found while importing a workbook. Row-scoped kinds carry the
// worksheet title and location; GeneralImportError wraps an unexpected failure.
type ImportError struct {
	Kind      ImportErrorKind `json:"kind"`
	SheetName string          `json:"sheetName,omitempty"`
	DataType  string          `json:"dataType,omitempty"`
	Location  RowLocation     `json:"row"`
	Message   string          `json:"message"`

	cause error
}

func (e *ImportError) Error() string {
	if e.Kind == KindGeneral || e.SheetName == "" {
		return e.Message
	}
	if n, ok := e.Location.Number(); ok {
		return fmt.Sprintf("%s on %s at row %d", e.Message, e.SheetName, n)
	}
	return fmt.Sprintf("%s on %s", e.Message, e.SheetName)
}

func (e *ImportError) Unwrap() error {
	return e.cause
}

func (e *ImportError) MarshalJSON() ([]byte, error) {
	type alias ImportError
	return json.Marshal(struct {
		*alias
		Display string `json:"display"`
	}{alias: (*alias)(e), Display: e.Error()})
}

// NewRowValidationError reports a field or rule failure
func NewRowValidationError(sheetName, dataType string, loc RowLocation, message string) *ImportError {
	return &ImportError{Kind: KindValidation, SheetName: sheetName, DataType: dataType, Location: loc, Message: message}
}

// NewForeignKeyError reports a reference that matched nothing in the batch or the database
func NewForeignKeyError(sheetName, dataType string, loc RowLocation, message string) *ImportError {
	return &ImportError{Kind: KindForeignKey, SheetName: sheetName, DataType: dataType, Location: loc, Message: message}
}

// NewGeneralImportError wraps an unexpected failure
func NewGeneralImportError(err error) *ImportError {
	return &ImportError{Kind: KindGeneral, Message: err.Error(), cause: err}
}

// IsImportErrorKind reports whether err is an ImportError of the given kind
func IsImportErrorKind(err error, kind ImportErrorKind) bool {
	var ie *ImportError
	return errors.As(err, &ie) && ie.Kind == kind
}
