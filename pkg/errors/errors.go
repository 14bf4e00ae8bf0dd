package catalog_errors

import (
	"errors"
	"time"
)

// Common errors
var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrInvalidInput       = errors.New("invalid input")
	ErrTooLarge           = errors.New("file too large")
	ErrAlreadyExists      = errors.New("already exists")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrStorageUnavailable = errors.New("object storage not configured")
)

// MessageKey is a stable, machine-readable validation failure key.
// Keys are part of the API contract and never reworded.
type MessageKey string

const (
	KeyNameTooLong            MessageKey = "name-too-long"
	KeyNameInvalidType        MessageKey = "name-invalid-type"
	KeyDescriptionTooLong     MessageKey = "description-too-long"
	KeyDescriptionInvalidType MessageKey = "description-invalid-type"
	KeyActiveNull             MessageKey = "active-null"
	KeyActiveInvalidType      MessageKey = "active-invalid-type"
	KeyMainNull               MessageKey = "main-null"
	KeyMainInvalidType        MessageKey = "main-invalid-type"
	KeyDeleteNull             MessageKey = "delete-null"
	KeyDeleteInvalidType      MessageKey = "delete-invalid-type"
	KeyFileIndexInvalid       MessageKey = "file-index-invalid"
	KeyImageIDInvalid         MessageKey = "image-id-invalid"
	KeyTargetAmbiguous        MessageKey = "target-ambiguous"
	KeyTargetMissing          MessageKey = "target-missing"
	KeyMultipleMains          MessageKey = "multiple-mains"
	KeyMetadataArrayInvalid   MessageKey = "metadata-array-invalid"
	KeyMetadataLengthMismatch MessageKey = "metadata-length-mismatch"
	KeyNothingToDo            MessageKey = "nothing-to-do"
)

// ValidationError is a batch-level validation failure attributable to the
// metadata field. Handlers render it as a 422 response.
type ValidationError struct {
	Key MessageKey
}

func (e *ValidationError) Error() string {
	return string(e.Key)
}

func NewValidation(key MessageKey) *ValidationError {
	return &ValidationError{Key: key}
}

// AsValidation unwraps err into a ValidationError if it is one.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// NowPtr returns a pointer to current time
func NowPtr() *time.Time {
	now := time.Now()
	return &now
}
