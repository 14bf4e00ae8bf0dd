package services

import (
	"bytes"
	"encoding/json"

	catalog_errors "catalog-service/pkg/errors"

	"github.com/google/uuid"
)

// OptionalString distinguishes an absent field from an explicit null from a
// value. On update, absent means "leave unchanged" while null means "clear".
type OptionalString struct {
	Set   bool
	Valid bool
	Value string
}

func StringValue(s string) OptionalString {
	return OptionalString{Set: true, Valid: true, Value: s}
}

func StringNull() OptionalString {
	return OptionalString{Set: true}
}

// ImageDescriptor is one normalized entry of the caller's metadata array.
// Exactly one of FileIdx (new upload) or ImageID (existing row) is set;
// the planner enforces that.
type ImageDescriptor struct {
	FileIdx     *int
	ImageID     *uuid.UUID
	Name        OptionalString
	Description OptionalString
	Active      *bool
	Main        *bool
	Delete      *bool
}

// MetadataValidator type-checks and normalizes raw descriptor objects.
// Every violation is reported with a stable message key attributed to the
// batch-level metadata field; the first failing field of the first failing
// item wins.
type MetadataValidator struct {
	nameMaxLen        int
	descriptionMaxLen int
}

func NewMetadataValidator(nameMaxLen, descriptionMaxLen int) *MetadataValidator {
	return &MetadataValidator{
		nameMaxLen:        nameMaxLen,
		descriptionMaxLen: descriptionMaxLen,
	}
}

var nullToken = []byte("null")

func isNullToken(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), nullToken)
}

// Parse validates the metadata payload and returns the normalized
// descriptor list. A payload that is not a JSON array is a batch-level
// error before any item is looked at.
func (v *MetadataValidator) Parse(raw json.RawMessage) ([]ImageDescriptor, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, catalog_errors.NewValidation(catalog_errors.KeyMetadataArrayInvalid)
	}

	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, catalog_errors.NewValidation(catalog_errors.KeyMetadataArrayInvalid)
	}

	descriptors := make([]ImageDescriptor, 0, len(items))
	for _, item := range items {
		desc, err := v.parseItem(item)
		if err != nil {
			return nil, err
		}
		descriptors = append(descriptors, desc)
	}
	return descriptors, nil
}

func (v *MetadataValidator) parseItem(item json.RawMessage) (ImageDescriptor, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(item, &fields); err != nil {
		return ImageDescriptor{}, catalog_errors.NewValidation(catalog_errors.KeyMetadataArrayInvalid)
	}

	var desc ImageDescriptor
	var err error

	if raw, ok := fields["fileIdx"]; ok {
		var idx int
		if isNullToken(raw) || json.Unmarshal(raw, &idx) != nil || idx < 0 {
			return ImageDescriptor{}, catalog_errors.NewValidation(catalog_errors.KeyFileIndexInvalid)
		}
		desc.FileIdx = &idx
	}

	if raw, ok := fields["imageId"]; ok {
		var s string
		if isNullToken(raw) || json.Unmarshal(raw, &s) != nil {
			return ImageDescriptor{}, catalog_errors.NewValidation(catalog_errors.KeyImageIDInvalid)
		}
		id, parseErr := uuid.Parse(s)
		if parseErr != nil {
			return ImageDescriptor{}, catalog_errors.NewValidation(catalog_errors.KeyImageIDInvalid)
		}
		desc.ImageID = &id
	}

	desc.Name, err = v.parseText(fields, "name", v.nameMaxLen,
		catalog_errors.KeyNameInvalidType, catalog_errors.KeyNameTooLong)
	if err != nil {
		return ImageDescriptor{}, err
	}

	desc.Description, err = v.parseText(fields, "description", v.descriptionMaxLen,
		catalog_errors.KeyDescriptionInvalidType, catalog_errors.KeyDescriptionTooLong)
	if err != nil {
		return ImageDescriptor{}, err
	}

	desc.Active, err = parseFlag(fields, "active",
		catalog_errors.KeyActiveNull, catalog_errors.KeyActiveInvalidType)
	if err != nil {
		return ImageDescriptor{}, err
	}

	desc.Main, err = parseFlag(fields, "main",
		catalog_errors.KeyMainNull, catalog_errors.KeyMainInvalidType)
	if err != nil {
		return ImageDescriptor{}, err
	}

	desc.Delete, err = parseFlag(fields, "delete",
		catalog_errors.KeyDeleteNull, catalog_errors.KeyDeleteInvalidType)
	if err != nil {
		return ImageDescriptor{}, err
	}

	return desc, nil
}

// parseText accepts absent, null or a bounded string. Empty string and null
// are both valid explicit "clear" values; anything non-string is a type error.
func (v *MetadataValidator) parseText(fields map[string]json.RawMessage, key string, maxLen int, typeKey, lenKey catalog_errors.MessageKey) (OptionalString, error) {
	raw, ok := fields[key]
	if !ok {
		return OptionalString{}, nil
	}
	if isNullToken(raw) {
		return StringNull(), nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return OptionalString{}, catalog_errors.NewValidation(typeKey)
	}
	if len(s) > maxLen {
		return OptionalString{}, catalog_errors.NewValidation(lenKey)
	}
	return StringValue(s), nil
}

// parseFlag accepts absent or a boolean. Null is rejected with its own key:
// the tri-state "explicit null" has no meaning for booleans here.
func parseFlag(fields map[string]json.RawMessage, key string, nullKey, typeKey catalog_errors.MessageKey) (*bool, error) {
	raw, ok := fields[key]
	if !ok {
		return nil, nil
	}
	if isNullToken(raw) {
		return nil, catalog_errors.NewValidation(nullKey)
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, catalog_errors.NewValidation(typeKey)
	}
	return &b, nil
}
