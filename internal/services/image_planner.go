package services

import (
	"catalog-service/internal/domain/image"
	catalog_errors "catalog-service/pkg/errors"

	"github.com/google/uuid"
)

// UploadFile is one raw uploaded file, already read into memory.
type UploadFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

type OpKind int

const (
	OpCreate OpKind = iota
	OpUpdate
	OpDelete
)

// PlannedOp is one typed operation derived from a descriptor. For Create,
// File is set; for Update and Delete, Target is the existing row. A Create
// with ArchiveAfterStore stores the file, then immediately moves it to the
// deleted tier.
type PlannedOp struct {
	Kind              OpKind
	Desc              ImageDescriptor
	File              *UploadFile
	Target            *image.Image
	ArchiveAfterStore bool
}

// ReconciliationPlan is the full batch decision, computed before any blob
// or row mutation. Demote lists the currently-main images to flip to
// main=false before the ops run, so the single-main invariant holds at
// every step.
type ReconciliationPlan struct {
	Ops    []PlannedOp
	Demote []uuid.UUID
}

// PlanReconciliation matches descriptors against uploads and current rows
// and classifies each into Create, Update or Delete. The whole batch is
// rejected before anything runs when a descriptor is unresolvable or more
// than one entry would end up main.
func PlanReconciliation(files []UploadFile, descriptors []ImageDescriptor, existing []image.Image) (*ReconciliationPlan, error) {
	if len(files) == 0 && len(descriptors) == 0 {
		return nil, catalog_errors.NewValidation(catalog_errors.KeyNothingToDo)
	}

	byID := make(map[uuid.UUID]*image.Image, len(existing))
	for i := range existing {
		byID[existing[i].ID] = &existing[i]
	}

	plan := &ReconciliationPlan{Ops: make([]PlannedOp, 0, len(descriptors))}
	claimedFiles := make(map[int]bool, len(files))
	mainCount := 0
	var mainTarget *uuid.UUID // existing row that stays main, if any

	for _, desc := range descriptors {
		switch {
		case desc.FileIdx != nil && desc.ImageID != nil:
			return nil, catalog_errors.NewValidation(catalog_errors.KeyTargetAmbiguous)

		case desc.FileIdx != nil:
			idx := *desc.FileIdx
			if idx >= len(files) || claimedFiles[idx] {
				return nil, catalog_errors.NewValidation(catalog_errors.KeyFileIndexInvalid)
			}
			claimedFiles[idx] = true

			op := PlannedOp{
				Kind:              OpCreate,
				Desc:              desc,
				File:              &files[idx],
				ArchiveAfterStore: desc.Delete != nil && *desc.Delete,
			}
			if desc.Main != nil && *desc.Main && !op.ArchiveAfterStore {
				mainCount++
			}
			plan.Ops = append(plan.Ops, op)

		case desc.ImageID != nil:
			target, ok := byID[*desc.ImageID]
			if !ok {
				return nil, catalog_errors.ErrNotFound
			}

			if desc.Delete != nil && *desc.Delete {
				plan.Ops = append(plan.Ops, PlannedOp{Kind: OpDelete, Desc: desc, Target: target})
				continue
			}

			if desc.Main != nil && *desc.Main {
				mainCount++
				id := target.ID
				mainTarget = &id
			}
			plan.Ops = append(plan.Ops, PlannedOp{Kind: OpUpdate, Desc: desc, Target: target})

		default:
			return nil, catalog_errors.NewValidation(catalog_errors.KeyTargetMissing)
		}
	}

	if mainCount > 1 {
		return nil, catalog_errors.NewValidation(catalog_errors.KeyMultipleMains)
	}

	// Files no descriptor claimed would be silently dropped; reject instead.
	if len(claimedFiles) < len(files) {
		return nil, catalog_errors.NewValidation(catalog_errors.KeyMetadataLengthMismatch)
	}

	// Promoting a new main demotes every other currently-main row. Demotion
	// alone never changes a tier, so it is metadata-only.
	if mainCount == 1 {
		for i := range existing {
			if !existing[i].Main {
				continue
			}
			if mainTarget != nil && existing[i].ID == *mainTarget {
				continue
			}
			plan.Demote = append(plan.Demote, existing[i].ID)
		}
	}

	return plan, nil
}

// DefaultDescriptors builds one unlabeled descriptor per uploaded file,
// used when the caller supplies files without a metadata array.
func DefaultDescriptors(files []UploadFile) []ImageDescriptor {
	descriptors := make([]ImageDescriptor, len(files))
	for i := range files {
		idx := i
		descriptors[i].FileIdx = &idx
	}
	return descriptors
}
