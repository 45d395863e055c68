package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ResumeStore defines owner-scoped persistence operations for resumes.
type ResumeStore interface {
	Create(ctx context.Context, resume Resume) (Resume, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]Resume, error)
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (Resume, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, upd ResumeUpdate) (Resume, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}

// Resume is an uploaded resume and its optional ATS analysis.
type Resume struct {
	ID           uuid.UUID  `json:"id"`
	OwnerID      uuid.UUID  `json:"userId"`
	FileName     string     `json:"fileName"`
	FileURL      string     `json:"fileUrl"`
	FileSize     int64      `json:"fileSize"`
	StorageKey   string     `json:"-"`
	ATSScore     *int       `json:"atsScore"`
	Strengths    []string   `json:"strengths"`
	Improvements []string   `json:"improvements"`
	Keywords     []string   `json:"keywords"`
	AnalyzedAt   *time.Time `json:"analyzedAt"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// ResumeUpdate is a partial resume change. Nil fields are left untouched.
// AnalyzedAt is filled by the service, never by clients.
type ResumeUpdate struct {
	FileName     *string    `json:"fileName"`
	FileURL      *string    `json:"fileUrl"`
	FileSize     *int64     `json:"fileSize"`
	ATSScore     *int       `json:"atsScore"`
	Strengths    *[]string  `json:"strengths"`
	Improvements *[]string  `json:"improvements"`
	Keywords     *[]string  `json:"keywords"`
	AnalyzedAt   *time.Time `json:"-"`
}

// Apply copies the set fields of upd onto r.
func (r *Resume) Apply(upd ResumeUpdate) {
	if upd.FileName != nil {
		r.FileName = *upd.FileName
	}
	if upd.FileURL != nil {
		r.FileURL = *upd.FileURL
	}
	if upd.FileSize != nil {
		r.FileSize = *upd.FileSize
	}
	if upd.ATSScore != nil {
		score := *upd.ATSScore
		r.ATSScore = &score
	}
	if upd.Strengths != nil {
		r.Strengths = NonNilStrings(*upd.Strengths)
	}
	if upd.Improvements != nil {
		r.Improvements = NonNilStrings(*upd.Improvements)
	}
	if upd.Keywords != nil {
		r.Keywords = NonNilStrings(*upd.Keywords)
	}
	if upd.AnalyzedAt != nil {
		at := *upd.AnalyzedAt
		r.AnalyzedAt = &at
	}
}

// Normalize replaces nil lists with empty ones.
func (r *Resume) Normalize() {
	r.Strengths = NonNilStrings(r.Strengths)
	r.Improvements = NonNilStrings(r.Improvements)
	r.Keywords = NonNilStrings(r.Keywords)
}

// NonNilStrings returns s, or an empty slice when s is nil.
func NonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
