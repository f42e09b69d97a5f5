package models

import (
	"time"

	"github.com/google/uuid"
)

// Display fallbacks for footages saved without a name or label.
const (
	DefaultName  = "Untitled"
	DefaultLabel = "Unlabeled"
)

// Footage is one analyzed video owned by a single user (keyed by email).
// Rows are immutable after creation: the system only creates and lists them.
type Footage struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Label      string    `json:"label"`
	Analysis   string    `json:"analysis"`
	UploadDate time.Time `json:"upload_date"`
}

func NewFootage(email, name, label, analysis string) *Footage {
	return &Footage{
		ID:         uuid.New().String(),
		Email:      email,
		Name:       name,
		Label:      label,
		Analysis:   analysis,
		UploadDate: time.Now(),
	}
}

// DisplayName returns the name with the "Untitled" fallback applied.
func (f *Footage) DisplayName() string {
	if f.Name == "" {
		return DefaultName
	}
	return f.Name
}

// DisplayLabel returns the label with the "Unlabeled" fallback applied.
// The fallback is cosmetic only: label aggregation excludes footages
// with an empty label rather than counting them under "Unlabeled".
func (f *Footage) DisplayLabel() string {
	if f.Label == "" {
		return DefaultLabel
	}
	return f.Label
}
