package entity

import (
	"time"

	"github.com/google/uuid"
)

// Base is embedded by soft-deletable records.
type Base struct {
	ID        uuid.UUID  `db:"id"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at"`
}

// NewBase returns a fresh id stamped with now.
func NewBase(now time.Time) Base {
	return Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
}

// Deleted reports whether the record was soft-deleted.
func (b Base) Deleted() bool {
	return b.DeletedAt != nil
}

// BaseNoDelete is for editable records removed with a hard delete (comments).
type BaseNoDelete struct {
	ID        uuid.UUID `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// BaseSimple is for append-only records: sessions, OTPs, notifications.
type BaseSimple struct {
	ID        uuid.UUID `db:"id"`
	CreatedAt time.Time `db:"created_at"`
}
