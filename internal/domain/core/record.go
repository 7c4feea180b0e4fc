package core

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Record carries the columns every entity shares. DeletedAt drives gorm's
// soft-delete scope, so a deleted row is invisible to every default query.
type Record struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `gorm:"not null;index" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"not null" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (r *Record) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (r Record) Lifecycle() Lifecycle {
	return LifecycleOf(r.DeletedAt)
}

type LifecycleState string

const (
	LifecycleActive  LifecycleState = "active"
	LifecycleDeleted LifecycleState = "deleted"
)

// Lifecycle is the two-state view of a row: Active, or Deleted at a point in time.
type Lifecycle struct {
	State     LifecycleState
	DeletedAt *time.Time
}

func LifecycleOf(d gorm.DeletedAt) Lifecycle {
	if !d.Valid {
		return Lifecycle{State: LifecycleActive}
	}
	at := d.Time
	return Lifecycle{State: LifecycleDeleted, DeletedAt: &at}
}

func (l Lifecycle) Active() bool { return l.State == LifecycleActive }
