package models

import (
	"campusbites/src/types"

	"github.com/google/uuid"
)

type Profile struct {
	ID    uuid.UUID `gorm:"type:uuid;primarykey" json:"id"`
	Email string    `gorm:"uniqueIndex" json:"email"`
	Name  string    `json:"name,omitempty"`

	Reservations []Reservation `gorm:"foreignKey:profile_id" json:"reservations,omitempty"`

	types.Timestamps
}
