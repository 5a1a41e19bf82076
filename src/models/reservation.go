package models

import (
	"campusbites/src/types"

	"github.com/google/uuid"
)

type Reservation struct {
	ID        uint                    `gorm:"primarykey" json:"id"`
	ProfileID uuid.UUID               `gorm:"type:uuid;index" json:"profile_id"`
	FoodID    uint                    `gorm:"index" json:"food_id"`
	Quantity  int                     `json:"quantity"`
	Status    types.ReservationStatus `gorm:"default:'active'" json:"status,omitempty"`

	Profile Profile  `json:"-"`
	Food    FoodItem `gorm:"foreignKey:food_id" json:"food,omitempty"`

	types.Timestamps
}
