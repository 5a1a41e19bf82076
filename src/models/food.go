package models

import (
	"campusbites/src/types"
)

// FoodItem rows carry either an exact quantity or a coarse stock level.
// A nil Quantity means the organizer only tracks a bulk estimate; such items
// are never reported sold out from the level alone.
type FoodItem struct {
	ID          uint              `gorm:"primarykey" json:"id"`
	Name        string            `json:"name"`
	Quantity    *int              `json:"quantity"`
	StockLevel  types.StockLevel  `json:"stockLevel,omitempty"`
	DietaryTags types.StringArray `gorm:"type:jsonb" json:"dietaryTags,omitempty"`
	Description string            `json:"description,omitempty"`
	EventID     uint              `json:"event_id,omitempty"`

	Event Event `gorm:"foreignKey:event_id" json:"-"`

	types.Timestamps
}
