package models

import (
	"campusbites/src/types"
)

type Event struct {
	ID           uint              `gorm:"primarykey" json:"id"`
	Name         string            `json:"name"`
	Slug         string            `gorm:"uniqueIndex" json:"slug,omitempty"`
	Description  string            `json:"description,omitempty"`
	Organization string            `json:"organization,omitempty"`
	Location     string            `json:"location,omitempty"`
	Food         types.StringArray `gorm:"type:jsonb" json:"food,omitempty"`
	Date         string            `json:"date,omitempty"`
	StartTime    string            `json:"start_time,omitempty"`
	EndTime      string            `json:"end_time,omitempty"`

	FoodItems []FoodItem `gorm:"foreignKey:event_id" json:"food_items,omitempty"`

	types.Timestamps
}
