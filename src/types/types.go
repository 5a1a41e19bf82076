package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type JSONB map[string]any

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONB) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

// StringArray is stored as a jsonb column. Used for event food summaries and
// dietary tag lists.
type StringArray []string

func (a StringArray) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *StringArray) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

type StockLevel string

const (
	STOCK_HIGH   StockLevel = "high"
	STOCK_MEDIUM StockLevel = "medium"
	STOCK_LOW    StockLevel = "low"
)

type ReservationStatus string

const (
	RESERVATION_ACTIVE   ReservationStatus = "active"
	RESERVATION_CANCELED ReservationStatus = "canceled"
	RESERVATION_EXPIRED  ReservationStatus = "expired"
)

// DietaryTags is the fixed vocabulary accepted on food items.
var DietaryTags = []string{
	"vegetarian",
	"vegan",
	"halal",
	"kosher",
	"gluten-free",
	"dairy-free",
	"nut-free",
	"peanut-free",
	"no-pork",
}

type CreateEventRequestBody struct {
	Name         string   `json:"name" binding:"required"`
	Description  string   `json:"description,omitempty"`
	Organization string   `json:"organization" binding:"required"`
	Location     string   `json:"location" binding:"required"`
	Food         []string `json:"food,omitempty"`
	Date         string   `json:"date" binding:"required,eventdate"`
	StartTime    string   `json:"start_time" binding:"required,clocktime"`
	EndTime      string   `json:"end_time" binding:"required,clocktime,afterfield=StartTime"`
}

type CreateFoodItemRequestBody struct {
	Name        string   `json:"name" binding:"required"`
	Quantity    *int     `json:"quantity,omitempty" binding:"omitempty,min=0"`
	StockLevel  string   `json:"stockLevel,omitempty" binding:"omitempty,oneof=high medium low"`
	DietaryTags []string `json:"dietaryTags,omitempty" binding:"omitempty,dietarytags"`
	Description string   `json:"description,omitempty"`
}

type ReserveRequestBody struct {
	FoodID    uint   `json:"food_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
	ProfileID string `json:"profile_id,omitempty"`
}

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type ProfileReservationsResponse struct {
	ReservedItems []JSONB `json:"reserved_items"`
	FoodRows      []JSONB `json:"food_rows"`
}
