package common

import (
	"campusbites/src/db"
	"campusbites/src/models"
	"campusbites/src/types"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrFoodNotFound        = errors.New("food item not found")
	ErrNotEnoughStock      = errors.New("not enough stock remaining")
	ErrNoActiveReservation = errors.New("no active reservation for this item")
)

// ReserveFood decrements a food item's quantity and records a reservation in
// one transaction. The row is locked for update so two clients racing for the
// last unit cannot both win. Bulk items (nil quantity) skip the decrement.
func ReserveFood(profileId uuid.UUID, foodId uint, quantity int) (*models.Reservation, error) {
	var reservation models.Reservation
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		var food models.FoodItem
		err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(&models.FoodItem{ID: foodId}).
			First(&food).
			Error
		if err != nil {
			return ErrFoodNotFound
		}
		if food.Quantity != nil {
			remaining := *food.Quantity
			if remaining < quantity {
				log.Printf("Rejecting reservation for food %d: %d requested, %d remaining\n", foodId, quantity, remaining)
				return ErrNotEnoughStock
			}
			next := remaining - quantity
			err = tx.
				Model(&models.FoodItem{}).
				Where(&models.FoodItem{ID: foodId}).
				Update("quantity", next).
				Error
			if err != nil {
				return err
			}
		}
		reservation = models.Reservation{
			ProfileID: profileId,
			FoodID:    foodId,
			Quantity:  quantity,
			Status:    types.RESERVATION_ACTIVE,
		}
		if err := tx.Create(&reservation).Error; err != nil {
			return err
		}
		reservation.Food = food
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

// CancelReservation marks the profile's active reservation canceled and
// restores the decremented units.
func CancelReservation(profileId uuid.UUID, foodId uint, quantity int) error {
	db := db.GetDb()
	return db.Transaction(func(tx *gorm.DB) error {
		var reservation models.Reservation
		err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(&models.Reservation{ProfileID: profileId, FoodID: foodId, Status: types.RESERVATION_ACTIVE}).
			First(&reservation).
			Error
		if err != nil {
			return ErrNoActiveReservation
		}
		if quantity > reservation.Quantity {
			return fmt.Errorf("cannot cancel %d units of a %d unit reservation", quantity, reservation.Quantity)
		}
		err = tx.
			Model(&models.Reservation{}).
			Where(&models.Reservation{ID: reservation.ID}).
			Update("status", types.RESERVATION_CANCELED).
			Error
		if err != nil {
			return err
		}
		var food models.FoodItem
		err = tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(&models.FoodItem{ID: foodId}).
			First(&food).
			Error
		if err != nil {
			return ErrFoodNotFound
		}
		if food.Quantity != nil {
			next := *food.Quantity + quantity
			err = tx.
				Model(&models.FoodItem{}).
				Where(&models.FoodItem{ID: foodId}).
				Update("quantity", next).
				Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// GetProfileReservations returns the profile's active reservations alongside
// the matching food rows, index-aligned the way the web client consumes them.
func GetProfileReservations(profileId uuid.UUID) ([]models.Reservation, []models.FoodItem, error) {
	db := db.GetDb()
	var reservations []models.Reservation
	err := db.
		Model(&models.Reservation{}).
		Where(&models.Reservation{ProfileID: profileId, Status: types.RESERVATION_ACTIVE}).
		Order("created_at asc").
		Limit(200).
		Find(&reservations).
		Error
	if err != nil {
		return nil, nil, err
	}
	foodRows := make([]models.FoodItem, 0, len(reservations))
	for _, r := range reservations {
		var food models.FoodItem
		if err := db.Where(&models.FoodItem{ID: r.FoodID}).First(&food).Error; err != nil {
			log.Printf("Missing food row %d for reservation %d: %s\n", r.FoodID, r.ID, err.Error())
			food = models.FoodItem{ID: r.FoodID}
		}
		foodRows = append(foodRows, food)
	}
	return reservations, foodRows, nil
}

// ExpireStaleReservations cancels active reservations whose event date has
// passed. Runs from the scheduler; quantities are not restored because the
// event is over.
func ExpireStaleReservations(today string) error {
	db := db.GetDb()
	return db.Transaction(func(tx *gorm.DB) error {
		var foodIds []uint
		err := tx.
			Model(&models.FoodItem{}).
			Joins("JOIN events ON events.id = food_items.event_id").
			Where("events.date < ?", today).
			Pluck("food_items.id", &foodIds).
			Error
		if err != nil {
			return err
		}
		if len(foodIds) == 0 {
			return nil
		}
		err = tx.
			Model(&models.Reservation{}).
			Where("food_id IN (?)", foodIds).
			Where("status", types.RESERVATION_ACTIVE).
			Update("status", types.RESERVATION_EXPIRED).
			Error
		if err != nil {
			return err
		}
		return nil
	})
}
