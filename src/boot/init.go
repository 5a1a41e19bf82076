package boot

import (
	"campusbites/src/common"
	"campusbites/src/config"
	"campusbites/src/db"
	"campusbites/src/lib"
	"campusbites/src/models"
	"log"
	"time"

	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.Profile{},
		&models.Event{},
		&models.FoodItem{},
		&models.Reservation{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return db
}

func InitScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	// Sweep reservations for events that already ended.
	id, err := lib.CreateCronJob(func() {
		today := time.Now().Format(config.DATE_FORMAT)
		if err := common.ExpireStaleReservations(today); err != nil {
			log.Printf("Error expiring stale reservations: %s\n", err.Error())
		}
	}, 1*time.Hour)
	if err != nil {
		log.Printf("Error scheduling reservation sweep: %s\n", err.Error())
		return
	}
	log.Printf("Scheduled reservation sweep: %s\n", *id)
	sched.Start()
}

func StopScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("Error retrieving Scheduler. Check logs for info")
		return
	}
	err = sched.Shutdown()
	if err != nil {
		log.Println("An error has occurred while stopping Scheduler. Check logs for info")
		return
	}
}
