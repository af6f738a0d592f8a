package main

import (
	"context"
	"fmt"
	"log"

	calsync "github.com/techhigh/ratatoskr-calsync"
)

// removeSchedule deletes the provider calendar and then the schedule row
// with its timeslots and reservations.
func removeSchedule() {
	config, err := calsync.ReadConfig(configFile)
	if err != nil {
		log.Fatalf("Error reading config file: %v", err)
	}

	store, err := calsync.OpenStore(config.DatabaseFile())
	if err != nil {
		log.Fatalf("Error opening database: %v", err)
	}
	defer store.Close()

	fmt.Println("🚀 Starting schedule removal...")
	fmt.Print("🆔 Enter schedule ID to remove: ")
	var scheduleID int64
	fmt.Scanln(&scheduleID)

	schedule, err := store.Schedule(scheduleID)
	if err != nil {
		log.Fatalf("Error loading schedule: %v", err)
	}

	fmt.Printf("⚠️  Are you sure you want to remove schedule %q and its calendar? (y/N): ", schedule.Name)
	var confirmation string
	fmt.Scanln(&confirmation)

	if confirmation != "y" && confirmation != "Y" {
		fmt.Println("❌ Schedule removal cancelled")
		return
	}

	if schedule.CalendarID != "" {
		logger := newLogger(config.VerbosityLevel)
		syncer := calsync.NewSyncer(calsync.NewFactory(config, store, logger), logger)
		if err := syncer.DeleteCalendarForSchedule(context.Background(), schedule); err != nil {
			log.Fatalf("Error deleting provider calendar: %v", err)
		}
	}

	if err := store.DeleteSchedule(schedule.ID); err != nil {
		log.Fatalf("Error deleting schedule: %v", err)
	}

	fmt.Printf("✅ Schedule %s removed successfully\n", schedule.Name)
}
