package main

import (
	"fmt"
	"log"

	calsync "github.com/techhigh/ratatoskr-calsync"
)

func listSchedules() {
	config, err := calsync.ReadConfig(configFile)
	if err != nil {
		log.Fatalf("Error reading config file: %v", err)
	}
	store, err := calsync.OpenStore(config.DatabaseFile())
	if err != nil {
		log.Fatalf("Error opening database: %v", err)
	}
	defer store.Close()

	fmt.Println("📋 Here's the list of schedules you are syncing:")

	summaries, err := store.Summaries()
	if err != nil {
		log.Fatalf("❌ Error retrieving schedules from database: %v", err)
	}

	for _, summary := range summaries {
		schedule := summary.Schedule
		calendarID := schedule.CalendarID
		if calendarID == "" {
			calendarID = "no calendar"
		}
		fmt.Printf("  🗓 %d: %s (👤 %s, %s, 📅 %s) - %d timeslots, %d reservations\n",
			schedule.ID, schedule.Name, schedule.Owner, schedule.Provider, calendarID,
			summary.Timeslots, summary.Reservations)
	}
}
