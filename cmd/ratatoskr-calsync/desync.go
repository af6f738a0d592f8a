package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	calsync "github.com/techhigh/ratatoskr-calsync"
)

// desyncSchedule removes the provider events for every timeslot of a
// schedule. Rows stay untouched, so a later sync recreates the events.
func desyncSchedule() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: ratatoskr-calsync desync <schedule-id>")
		os.Exit(1)
	}

	scheduleID, err := strconv.ParseInt(os.Args[2], 10, 64)
	if err != nil {
		log.Fatalf("Error: invalid schedule ID %q", os.Args[2])
	}

	config, err := calsync.ReadConfig(configFile)
	if err != nil {
		log.Fatalf("Error reading config file: %v", err)
	}
	store, err := calsync.OpenStore(config.DatabaseFile())
	if err != nil {
		log.Fatalf("Error opening database: %v", err)
	}
	defer store.Close()

	schedule, err := store.Schedule(scheduleID)
	if err != nil {
		log.Fatalf("Error loading schedule: %v", err)
	}
	timeslots, err := store.Timeslots(scheduleID)
	if err != nil {
		log.Fatalf("Error loading timeslots: %v", err)
	}

	fmt.Println("🚀 Starting schedule desynchronization...")
	fmt.Printf("📅 Desyncing schedule: %s\n", schedule.Name)

	ctx := context.Background()
	logger := newLogger(config.VerbosityLevel)
	syncer := calsync.NewSyncer(calsync.NewFactory(config, store, logger), logger)

	for _, timeslot := range timeslots {
		if err := syncer.DeleteTimeslotEvent(ctx, schedule, timeslot); err != nil {
			log.Fatalf("Error removing event for timeslot %d: %v", timeslot.ID, err)
		}
		fmt.Printf("  🗑 Event removed for timeslot %d\n", timeslot.ID)
	}

	fmt.Println("Schedule desynced successfully")
}
