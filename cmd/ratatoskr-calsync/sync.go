package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	calsync "github.com/techhigh/ratatoskr-calsync"
)

// syncSchedule pushes timeslot state to the provider: every timeslot of a
// schedule, or a single timeslot when its id is given.
func syncSchedule() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: ratatoskr-calsync sync <schedule-id> [timeslot-id]")
		os.Exit(1)
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

	ctx := context.Background()

	if len(os.Args) >= 4 {
		timeslotID, err := strconv.ParseInt(os.Args[3], 10, 64)
		if err != nil {
			log.Fatalf("Error: invalid timeslot ID %q", os.Args[3])
		}
		syncTimeslotByID(ctx, config, store, timeslotID)
		return
	}

	scheduleID, err := strconv.ParseInt(os.Args[2], 10, 64)
	if err != nil {
		log.Fatalf("Error: invalid schedule ID %q", os.Args[2])
	}

	schedule, err := store.Schedule(scheduleID)
	if err != nil {
		log.Fatalf("Error loading schedule: %v", err)
	}
	timeslots, err := store.Timeslots(scheduleID)
	if err != nil {
		log.Fatalf("Error loading timeslots: %v", err)
	}

	fmt.Println("🚀 Starting timeslot synchronization...")
	fmt.Printf("📅 Syncing schedule: %s\n", schedule.Name)

	logger := newLogger(config.VerbosityLevel)
	syncer := calsync.NewSyncer(calsync.NewFactory(config, store, logger), logger)

	for _, timeslot := range timeslots {
		outcome, err := syncer.SyncTimeslot(ctx, schedule, timeslot)
		if err != nil {
			log.Fatalf("Error syncing timeslot %d: %v", timeslot.ID, err)
		}
		fmt.Printf("  ✨ Timeslot %d event %s\n", timeslot.ID, outcome)
	}

	fmt.Println("✅ Timeslot synchronization completed successfully!")
}

func syncTimeslotByID(ctx context.Context, config *calsync.Config, store *calsync.Store, timeslotID int64) {
	timeslot, err := store.Timeslot(timeslotID)
	if err != nil {
		log.Fatalf("Error loading timeslot: %v", err)
	}
	schedule, err := store.Schedule(timeslot.ScheduleID)
	if err != nil {
		log.Fatalf("Error loading schedule: %v", err)
	}

	logger := newLogger(config.VerbosityLevel)
	syncer := calsync.NewSyncer(calsync.NewFactory(config, store, logger), logger)

	outcome, err := syncer.SyncTimeslot(ctx, schedule, timeslot)
	if err != nil {
		log.Fatalf("Error syncing timeslot %d: %v", timeslotID, err)
	}
	fmt.Printf("  ✨ Timeslot %d event %s\n", timeslotID, outcome)
}
