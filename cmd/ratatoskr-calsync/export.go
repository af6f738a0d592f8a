package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/emersion/go-ical"

	calsync "github.com/techhigh/ratatoskr-calsync"
)

// exportSchedule writes the ICS snapshot of a schedule's reserved timeslots
// to a file, or to stdout when no file is given.
func exportSchedule() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: ratatoskr-calsync export <schedule-id> [file]")
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

	cal := calsync.BuildScheduleCalendar(schedule, timeslots, time.Now())

	out := os.Stdout
	if len(os.Args) >= 4 {
		file, err := os.Create(os.Args[3])
		if err != nil {
			log.Fatalf("Error creating output file: %v", err)
		}
		defer file.Close()
		out = file
	}

	if err := ical.NewEncoder(out).Encode(cal); err != nil {
		log.Fatalf("Error encoding calendar: %v", err)
	}

	if len(os.Args) >= 4 {
		fmt.Printf("✅ Schedule %s exported to %s\n", schedule.Name, os.Args[3])
	}
}
