package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	calsync "github.com/techhigh/ratatoskr-calsync"
)

// Timeslot times are taken as naive wall clock; no zone is read or stored.
const slotTimeLayout = "2006-01-02 15:04"

func addTimeslot() {
	if len(os.Args) < 5 {
		fmt.Println(`Usage: ratatoskr-calsync slot <schedule-id> "<YYYY-MM-DD HH:MM>" "<YYYY-MM-DD HH:MM>"`)
		os.Exit(1)
	}

	scheduleID, err := strconv.ParseInt(os.Args[2], 10, 64)
	if err != nil {
		log.Fatalf("Error: invalid schedule ID %q", os.Args[2])
	}
	from, err := time.Parse(slotTimeLayout, os.Args[3])
	if err != nil {
		log.Fatalf("Error parsing start time: %v", err)
	}
	to, err := time.Parse(slotTimeLayout, os.Args[4])
	if err != nil {
		log.Fatalf("Error parsing end time: %v", err)
	}
	if !to.After(from) {
		log.Fatalf("Error: end time must be after start time")
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

	if _, err := store.Schedule(scheduleID); err != nil {
		log.Fatalf("Error loading schedule: %v", err)
	}

	timeslot := &calsync.Timeslot{ScheduleID: scheduleID, From: from, To: to}
	if err := store.CreateTimeslot(timeslot); err != nil {
		log.Fatalf("Error saving timeslot: %v", err)
	}

	fmt.Printf("✅ Timeslot %d added to schedule %d\n", timeslot.ID, scheduleID)
}

// reserveTimeslot records a reservation and immediately re-syncs the
// timeslot so the provider event picks up the new attendee.
func reserveTimeslot() {
	if len(os.Args) < 4 {
		fmt.Println("Usage: ratatoskr-calsync reserve <timeslot-id> <email> [name] [comment...]")
		os.Exit(1)
	}

	timeslotID, err := strconv.ParseInt(os.Args[2], 10, 64)
	if err != nil {
		log.Fatalf("Error: invalid timeslot ID %q", os.Args[2])
	}
	reservation := &calsync.Reservation{TimeslotID: timeslotID, Email: os.Args[3]}
	if len(os.Args) > 4 {
		reservation.Name = os.Args[4]
	}
	if len(os.Args) > 5 {
		reservation.Comment = strings.Join(os.Args[5:], " ")
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

	if err := store.CreateReservation(reservation); err != nil {
		log.Fatalf("Error saving reservation: %v", err)
	}
	fmt.Printf("✅ Reservation %d recorded for %s\n", reservation.ID, reservation.Email)

	syncTimeslotByID(context.Background(), config, store, timeslotID)
}

// unreserveTimeslot deletes a reservation and re-syncs its timeslot; a
// timeslot left with no reservations has its provider event removed.
func unreserveTimeslot() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: ratatoskr-calsync unreserve <reservation-id>")
		os.Exit(1)
	}

	reservationID, err := strconv.ParseInt(os.Args[2], 10, 64)
	if err != nil {
		log.Fatalf("Error: invalid reservation ID %q", os.Args[2])
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

	timeslotID, err := store.DeleteReservation(reservationID)
	if err != nil {
		log.Fatalf("Error deleting reservation: %v", err)
	}
	fmt.Printf("✅ Reservation %d removed\n", reservationID)

	syncTimeslotByID(context.Background(), config, store, timeslotID)
}
