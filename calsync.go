// Package calsync mirrors Ratatoskr schedule reservations into external
// calendar accounts: one provider calendar per schedule, one event per
// reserved timeslot. All operations are synchronous and fetch their inputs
// fresh; retry policy belongs to the caller.
package calsync

import (
	"errors"
	"time"
)

// Provider names as stored on a schedule and in the token store.
const (
	ProviderGoogle = "google"
	ProviderCalDAV = "caldav"
)

var (
	// ErrNoLinkedAccount means the owner has no stored token for the provider.
	ErrNoLinkedAccount = errors.New("no linked calendar account")
	// ErrNoCredentials means no application OAuth client is configured.
	ErrNoCredentials = errors.New("oauth client credentials not configured")
	// ErrNoCalendar means the schedule was never bound to a provider calendar.
	ErrNoCalendar = errors.New("schedule has no calendar")
	// ErrNotFound is wrapped by store lookups that match no row.
	ErrNotFound = errors.New("not found")
)

// Schedule is the unit a provider calendar is created for. CalendarID and
// MeetData are assigned once when the calendar is created and reused
// unmodified afterwards; MeetData is the provider's conference blob, stored
// verbatim.
type Schedule struct {
	ID             int64
	Owner          string
	Name           string
	Provider       string // ProviderGoogle or ProviderCalDAV
	ProviderConfig string // CalDAV server name; empty for Google
	CalendarID     string
	MeetData       []byte
}

// Timeslot is a schedulable window within a schedule. From and To are naive
// wall-clock instants; a timezone is applied only when an event is
// serialized for a provider.
type Timeslot struct {
	ID           int64
	ScheduleID   int64
	From         time.Time
	To           time.Time
	Reservations []Reservation
}

// Reservation is an attendee's booking of a timeslot.
type Reservation struct {
	ID         int64
	TimeslotID int64
	Email      string
	Name       string
	Comment    string
}
