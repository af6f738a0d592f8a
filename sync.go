package calsync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Texts stamped on every synced event.
const (
	summaryPrefix    = "Ratatoskr: "
	eventLocation    = "Atop Yggdrasil"
	eventDescription = "Event relayed to you by Ratatoskr 🐭."
)

// Attendees get mailed two days, one day and ten minutes before start.
var reminderMinutes = []int64{2 * 24 * 60, 24 * 60, 10}

var (
	easternOnce sync.Once
	eastern     *time.Location
)

// easternTime pins a naive stored time to Eastern wall clock. Providers run
// their own DST conversion on whatever offset they receive; only a time
// carrying the Eastern offset for that date converts back to the intended
// local time.
func easternTime(t time.Time) time.Time {
	easternOnce.Do(func() {
		var err error
		eastern, err = time.LoadLocation("America/New_York")
		if err != nil {
			eastern = time.FixedZone("EST", -5*60*60)
		}
	})
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), eastern)
}

// Syncer applies schedule and timeslot state to provider calendars. All
// operations are synchronous and take the records they act on explicitly;
// nothing is fetched behind the caller's back. Concurrent syncs of the same
// timeslot race benignly: last write wins.
type Syncer struct {
	providers ProviderSource
	logger    log.Logger
}

func NewSyncer(providers ProviderSource, logger log.Logger) *Syncer {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Syncer{providers: providers, logger: logger}
}

// CreateCalendarForSchedule provisions the schedule's dedicated calendar and
// returns the calendar id and conference blob for the caller to persist.
// Called once per schedule.
func (s *Syncer) CreateCalendarForSchedule(ctx context.Context, schedule *Schedule) (string, []byte, error) {
	provider, err := s.providers.ProviderFor(ctx, schedule)
	if err != nil {
		return "", nil, err
	}
	calendarID, meetData, err := provider.CreateCalendar(ctx, schedule.Name)
	if err != nil {
		return "", nil, err
	}
	level.Debug(s.logger).Log("msg", "calendar created for schedule", "schedule", schedule.ID, "calendar", calendarID)
	return calendarID, meetData, nil
}

// DeleteCalendarForSchedule deletes the schedule's provider calendar,
// fire-and-forget: no existence check, a calendar already gone is fine.
func (s *Syncer) DeleteCalendarForSchedule(ctx context.Context, schedule *Schedule) error {
	if schedule.CalendarID == "" {
		return fmt.Errorf("schedule %d: %w", schedule.ID, ErrNoCalendar)
	}
	provider, err := s.providers.ProviderFor(ctx, schedule)
	if err != nil {
		return err
	}
	return provider.DeleteCalendar(ctx, schedule.CalendarID)
}

// SyncTimeslot makes the provider event reflect the timeslot: reserved
// timeslots are upserted with the full attendee list, unreserved ones have
// their event removed.
func (s *Syncer) SyncTimeslot(ctx context.Context, schedule *Schedule, timeslot *Timeslot) (Outcome, error) {
	if len(timeslot.Reservations) == 0 {
		if err := s.DeleteTimeslotEvent(ctx, schedule, timeslot); err != nil {
			return OutcomeNone, err
		}
		return OutcomeDeleted, nil
	}

	if schedule.CalendarID == "" {
		return OutcomeNone, fmt.Errorf("schedule %d: %w", schedule.ID, ErrNoCalendar)
	}
	provider, err := s.providers.ProviderFor(ctx, schedule)
	if err != nil {
		return OutcomeNone, err
	}
	outcome, err := provider.UpsertEvent(ctx, schedule.CalendarID, buildTimeslotEvent(schedule, timeslot))
	if err != nil {
		return outcome, err
	}
	level.Debug(s.logger).Log("msg", "timeslot synced", "schedule", schedule.ID, "timeslot", timeslot.ID, "outcome", outcome.String())
	return outcome, nil
}

// DeleteTimeslotEvent removes the timeslot's provider event. Safe to call
// when the event never existed.
func (s *Syncer) DeleteTimeslotEvent(ctx context.Context, schedule *Schedule, timeslot *Timeslot) error {
	if schedule.CalendarID == "" {
		return fmt.Errorf("schedule %d: %w", schedule.ID, ErrNoCalendar)
	}
	provider, err := s.providers.ProviderFor(ctx, schedule)
	if err != nil {
		return err
	}
	return provider.DeleteEvent(ctx, schedule.CalendarID, TimeslotEventID(schedule.ID, timeslot.ID))
}

// buildTimeslotEvent assembles the provider-neutral event for a reserved
// timeslot. The event id is derived, never stored; the conference blob is
// the schedule's stored metadata reused verbatim.
func buildTimeslotEvent(schedule *Schedule, timeslot *Timeslot) *Event {
	event := &Event{
		ID:          TimeslotEventID(schedule.ID, timeslot.ID),
		Summary:     summaryPrefix + schedule.Name,
		Location:    eventLocation,
		Description: eventDescription,
		Start:       easternTime(timeslot.From),
		End:         easternTime(timeslot.To),
		Conference:  schedule.MeetData,
	}
	for _, reservation := range timeslot.Reservations {
		event.Attendees = append(event.Attendees, Attendee{
			Email:   reservation.Email,
			Name:    reservation.Name,
			Comment: reservation.Comment,
		})
	}
	for _, minutes := range reminderMinutes {
		event.Reminders = append(event.Reminders, Reminder{Method: "email", Minutes: minutes})
	}
	return event
}
