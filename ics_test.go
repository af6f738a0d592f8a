package calsync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIcalEventComponent(t *testing.T) {
	event := &Event{
		ID:          "6391ce73031e61bb257aca03be8a7c96a46f0047",
		Summary:     "Ratatoskr: Office Hours",
		Location:    eventLocation,
		Description: eventDescription,
		Start:       easternTime(time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)),
		End:         easternTime(time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)),
		Attendees: []Attendee{
			{Email: "student@example.com", Name: "Student", Comment: "first visit"},
			{Email: "anon@example.com"},
		},
		Reminders: []Reminder{
			{Method: "email", Minutes: 2880},
			{Method: "email", Minutes: 10},
		},
	}

	comp := icalEventComponent(event)
	assert.Equal(t, "VEVENT", comp.Name)
	assert.Equal(t, event.ID, comp.Props.Get("UID").Value)
	assert.Equal(t, "Ratatoskr: Office Hours", comp.Props.Get("SUMMARY").Value)
	assert.Equal(t, eventLocation, comp.Props.Get("LOCATION").Value)
	assert.Equal(t, eventDescription, comp.Props.Get("DESCRIPTION").Value)
	assert.Equal(t, "CONFIRMED", comp.Props.Get("STATUS").Value)

	start := comp.Props.Get("DTSTART")
	require.NotNil(t, start)
	assert.Equal(t, "20260105T090000", start.Value)
	assert.Equal(t, "America/New_York", start.Params.Get("TZID"))
	end := comp.Props.Get("DTEND")
	require.NotNil(t, end)
	assert.Equal(t, "20260105T100000", end.Value)

	attendees := comp.Props["ATTENDEE"]
	require.Len(t, attendees, 2)
	assert.Equal(t, "mailto:student@example.com", attendees[0].Value)
	assert.Equal(t, "Student", attendees[0].Params.Get("CN"))
	assert.Equal(t, "mailto:anon@example.com", attendees[1].Value)
	assert.Empty(t, attendees[1].Params.Get("CN"))

	require.Len(t, comp.Children, 2)
	alarm := comp.Children[0]
	assert.Equal(t, "VALARM", alarm.Name)
	assert.Equal(t, "EMAIL", alarm.Props.Get("ACTION").Value)
	assert.Equal(t, event.Summary, alarm.Props.Get("DESCRIPTION").Value)
	trigger := alarm.Props.Get("TRIGGER")
	require.NotNil(t, trigger)
	assert.Equal(t, "-PT2880M", trigger.Value)
	// TRIGGER's default value type is a duration; a VALUE param would
	// change how servers read it.
	assert.Empty(t, trigger.Params.Get("VALUE"))
	assert.Equal(t, "-PT10M", comp.Children[1].Props.Get("TRIGGER").Value)
}

func TestBuildScheduleCalendar(t *testing.T) {
	schedule := &Schedule{
		ID:         7,
		Owner:      "teacher@techhigh.us",
		Name:       "Office Hours",
		Provider:   ProviderGoogle,
		CalendarID: "cal-1",
	}
	reserved := &Timeslot{
		ID:           42,
		ScheduleID:   7,
		From:         time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC),
		To:           time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC),
		Reservations: []Reservation{{Email: "student@example.com", Name: "Student"}},
	}
	unreserved := &Timeslot{
		ID:         43,
		ScheduleID: 7,
		From:       time.Date(2026, 1, 5, 14, 0, 0, 0, time.UTC),
		To:         time.Date(2026, 1, 5, 15, 0, 0, 0, time.UTC),
	}

	now := time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC)
	cal := BuildScheduleCalendar(schedule, []*Timeslot{reserved, unreserved}, now)

	assert.Equal(t, "2.0", cal.Component.Props.Get("VERSION").Value)
	assert.Equal(t, prodID, cal.Component.Props.Get("PRODID").Value)

	require.Len(t, cal.Component.Children, 1)
	vevent := cal.Component.Children[0]
	assert.Equal(t, "VEVENT", vevent.Name)
	assert.Equal(t, "6391ce73031e61bb257aca03be8a7c96a46f0047", vevent.Props.Get("UID").Value)
	assert.Equal(t, "Ratatoskr: Office Hours", vevent.Props.Get("SUMMARY").Value)
	assert.Equal(t, "20260105T120000Z", vevent.Props.Get("DTSTAMP").Value)

	attendees := vevent.Props["ATTENDEE"]
	require.Len(t, attendees, 1)
	assert.Equal(t, "mailto:student@example.com", attendees[0].Value)
}

func TestBuildScheduleCalendarEmpty(t *testing.T) {
	schedule := &Schedule{ID: 7, Name: "Office Hours", Provider: ProviderGoogle}
	cal := BuildScheduleCalendar(schedule, nil, time.Now())
	assert.Empty(t, cal.Component.Children)
	assert.Equal(t, "2.0", cal.Component.Props.Get("VERSION").Value)
}
