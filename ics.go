package calsync

import (
	"fmt"
	"time"

	"github.com/emersion/go-ical"
)

const prodID = "-//Ratatoskr//ratatoskr-calsync//EN"

func newRatatoskrCalendar() *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Component.Props.SetText("VERSION", "2.0")
	cal.Component.Props.SetText("PRODID", prodID)
	return cal
}

// icalEventComponent renders the provider-neutral event as a VEVENT.
// Attendee comments have no standard property and are dropped; reminders
// become email VALARMs.
func icalEventComponent(event *Event) *ical.Component {
	vevent := ical.NewEvent()
	props := vevent.Component.Props
	props.SetText("UID", event.ID)
	props.SetText("SUMMARY", event.Summary)
	props.SetText("LOCATION", event.Location)
	props.SetText("DESCRIPTION", event.Description)
	props.SetDateTime("DTSTART", event.Start)
	props.SetDateTime("DTEND", event.End)
	props.SetText("STATUS", "CONFIRMED")

	for _, attendee := range event.Attendees {
		prop := ical.NewProp("ATTENDEE")
		if attendee.Name != "" {
			prop.Params.Set("CN", attendee.Name)
		}
		prop.Value = "mailto:" + attendee.Email
		props.Add(prop)
	}

	for _, reminder := range event.Reminders {
		alarm := ical.NewComponent("VALARM")
		alarm.Props.SetText("ACTION", "EMAIL")
		alarm.Props.SetText("DESCRIPTION", event.Summary)
		trigger := ical.NewProp("TRIGGER")
		trigger.Value = fmt.Sprintf("-PT%dM", reminder.Minutes)
		alarm.Props.Set(trigger)
		vevent.Component.Children = append(vevent.Component.Children, alarm)
	}

	return vevent.Component
}

// BuildScheduleCalendar renders the schedule's reserved timeslots as a
// VCALENDAR snapshot: exactly the events sync maintains on the provider,
// usable as an offline mirror or for import elsewhere. Unreserved timeslots
// carry no event and are skipped.
func BuildScheduleCalendar(schedule *Schedule, timeslots []*Timeslot, now time.Time) *ical.Calendar {
	cal := newRatatoskrCalendar()
	for _, timeslot := range timeslots {
		if len(timeslot.Reservations) == 0 {
			continue
		}
		comp := icalEventComponent(buildTimeslotEvent(schedule, timeslot))
		comp.Props.SetDateTime("DTSTAMP", now.UTC())
		cal.Component.Children = append(cal.Component.Children, comp)
	}
	return cal
}
