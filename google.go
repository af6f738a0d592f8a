package calsync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/WatchBeam/clock"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const (
	calendarDescription    = "Calendar generated by Ratatoskr. Please do not delete."
	placeholderSummary     = "Ratatoskr Dummy Event"
	placeholderLocation    = "Yggdrasil"
	placeholderDescription = "This event was only supposed to exist for a short time. If this event happened to stay, " +
		"you are free to delete it."
)

// googleAPI is the thin slice of the Google Calendar API the provider uses,
// kept separate so tests can substitute it.
type googleAPI interface {
	InsertCalendar(ctx context.Context, body *calendar.Calendar) (*calendar.Calendar, error)
	DeleteCalendar(ctx context.Context, calendarID string) error
	InsertEvent(ctx context.Context, calendarID string, body *calendar.Event) (*calendar.Event, error)
	PatchEvent(ctx context.Context, calendarID, eventID string, body *calendar.Event) (*calendar.Event, error)
	DeleteEvent(ctx context.Context, calendarID, eventID string) error
}

type googleLowLevelAPI struct {
	service *calendar.Service
}

func (a *googleLowLevelAPI) InsertCalendar(ctx context.Context, body *calendar.Calendar) (*calendar.Calendar, error) {
	return a.service.Calendars.Insert(body).Context(ctx).Do()
}

func (a *googleLowLevelAPI) DeleteCalendar(ctx context.Context, calendarID string) error {
	return a.service.Calendars.Delete(calendarID).Context(ctx).Do()
}

// Event writes always carry conferenceDataVersion=1 so the API accepts and
// returns conference metadata.
func (a *googleLowLevelAPI) InsertEvent(ctx context.Context, calendarID string, body *calendar.Event) (*calendar.Event, error) {
	return a.service.Events.Insert(calendarID, body).ConferenceDataVersion(1).Context(ctx).Do()
}

func (a *googleLowLevelAPI) PatchEvent(ctx context.Context, calendarID, eventID string, body *calendar.Event) (*calendar.Event, error) {
	return a.service.Events.Patch(calendarID, eventID, body).ConferenceDataVersion(1).Context(ctx).Do()
}

func (a *googleLowLevelAPI) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	return a.service.Events.Delete(calendarID, eventID).Context(ctx).Do()
}

// GoogleProvider manages one Google account's Ratatoskr calendars.
type GoogleProvider struct {
	api    googleAPI
	policy ConferencePolicy
	clock  clock.Clock
	logger log.Logger
}

func NewGoogleProvider(ctx context.Context, client *http.Client, policy ConferencePolicy, logger log.Logger) (*GoogleProvider, error) {
	service, err := calendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("creating calendar service: %w", err)
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &GoogleProvider{
		api:    &googleLowLevelAPI{service: service},
		policy: policy,
		clock:  clock.C,
		logger: logger,
	}, nil
}

func (g *GoogleProvider) CreateCalendar(ctx context.Context, name string) (string, []byte, error) {
	body := &calendar.Calendar{
		Summary:     summaryPrefix + name,
		Description: calendarDescription,
		TimeZone:    "UTC",
		ConferenceProperties: &calendar.ConferenceProperties{
			AllowedConferenceSolutionTypes: []string{"hangoutsMeet"},
		},
	}
	created, err := g.api.InsertCalendar(ctx, body)
	if err != nil {
		return "", nil, fmt.Errorf("creating calendar: %w", err)
	}
	level.Debug(g.logger).Log("msg", "calendar created", "calendar", created.Id)

	meetData, err := g.captureConferenceData(ctx, created.Id)
	if err != nil {
		return "", nil, err
	}
	return created.Id, meetData, nil
}

// Google issues conference metadata only on events, never on a calendar
// itself. A short-lived placeholder event carries the createRequest; its
// conference blob is captured for reuse on every real event and the
// placeholder is removed. Accounts that cannot create Meets run with policy
// "none": no solution key is requested and the stored blob is empty.
func (g *GoogleProvider) captureConferenceData(ctx context.Context, calendarID string) ([]byte, error) {
	request := &calendar.CreateConferenceRequest{RequestId: uuid.New().String()}
	if g.policy == ConferenceMeet {
		request.ConferenceSolutionKey = &calendar.ConferenceSolutionKey{Type: "hangoutsMeet"}
	}
	now := g.clock.Now()
	placeholder := &calendar.Event{
		Summary:        placeholderSummary,
		Location:       placeholderLocation,
		Description:    placeholderDescription,
		Start:          &calendar.EventDateTime{DateTime: now.Format(time.RFC3339)},
		End:            &calendar.EventDateTime{DateTime: now.Add(2 * time.Hour).Format(time.RFC3339)},
		ConferenceData: &calendar.ConferenceData{CreateRequest: request},
		Reminders:      &calendar.EventReminders{UseDefault: false, ForceSendFields: []string{"UseDefault"}},
	}
	created, err := g.api.InsertEvent(ctx, calendarID, placeholder)
	if err != nil {
		return nil, fmt.Errorf("creating placeholder event: %w", err)
	}

	meetData := []byte("{}")
	if g.policy == ConferenceMeet {
		if created.ConferenceData != nil {
			meetData, err = json.Marshal(created.ConferenceData)
			if err != nil {
				return nil, fmt.Errorf("encoding conference data: %w", err)
			}
		} else {
			level.Warn(g.logger).Log("msg", "no conference data issued for placeholder event", "calendar", calendarID)
		}
	}

	if err := g.api.DeleteEvent(ctx, calendarID, created.Id); err != nil {
		return nil, fmt.Errorf("removing placeholder event: %w", err)
	}
	return meetData, nil
}

// DeleteCalendar removes the calendar without checking it exists first; a
// calendar already gone counts as deleted.
func (g *GoogleProvider) DeleteCalendar(ctx context.Context, calendarID string) error {
	err := g.api.DeleteCalendar(ctx, calendarID)
	if err != nil && !isNotFound(err) && !isGone(err) {
		return fmt.Errorf("deleting calendar %s: %w", calendarID, err)
	}
	return nil
}

// UpsertEvent patches the event at event.ID and falls back to an insert when
// the id is unknown to the provider. Any other patch failure propagates.
func (g *GoogleProvider) UpsertEvent(ctx context.Context, calendarID string, event *Event) (Outcome, error) {
	body, err := googleEventBody(event)
	if err != nil {
		return OutcomeNone, err
	}
	if _, err := g.api.PatchEvent(ctx, calendarID, event.ID, body); err == nil {
		return OutcomeUpdated, nil
	} else if !isNotFound(err) {
		return OutcomeNone, fmt.Errorf("updating event %s: %w", event.ID, err)
	}
	level.Debug(g.logger).Log("msg", "event not found, inserting", "calendar", calendarID, "event", event.ID)
	if _, err := g.api.InsertEvent(ctx, calendarID, body); err != nil {
		return OutcomeNone, fmt.Errorf("creating event %s: %w", event.ID, err)
	}
	return OutcomeCreated, nil
}

// DeleteEvent removes the event; deleting an event that is already missing
// or gone succeeds, so deletes can be retried freely.
func (g *GoogleProvider) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	err := g.api.DeleteEvent(ctx, calendarID, eventID)
	if err != nil && !isNotFound(err) && !isGone(err) {
		return fmt.Errorf("deleting event %s: %w", eventID, err)
	}
	return nil
}

func googleEventBody(event *Event) (*calendar.Event, error) {
	body := &calendar.Event{
		Id:          event.ID,
		Summary:     event.Summary,
		Location:    event.Location,
		Description: event.Description,
		Start:       &calendar.EventDateTime{DateTime: event.Start.Format(time.RFC3339)},
		End:         &calendar.EventDateTime{DateTime: event.End.Format(time.RFC3339)},
	}
	for _, attendee := range event.Attendees {
		body.Attendees = append(body.Attendees, &calendar.EventAttendee{
			Email:       attendee.Email,
			DisplayName: attendee.Name,
			Comment:     attendee.Comment,
		})
	}
	if len(event.Conference) > 0 {
		conference := &calendar.ConferenceData{}
		if err := json.Unmarshal(event.Conference, conference); err != nil {
			return nil, fmt.Errorf("parsing stored conference data: %w", err)
		}
		body.ConferenceData = conference
	}
	if len(event.Reminders) > 0 {
		reminders := &calendar.EventReminders{UseDefault: false, ForceSendFields: []string{"UseDefault"}}
		for _, reminder := range event.Reminders {
			reminders.Overrides = append(reminders.Overrides, &calendar.EventReminder{
				Method:  reminder.Method,
				Minutes: reminder.Minutes,
			})
		}
		body.Reminders = reminders
	}
	return body, nil
}

func isNotFound(err error) bool {
	var ae *googleapi.Error
	ok := errors.As(err, &ae)
	return ok && ae.Code == http.StatusNotFound
}

func isGone(err error) bool {
	var ae *googleapi.Error
	ok := errors.As(err, &ae)
	return ok && ae.Code == http.StatusGone
}
