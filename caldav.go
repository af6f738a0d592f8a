package calsync

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav"
	"github.com/emersion/go-webdav/caldav"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"
)

// CalDAVProvider targets self-hosted Radicale-style servers: collections
// auto-provision on first PUT and objects hold one VEVENT per file, keyed by
// UID. CalDAV brokers no conference data, so meet blobs stay empty.
type CalDAVProvider struct {
	client   *caldav.Client
	basePath string
	logger   log.Logger
}

func NewCalDAVProvider(ctx context.Context, serverURL, username, password string, logger log.Logger) (*CalDAVProvider, error) {
	baseURL, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("invalid CalDAV server URL: %w", err)
	}

	var httpClient webdav.HTTPClient = http.DefaultClient
	if username != "" && password != "" {
		httpClient = webdav.HTTPClientWithBasicAuth(httpClient, username, password)
	}
	client, err := caldav.NewClient(httpClient, serverURL)
	if err != nil {
		return nil, fmt.Errorf("creating CalDAV client: %w", err)
	}

	// Probe the connection before any real work.
	if _, err := client.FindCalendars(ctx, ""); err != nil {
		return nil, fmt.Errorf("connecting to CalDAV server: %w", err)
	}

	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &CalDAVProvider{
		client:   client,
		basePath: strings.TrimRight(baseURL.Path, "/"),
		logger:   logger,
	}, nil
}

// CreateCalendar provisions a collection for the schedule under the server
// base path. Servers in scope create the collection on the first PUT, so a
// marker object is written and removed right away. The random suffix keeps
// identically named schedules in separate collections.
func (c *CalDAVProvider) CreateCalendar(ctx context.Context, name string) (string, []byte, error) {
	collection := fmt.Sprintf("%s/%s-%s/", c.basePath, slugify(name), uuid.New().String()[:8])

	uid := "ratatoskr-" + uuid.New().String()
	marker := ical.NewEvent()
	marker.Component.Props.SetText("UID", uid)
	marker.Component.Props.SetText("SUMMARY", placeholderSummary)
	marker.Component.Props.SetText("DESCRIPTION", placeholderDescription)
	now := time.Now().UTC()
	marker.Component.Props.SetDateTime("DTSTART", now)
	marker.Component.Props.SetDateTime("DTEND", now.Add(2*time.Hour))

	cal := newRatatoskrCalendar()
	cal.Component.Children = append(cal.Component.Children, marker.Component)

	path := objectPath(collection, uid)
	if _, err := c.client.PutCalendarObject(ctx, path, cal); err != nil {
		return "", nil, fmt.Errorf("creating calendar collection: %w", err)
	}
	if err := c.client.Client.RemoveAll(ctx, path); err != nil && !isCalDAVNotFound(err) {
		return "", nil, fmt.Errorf("removing marker object: %w", err)
	}

	level.Debug(c.logger).Log("msg", "collection created", "path", collection)
	return collection, nil, nil
}

// DeleteCalendar removes the whole collection; a collection already gone
// counts as deleted.
func (c *CalDAVProvider) DeleteCalendar(ctx context.Context, calendarID string) error {
	err := c.client.Client.RemoveAll(ctx, calendarID)
	if err != nil && !isCalDAVNotFound(err) {
		return fmt.Errorf("deleting calendar %s: %w", calendarID, err)
	}
	return nil
}

// UpsertEvent writes the event object at its UID path. PUT is
// create-or-replace on CalDAV; a prior GET tells the two outcomes apart.
func (c *CalDAVProvider) UpsertEvent(ctx context.Context, calendarID string, event *Event) (Outcome, error) {
	path := objectPath(calendarID, event.ID)

	outcome := OutcomeUpdated
	if _, err := c.client.GetCalendarObject(ctx, path); err != nil {
		if !isCalDAVNotFound(err) {
			return OutcomeNone, fmt.Errorf("checking event %s: %w", event.ID, err)
		}
		outcome = OutcomeCreated
	}

	if _, err := c.client.PutCalendarObject(ctx, path, caldavEventObject(event)); err != nil {
		return OutcomeNone, fmt.Errorf("writing event %s: %w", event.ID, err)
	}
	return outcome, nil
}

// DeleteEvent removes the event object; an object already missing counts as
// deleted.
func (c *CalDAVProvider) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	err := c.client.Client.RemoveAll(ctx, objectPath(calendarID, eventID))
	if err != nil && !isCalDAVNotFound(err) {
		return fmt.Errorf("deleting event %s: %w", eventID, err)
	}
	return nil
}

// caldavEventObject wraps the event's VEVENT in a calendar object for PUT.
func caldavEventObject(event *Event) *ical.Calendar {
	cal := newRatatoskrCalendar()
	cal.Component.Children = append(cal.Component.Children, icalEventComponent(event))
	return cal
}

func objectPath(collection, uid string) string {
	return strings.TrimRight(collection, "/") + "/" + uid + ".ics"
}

// slugify renders a schedule name usable as a path segment.
func slugify(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return "schedule"
	}
	return slug
}

// CalDAV errors surface as text-wrapped HTTP errors; the status code in the
// text is the stable part to match on.
func isCalDAVNotFound(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "404") || strings.Contains(strings.ToLower(msg), "not found")
}
