package calsync

import (
	"context"
	"fmt"
	"time"

	"github.com/go-kit/log"
)

// Outcome reports what a sync operation actually did with the provider
// event, instead of signalling it through error types.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeCreated
	OutcomeUpdated
	OutcomeDeleted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeUpdated:
		return "updated"
	case OutcomeDeleted:
		return "deleted"
	default:
		return "none"
	}
}

// Event is the provider-neutral event body built from a timeslot. Start and
// End carry real zones by the time they reach a provider.
type Event struct {
	ID          string
	Summary     string
	Location    string
	Description string
	Start       time.Time
	End         time.Time
	Attendees   []Attendee
	Conference  []byte // opaque provider conference blob, passed through verbatim
	Reminders   []Reminder
}

type Attendee struct {
	Email   string
	Name    string
	Comment string
}

type Reminder struct {
	Method  string
	Minutes int64
}

// Provider is a calendar backend a schedule syncs against.
type Provider interface {
	// CreateCalendar provisions a dedicated calendar and returns its id
	// together with the provider's conference metadata blob.
	CreateCalendar(ctx context.Context, name string) (calendarID string, meetData []byte, err error)
	// DeleteCalendar removes the calendar. Deleting a calendar that no
	// longer exists is not an error.
	DeleteCalendar(ctx context.Context, calendarID string) error
	// UpsertEvent updates the event at event.ID, creating it when the
	// provider does not know the id.
	UpsertEvent(ctx context.Context, calendarID string, event *Event) (Outcome, error)
	// DeleteEvent removes the event. Deleting an event that no longer
	// exists is not an error.
	DeleteEvent(ctx context.Context, calendarID, eventID string) error
}

// ProviderSource yields the provider bound to a schedule's account.
type ProviderSource interface {
	ProviderFor(ctx context.Context, schedule *Schedule) (Provider, error)
}

// Factory builds calendar providers from the config and the stored
// credentials.
type Factory struct {
	config *Config
	store  *Store
	logger log.Logger
}

func NewFactory(config *Config, store *Store, logger log.Logger) *Factory {
	return &Factory{config: config, store: store, logger: logger}
}

// ProviderFor returns the provider a schedule's Provider field names,
// authorized as the schedule's owner.
func (f *Factory) ProviderFor(ctx context.Context, schedule *Schedule) (Provider, error) {
	switch schedule.Provider {
	case ProviderGoogle:
		client, err := Client(ctx, f.store, schedule.Owner, ProviderGoogle)
		if err != nil {
			return nil, err
		}
		return NewGoogleProvider(ctx, client, f.config.ConferencePolicy, f.logger)

	case ProviderCalDAV:
		serverName := schedule.ProviderConfig
		if serverName == "" {
			return nil, fmt.Errorf("schedule %d names no CalDAV server", schedule.ID)
		}
		server, ok := f.config.CalDAVs[serverName]
		if !ok {
			return nil, fmt.Errorf("CalDAV server '%s' not found in configuration", serverName)
		}
		return NewCalDAVProvider(ctx, server.ServerURL, server.Username, server.Password, f.logger)

	default:
		return nil, fmt.Errorf("unsupported provider type: %s", schedule.Provider)
	}
}
