package calsync

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/emersion/go-webdav/caldav"
	"github.com/go-kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDAVHandler answers just enough of the protocol for the provider:
// GET looks up a stored object, PUT stores one, DELETE removes by prefix.
type fakeDAVHandler struct {
	objects map[string]string
	puts    []string
	deletes []string
}

func newFakeDAVHandler() *fakeDAVHandler {
	return &fakeDAVHandler{objects: make(map[string]string)}
}

func (h *fakeDAVHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		body, ok := h.objects[r.URL.Path]
		if !ok {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/calendar")
		w.Write([]byte(body))
	case http.MethodPut:
		h.puts = append(h.puts, r.URL.Path)
		w.WriteHeader(http.StatusCreated)
	case http.MethodDelete:
		h.deletes = append(h.deletes, r.URL.Path)
		if _, ok := h.objects[r.URL.Path]; ok {
			delete(h.objects, r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}

func newTestCalDAVProvider(t *testing.T, handler http.Handler) *CalDAVProvider {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := caldav.NewClient(http.DefaultClient, server.URL)
	require.NoError(t, err)
	return &CalDAVProvider{
		client:   client,
		basePath: "/calendars/teacher",
		logger:   log.NewNopLogger(),
	}
}

const storedEventICS = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//Ratatoskr//ratatoskr-calsync//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:6391ce73031e61bb257aca03be8a7c96a46f0047\r\n" +
	"DTSTAMP:20260105T080000Z\r\n" +
	"DTSTART:20260105T090000Z\r\n" +
	"DTEND:20260105T100000Z\r\n" +
	"SUMMARY:Ratatoskr: Office Hours\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func caldavTestEvent() *Event {
	return &Event{
		ID:          "6391ce73031e61bb257aca03be8a7c96a46f0047",
		Summary:     "Ratatoskr: Office Hours",
		Location:    eventLocation,
		Description: eventDescription,
		Start:       time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC),
		End:         time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC),
	}
}

func TestCalDAVUpsertEventCreates(t *testing.T) {
	handler := newFakeDAVHandler()
	provider := newTestCalDAVProvider(t, handler)

	outcome, err := provider.UpsertEvent(context.Background(), "/calendars/teacher/office-hours/", caldavTestEvent())
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, outcome)
	require.Len(t, handler.puts, 1)
	assert.Equal(t, "/calendars/teacher/office-hours/6391ce73031e61bb257aca03be8a7c96a46f0047.ics", handler.puts[0])
}

func TestCalDAVUpsertEventUpdates(t *testing.T) {
	handler := newFakeDAVHandler()
	handler.objects["/calendars/teacher/office-hours/6391ce73031e61bb257aca03be8a7c96a46f0047.ics"] = storedEventICS
	provider := newTestCalDAVProvider(t, handler)

	outcome, err := provider.UpsertEvent(context.Background(), "/calendars/teacher/office-hours/", caldavTestEvent())
	require.NoError(t, err)
	assert.Equal(t, OutcomeUpdated, outcome)
	require.Len(t, handler.puts, 1)
}

func TestCalDAVDeleteEventMissing(t *testing.T) {
	provider := newTestCalDAVProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Not Found", http.StatusNotFound)
	}))

	err := provider.DeleteEvent(context.Background(), "/calendars/teacher/office-hours/", "6391ce73031e61bb257aca03be8a7c96a46f0047")
	assert.NoError(t, err)
}

func TestCalDAVDeleteEvent(t *testing.T) {
	handler := newFakeDAVHandler()
	handler.objects["/calendars/teacher/office-hours/6391ce73031e61bb257aca03be8a7c96a46f0047.ics"] = storedEventICS
	provider := newTestCalDAVProvider(t, handler)

	err := provider.DeleteEvent(context.Background(), "/calendars/teacher/office-hours/", "6391ce73031e61bb257aca03be8a7c96a46f0047")
	require.NoError(t, err)
	require.Len(t, handler.deletes, 1)
	assert.Equal(t, "/calendars/teacher/office-hours/6391ce73031e61bb257aca03be8a7c96a46f0047.ics", handler.deletes[0])
}

func TestCalDAVDeleteCalendarServerError(t *testing.T) {
	provider := newTestCalDAVProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}))

	err := provider.DeleteCalendar(context.Background(), "/calendars/teacher/office-hours/")
	assert.Error(t, err)
}

func TestCalDAVCreateCalendar(t *testing.T) {
	handler := newFakeDAVHandler()
	provider := newTestCalDAVProvider(t, handler)

	collection, meetData, err := provider.CreateCalendar(context.Background(), "Office Hours")
	require.NoError(t, err)
	assert.Nil(t, meetData)
	assert.Regexp(t, regexp.MustCompile(`^/calendars/teacher/office-hours-[0-9a-f]{8}/$`), collection)

	// The marker object that forced the collection into existence is put
	// and removed again at the same path.
	require.Len(t, handler.puts, 1)
	require.Len(t, handler.deletes, 1)
	assert.Equal(t, handler.puts[0], handler.deletes[0])
	assert.Regexp(t, regexp.MustCompile(`^`+regexp.QuoteMeta(collection)+`ratatoskr-[0-9a-f-]{36}\.ics$`), handler.puts[0])
}

func TestObjectPath(t *testing.T) {
	assert.Equal(t, "/cal/abc.ics", objectPath("/cal/", "abc"))
	assert.Equal(t, "/cal/abc.ics", objectPath("/cal", "abc"))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "office-hours", slugify("Office Hours"))
	assert.Equal(t, "math-101", slugify("Math 101!"))
	assert.Equal(t, "schedule", slugify("***"))
	assert.Equal(t, "schedule", slugify(""))
}

func TestIsCalDAVNotFound(t *testing.T) {
	assert.False(t, isCalDAVNotFound(nil))
	assert.False(t, isCalDAVNotFound(errors.New("500 Internal Server Error")))
	assert.True(t, isCalDAVNotFound(errors.New("404 Not Found")))
	assert.True(t, isCalDAVNotFound(errors.New("resource not found")))
}
