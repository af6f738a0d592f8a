package calsync

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/oauth2"
)

// Timeslot times are persisted without zone information; the layout has no
// offset on purpose.
const storeTimeLayout = "2006-01-02 15:04:05"

// Store keeps schedules, timeslots, reservations and the OAuth material in a
// single sqlite database.
type Store struct {
	db *sql.DB
}

// OpenStore opens (creating if needed) the sqlite database at path. Foreign
// keys are enabled so deleting a schedule drops its timeslots and
// reservations.
func OpenStore(path string) (*Store, error) {
	if !strings.Contains(path, "?") {
		path += "?_foreign_keys=on"
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Init creates or upgrades the schema. Safe to run repeatedly.
func (s *Store) Init() error {
	var version int
	err := s.db.QueryRow("SELECT version FROM db_version WHERE name='ratatoskr-calsync'").Scan(&version)
	if err != nil {
		_, err = s.db.Exec(`CREATE TABLE IF NOT EXISTS db_version (
			name TEXT PRIMARY KEY,
			version INTEGER
		)`)
		if err != nil {
			return fmt.Errorf("creating db_version table: %w", err)
		}
		_, err = s.db.Exec(`INSERT OR IGNORE INTO db_version (name, version) VALUES ('ratatoskr-calsync', 0)`)
		if err != nil {
			return fmt.Errorf("initializing db_version table: %w", err)
		}
		version = 0
	}

	if version == 0 {
		stmts := []struct {
			name string
			sql  string
		}{
			{"oauth_apps", `CREATE TABLE IF NOT EXISTS oauth_apps (
				provider TEXT PRIMARY KEY,
				client_id TEXT,
				client_secret TEXT)`},
			{"oauth_tokens", `CREATE TABLE IF NOT EXISTS oauth_tokens (
				account TEXT,
				provider TEXT,
				access_token TEXT,
				refresh_token TEXT,
				expiry TEXT,
				PRIMARY KEY (account, provider))`},
			{"schedules", `CREATE TABLE IF NOT EXISTS schedules (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				owner TEXT NOT NULL,
				name TEXT NOT NULL,
				provider TEXT NOT NULL DEFAULT 'google',
				provider_config TEXT NOT NULL DEFAULT '',
				calendar_id TEXT NOT NULL DEFAULT '',
				meet_data BLOB)`},
			{"timeslots", `CREATE TABLE IF NOT EXISTS timeslots (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				schedule_id INTEGER NOT NULL REFERENCES schedules(id) ON DELETE CASCADE,
				starts_at TEXT NOT NULL,
				ends_at TEXT NOT NULL)`},
			{"reservations", `CREATE TABLE IF NOT EXISTS reservations (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				timeslot_id INTEGER NOT NULL REFERENCES timeslots(id) ON DELETE CASCADE,
				email TEXT NOT NULL,
				name TEXT NOT NULL DEFAULT '',
				comment TEXT NOT NULL DEFAULT '')`},
		}
		for _, st := range stmts {
			if _, err := s.db.Exec(st.sql); err != nil {
				return fmt.Errorf("creating %s table: %w", st.name, err)
			}
		}

		if _, err := s.db.Exec(`UPDATE db_version SET version = 1 WHERE name = 'ratatoskr-calsync'`); err != nil {
			return fmt.Errorf("updating db_version table: %w", err)
		}
	}

	return nil
}

// SaveApp stores the application OAuth client for a provider.
func (s *Store) SaveApp(provider, clientID, clientSecret string) error {
	_, err := s.db.Exec("INSERT OR REPLACE INTO oauth_apps (provider, client_id, client_secret) VALUES (?, ?, ?)",
		provider, clientID, clientSecret)
	return err
}

// App returns the application OAuth client for a provider. A missing row is
// ErrNoCredentials.
func (s *Store) App(provider string) (clientID, clientSecret string, err error) {
	err = s.db.QueryRow("SELECT client_id, client_secret FROM oauth_apps WHERE provider = ?", provider).
		Scan(&clientID, &clientSecret)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", fmt.Errorf("provider %s: %w", provider, ErrNoCredentials)
	}
	return clientID, clientSecret, err
}

// SaveToken stores (or replaces) an account's token for a provider. Called
// both when an account is first linked and whenever a refresh produces a new
// access token.
func (s *Store) SaveToken(account, provider string, token *oauth2.Token) error {
	expiry := ""
	if !token.Expiry.IsZero() {
		expiry = token.Expiry.UTC().Format(time.RFC3339)
	}
	_, err := s.db.Exec("INSERT OR REPLACE INTO oauth_tokens (account, provider, access_token, refresh_token, expiry) VALUES (?, ?, ?, ?, ?)",
		account, provider, token.AccessToken, token.RefreshToken, expiry)
	return err
}

// Token returns an account's stored token for a provider. A missing row is
// ErrNoLinkedAccount.
func (s *Store) Token(account, provider string) (*oauth2.Token, error) {
	var token oauth2.Token
	var expiry string
	err := s.db.QueryRow("SELECT access_token, refresh_token, expiry FROM oauth_tokens WHERE account = ? AND provider = ?",
		account, provider).Scan(&token.AccessToken, &token.RefreshToken, &expiry)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("account %s, provider %s: %w", account, provider, ErrNoLinkedAccount)
	}
	if err != nil {
		return nil, err
	}
	if expiry != "" {
		token.Expiry, err = time.Parse(time.RFC3339, expiry)
		if err != nil {
			return nil, fmt.Errorf("parsing token expiry: %w", err)
		}
	}
	return &token, nil
}

// CreateSchedule inserts the schedule and fills in its ID.
func (s *Store) CreateSchedule(schedule *Schedule) error {
	res, err := s.db.Exec("INSERT INTO schedules (owner, name, provider, provider_config, calendar_id, meet_data) VALUES (?, ?, ?, ?, ?, ?)",
		schedule.Owner, schedule.Name, schedule.Provider, schedule.ProviderConfig, schedule.CalendarID, schedule.MeetData)
	if err != nil {
		return err
	}
	schedule.ID, err = res.LastInsertId()
	return err
}

// Schedule returns one schedule by id, wrapping ErrNotFound when absent.
func (s *Store) Schedule(id int64) (*Schedule, error) {
	schedule := Schedule{ID: id}
	err := s.db.QueryRow("SELECT owner, name, provider, provider_config, calendar_id, meet_data FROM schedules WHERE id = ?", id).
		Scan(&schedule.Owner, &schedule.Name, &schedule.Provider, &schedule.ProviderConfig, &schedule.CalendarID, &schedule.MeetData)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("schedule %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}

// Schedules returns every schedule, oldest first.
func (s *Store) Schedules() ([]*Schedule, error) {
	rows, err := s.db.Query("SELECT id, owner, name, provider, provider_config, calendar_id, meet_data FROM schedules ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var schedules []*Schedule
	for rows.Next() {
		var schedule Schedule
		if err := rows.Scan(&schedule.ID, &schedule.Owner, &schedule.Name, &schedule.Provider, &schedule.ProviderConfig, &schedule.CalendarID, &schedule.MeetData); err != nil {
			return nil, err
		}
		schedules = append(schedules, &schedule)
	}
	return schedules, rows.Err()
}

// SetScheduleCalendar records the provider calendar binding made at calendar
// creation time.
func (s *Store) SetScheduleCalendar(id int64, calendarID string, meetData []byte) error {
	_, err := s.db.Exec("UPDATE schedules SET calendar_id = ?, meet_data = ? WHERE id = ?", calendarID, meetData, id)
	return err
}

// DeleteSchedule removes the schedule and, through the schema's cascades,
// its timeslots and reservations.
func (s *Store) DeleteSchedule(id int64) error {
	_, err := s.db.Exec("DELETE FROM schedules WHERE id = ?", id)
	return err
}

// CreateTimeslot inserts the timeslot and fills in its ID. Times are stored
// without zone.
func (s *Store) CreateTimeslot(timeslot *Timeslot) error {
	res, err := s.db.Exec("INSERT INTO timeslots (schedule_id, starts_at, ends_at) VALUES (?, ?, ?)",
		timeslot.ScheduleID, timeslot.From.Format(storeTimeLayout), timeslot.To.Format(storeTimeLayout))
	if err != nil {
		return err
	}
	timeslot.ID, err = res.LastInsertId()
	return err
}

// Timeslot returns one timeslot with its reservations loaded, wrapping
// ErrNotFound when absent.
func (s *Store) Timeslot(id int64) (*Timeslot, error) {
	timeslot := Timeslot{ID: id}
	var from, to string
	err := s.db.QueryRow("SELECT schedule_id, starts_at, ends_at FROM timeslots WHERE id = ?", id).
		Scan(&timeslot.ScheduleID, &from, &to)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("timeslot %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if timeslot.From, err = time.Parse(storeTimeLayout, from); err != nil {
		return nil, fmt.Errorf("parsing timeslot start: %w", err)
	}
	if timeslot.To, err = time.Parse(storeTimeLayout, to); err != nil {
		return nil, fmt.Errorf("parsing timeslot end: %w", err)
	}
	if timeslot.Reservations, err = s.reservations(id); err != nil {
		return nil, err
	}
	return &timeslot, nil
}

// Timeslots returns a schedule's timeslots, earliest first, reservations
// loaded.
func (s *Store) Timeslots(scheduleID int64) ([]*Timeslot, error) {
	rows, err := s.db.Query("SELECT id, starts_at, ends_at FROM timeslots WHERE schedule_id = ? ORDER BY starts_at, id", scheduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var timeslots []*Timeslot
	for rows.Next() {
		timeslot := Timeslot{ScheduleID: scheduleID}
		var from, to string
		if err := rows.Scan(&timeslot.ID, &from, &to); err != nil {
			return nil, err
		}
		if timeslot.From, err = time.Parse(storeTimeLayout, from); err != nil {
			return nil, fmt.Errorf("parsing timeslot start: %w", err)
		}
		if timeslot.To, err = time.Parse(storeTimeLayout, to); err != nil {
			return nil, fmt.Errorf("parsing timeslot end: %w", err)
		}
		timeslots = append(timeslots, &timeslot)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, timeslot := range timeslots {
		if timeslot.Reservations, err = s.reservations(timeslot.ID); err != nil {
			return nil, err
		}
	}
	return timeslots, nil
}

func (s *Store) reservations(timeslotID int64) ([]Reservation, error) {
	rows, err := s.db.Query("SELECT id, email, name, comment FROM reservations WHERE timeslot_id = ? ORDER BY id", timeslotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reservations []Reservation
	for rows.Next() {
		reservation := Reservation{TimeslotID: timeslotID}
		if err := rows.Scan(&reservation.ID, &reservation.Email, &reservation.Name, &reservation.Comment); err != nil {
			return nil, err
		}
		reservations = append(reservations, reservation)
	}
	return reservations, rows.Err()
}

// CreateReservation inserts the reservation and fills in its ID.
func (s *Store) CreateReservation(reservation *Reservation) error {
	res, err := s.db.Exec("INSERT INTO reservations (timeslot_id, email, name, comment) VALUES (?, ?, ?, ?)",
		reservation.TimeslotID, reservation.Email, reservation.Name, reservation.Comment)
	if err != nil {
		return err
	}
	reservation.ID, err = res.LastInsertId()
	return err
}

// DeleteReservation removes one reservation and reports which timeslot it
// belonged to, so the caller can re-sync that timeslot.
func (s *Store) DeleteReservation(id int64) (timeslotID int64, err error) {
	err = s.db.QueryRow("SELECT timeslot_id FROM reservations WHERE id = ?", id).Scan(&timeslotID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("reservation %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return 0, err
	}
	_, err = s.db.Exec("DELETE FROM reservations WHERE id = ?", id)
	return timeslotID, err
}

// ScheduleSummary is one line of the list command.
type ScheduleSummary struct {
	Schedule     Schedule
	Timeslots    int64
	Reservations int64
}

// Summaries returns every schedule with its timeslot and reservation counts.
func (s *Store) Summaries() ([]ScheduleSummary, error) {
	rows, err := s.db.Query(`SELECT s.id, s.owner, s.name, s.provider, s.provider_config, s.calendar_id,
			COUNT(DISTINCT t.id), COUNT(r.id)
		FROM schedules s
		LEFT JOIN timeslots t ON t.schedule_id = s.id
		LEFT JOIN reservations r ON r.timeslot_id = t.id
		GROUP BY s.id ORDER BY s.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []ScheduleSummary
	for rows.Next() {
		var sum ScheduleSummary
		if err := rows.Scan(&sum.Schedule.ID, &sum.Schedule.Owner, &sum.Schedule.Name, &sum.Schedule.Provider,
			&sum.Schedule.ProviderConfig, &sum.Schedule.CalendarID, &sum.Timeslots, &sum.Reservations); err != nil {
			return nil, err
		}
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}
