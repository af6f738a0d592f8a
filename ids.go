package calsync

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
)

// Event ids are derived from the timeslot's identity, so finding the event
// for a timeslot never needs a stored id. The identifying string is passed
// through SHA-1 to reduce the chance of collision and to comply with the
// provider's base32hex character rule for event ids.
const eventIDSuffix = "ratatoskr.techhigh.us"

// TimeslotEventID returns the provider event id for a timeslot: the
// lowercase hex SHA-1 of "{timeslot}@{schedule}#ratatoskr.techhigh.us".
// Identical inputs always produce the identical 40-character id.
func TimeslotEventID(scheduleID, timeslotID int64) string {
	s := fmt.Sprintf("%d@%d#%s", timeslotID, scheduleID, eventIDSuffix)
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
