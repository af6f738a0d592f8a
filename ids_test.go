package calsync

import (
	"fmt"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeslotEventID(t *testing.T) {
	// Precomputed SHA-1 of "42@7#ratatoskr.techhigh.us" and friends.
	assert.Equal(t, "6391ce73031e61bb257aca03be8a7c96a46f0047", TimeslotEventID(7, 42))
	assert.Equal(t, "50bdd4a78bb68562a79b6d31343940f8a0fba6ba", TimeslotEventID(1, 1))
}

func TestTimeslotEventIDFormat(t *testing.T) {
	hexID := regexp.MustCompile(`^[0-9a-f]{40}$`)
	assert.Regexp(t, hexID, TimeslotEventID(7, 42))
	assert.Regexp(t, hexID, TimeslotEventID(123456789, 987654321))
	assert.Regexp(t, hexID, TimeslotEventID(0, 0))
}

func TestTimeslotEventIDStable(t *testing.T) {
	assert.Equal(t, TimeslotEventID(7, 42), TimeslotEventID(7, 42))
}

func TestTimeslotEventIDOrderMatters(t *testing.T) {
	// Schedule 42 / timeslot 7 is a different slot than schedule 7 /
	// timeslot 42 and must not share its event.
	assert.Equal(t, "28fa1956481b0e6c714864ac9d8220b6e5821e45", TimeslotEventID(42, 7))
	assert.NotEqual(t, TimeslotEventID(7, 42), TimeslotEventID(42, 7))
}

func TestTimeslotEventIDDistinct(t *testing.T) {
	seen := make(map[string]string, 100*100)
	for scheduleID := int64(1); scheduleID <= 100; scheduleID++ {
		for timeslotID := int64(1); timeslotID <= 100; timeslotID++ {
			id := TimeslotEventID(scheduleID, timeslotID)
			pair := fmt.Sprintf("%d/%d", scheduleID, timeslotID)
			if prev, ok := seen[id]; ok {
				require.Failf(t, "duplicate event id", "%s and %s both map to %s", prev, pair, id)
			}
			seen[id] = pair
		}
	}
}
