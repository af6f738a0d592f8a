package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	calsync "github.com/techhigh/ratatoskr-calsync"
)

// addSchedule creates a schedule row, provisions its provider calendar and
// persists the calendar binding. The calendar (and its conference metadata)
// is created exactly once here; sync never touches it again.
func addSchedule() {
	config, err := calsync.ReadConfig(configFile)
	if err != nil {
		log.Fatalf("Error reading config file: %v", err)
	}

	store, err := calsync.OpenStore(config.DatabaseFile())
	if err != nil {
		log.Fatalf("Error opening database: %v", err)
	}
	defer store.Close()

	fmt.Println("🚀 Starting schedule creation...")
	fmt.Print("👤 Enter owner account name: ")
	var owner string
	fmt.Scanln(&owner)

	fmt.Print("📝 Enter schedule name: ")
	reader := bufio.NewReader(os.Stdin)
	name, _ := reader.ReadString('\n')
	name = strings.TrimSpace(name)

	fmt.Print("🔄 Enter provider type (google or caldav): ")
	var providerType string
	fmt.Scanln(&providerType)
	providerType = strings.ToLower(providerType)
	if providerType == "" {
		providerType = calsync.ProviderGoogle
	}

	schedule := &calsync.Schedule{
		Owner:    owner,
		Name:     name,
		Provider: providerType,
	}

	switch providerType {
	case calsync.ProviderGoogle:
	case calsync.ProviderCalDAV:
		schedule.ProviderConfig = pickCalDAVServer(config)
	default:
		log.Fatalf("Error: Unsupported provider type: %s (must be 'google' or 'caldav')", providerType)
	}

	if err := store.CreateSchedule(schedule); err != nil {
		log.Fatalf("Error saving schedule: %v", err)
	}

	ctx := context.Background()
	logger := newLogger(config.VerbosityLevel)
	syncer := calsync.NewSyncer(calsync.NewFactory(config, store, logger), logger)

	fmt.Printf("📅 Creating %s calendar for schedule: %s\n", providerType, schedule.Name)
	calendarID, meetData, err := syncer.CreateCalendarForSchedule(ctx, schedule)
	if err != nil {
		log.Fatalf("Error creating provider calendar: %v", err)
	}

	if err := store.SetScheduleCalendar(schedule.ID, calendarID, meetData); err != nil {
		log.Fatalf("Error saving calendar binding: %v", err)
	}

	fmt.Printf("✅ Schedule %d (%s) created with calendar %s\n", schedule.ID, schedule.Name, calendarID)
}

func pickCalDAVServer(config *calsync.Config) string {
	if len(config.CalDAVs) == 0 {
		log.Fatalf("Error: No CalDAV server configurations found in %s", configFile)
	}

	fmt.Println("Available CalDAV servers:")
	servers := make([]string, 0, len(config.CalDAVs))
	for name := range config.CalDAVs {
		servers = append(servers, name)
	}
	sort.Strings(servers)
	for i, serverName := range servers {
		server := config.CalDAVs[serverName]
		displayName := serverName
		if server.Name != "" {
			displayName = server.Name
		}
		fmt.Printf("  %d: %s (%s)\n", i, displayName, server.ServerURL)
	}

	fmt.Print("Enter server number: ")
	var serverIndex int
	fmt.Scanln(&serverIndex)

	if serverIndex < 0 || serverIndex >= len(servers) {
		log.Fatalf("Error: Invalid server selection")
	}
	return servers[serverIndex]
}
