package main

import (
	"fmt"
	"os"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

const configFile = ".ratatoskr-calsync.toml"

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: ratatoskr-calsync (init|link|add|remove|slot|reserve|unreserve|sync|desync|list|export)")
		os.Exit(1)
	}

	command := os.Args[1]
	switch command {
	case "init":
		initDB()
	case "link":
		linkAccount()
	case "add":
		addSchedule()
	case "remove":
		removeSchedule()
	case "slot":
		addTimeslot()
	case "reserve":
		reserveTimeslot()
	case "unreserve":
		unreserveTimeslot()
	case "sync":
		syncSchedule()
	case "desync":
		desyncSchedule()
	case "list":
		listSchedules()
	case "export":
		exportSchedule()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		os.Exit(1)
	}
}

// newLogger builds the library logger. User-facing progress stays on stdout
// via fmt; this logfmt stream on stderr carries the library's diagnostics.
func newLogger(verbosity int) kitlog.Logger {
	logger := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stderr))
	switch {
	case verbosity <= 0:
		logger = level.NewFilter(logger, level.AllowWarn())
	case verbosity == 1:
		logger = level.NewFilter(logger, level.AllowInfo())
	default:
		logger = level.NewFilter(logger, level.AllowDebug())
	}
	return kitlog.With(logger, "ts", kitlog.DefaultTimestampUTC)
}
