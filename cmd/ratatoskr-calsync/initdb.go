package main

import (
	"fmt"
	"log"

	calsync "github.com/techhigh/ratatoskr-calsync"
)

func initDB() {
	config, err := calsync.ReadConfig(configFile)
	if err != nil {
		log.Fatalf("Error reading config file: %v", err)
	}

	store, err := calsync.OpenStore(config.DatabaseFile())
	if err != nil {
		log.Fatalf("Error opening database: %v", err)
	}
	defer store.Close()

	if err := store.Init(); err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}

	fmt.Println("✅ Database initialized")
}
