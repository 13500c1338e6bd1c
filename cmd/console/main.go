// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


package main

import (
	"flag"
	"log"

	"github.com/relabs-tech/videolevel/internal/app"
	"github.com/relabs-tech/videolevel/internal/config"
)

func main() {
	configPath := flag.String("config", "./videolevel_config.txt", "path to configuration file")
	flag.Parse()

	log.Println("starting videolevel console (MQTT subscriber)")

	// Load configuration
	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunConsole(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
