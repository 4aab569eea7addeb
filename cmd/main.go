package main

import (
	"log"

	"github.com/fischerwulf/map-dev/internal/app"
	"github.com/fischerwulf/map-dev/pkg/config"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		log.Fatalln("failed to load config: ", err)
	}

	app.Run(cfg)
}
