package main

import (
	"log"

	"github.com/ananyakrishnaeemani/ai-learning/internal/app"
	"github.com/ananyakrishnaeemani/ai-learning/internal/config"
	"github.com/ananyakrishnaeemani/ai-learning/pkg/configwatcher"
)

func main() {
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application := app.NewApp(cfg)

	go configwatcher.WatchConfig("configs/config.yaml", application.Reload)

	application.Run()
}
