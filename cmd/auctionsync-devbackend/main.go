package main

import (
	"log"

	"github.com/MrSnakeDoc/auctionsync/internal/app"
)

func main() {
	if err := app.NewDevBackend().Run(); err != nil {
		log.Fatalf("❌ dev backend failed to start: %v", err)
	}
}
