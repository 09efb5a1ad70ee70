package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/MrSnakeDoc/auctionsync/internal/app"
	"github.com/MrSnakeDoc/auctionsync/internal/catalog"
)

func main() {
	query := flag.String("search", "", "query the anime catalog, print hits as JSON lines and exit")
	catalogURL := flag.String("catalog", envOr("AUCTIONSYNC_CATALOG_URL", catalog.DefaultBaseURL), "catalog search endpoint used with -search")
	flag.Parse()

	if *query != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := app.Search(ctx, os.Stdout, *catalogURL, *query, 10*time.Second); err != nil {
			log.Fatalf("❌ %v", err)
		}
		return
	}

	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ auctionsync failed to start: %v", err)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
