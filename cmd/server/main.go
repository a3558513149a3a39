package main

import (
	"context"
	"flag"
	"log"
	"net/http"

	"todo/internal/api"
	"todo/internal/config"
	"todo/internal/db"
	"todo/pkg/task"
)

func main() {
	configPath := flag.String("config", "", "config file (default ~/.todo/config.yaml)")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	tasks, closeStore, err := db.Open(ctx, cfg.Store)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer closeStore()

	server := api.New(task.NewRepository(tasks))

	log.Printf("todo (%s store) listening on :%s", cfg.Store.Driver, cfg.Server.Port)
	if err := http.ListenAndServe(":"+cfg.Server.Port, server); err != nil {
		log.Fatalf("listen: %v", err)
	}
}
