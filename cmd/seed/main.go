package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"telegram-worldtime-bot/internal/config"
	"telegram-worldtime-bot/internal/domain/model"
	pg "telegram-worldtime-bot/internal/infra/db/postgres"
)

// Seeds a development chat with a handful of zone registrations so /time has
// something to render without inviting real members.
func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	chatID := flag.Int64("chat", -1001000000001, "chat id to seed")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	if err := pg.EnsureSchema(ctx, pool); err != nil {
		log.Fatalf("schema: %v", err)
	}

	repo := pg.NewPostgresMemberZoneRepo(pool, cfg.Registry.ActiveWindow, cfg.Registry.TopZones)

	if ok, err := repo.HasAny(ctx, nil, *chatID); err != nil {
		log.Fatalf("check chat: %v", err)
	} else if ok {
		fmt.Printf("chat %d already has registrations. No changes.\n", *chatID)
		return
	}

	seed := []struct {
		UserID int64
		Zone   string
	}{
		{1001, "America/New_York"},
		{1002, "America/Los_Angeles"},
		{1003, "Europe/Warsaw"},
		{1004, "Europe/London"},
		{1005, "Asia/Tokyo"},
		{1006, "Asia/Kolkata"},
		{1007, "Australia/Sydney"},
	}

	for _, s := range seed {
		record, err := model.NewMemberZone(*chatID, s.UserID, s.Zone)
		if err != nil {
			log.Fatalf("build registration for user %d: %v", s.UserID, err)
		}
		if err := repo.Upsert(ctx, nil, record); err != nil {
			log.Fatalf("seed user %d: %v", s.UserID, err)
		}
		fmt.Printf("  - user %d -> %s\n", s.UserID, s.Zone)
	}
	fmt.Printf("seeded %d registrations into chat %d\n", len(seed), *chatID)
}
