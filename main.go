package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"stackbattle-server/api"
	"stackbattle-server/config"
	"stackbattle-server/game"
	"stackbattle-server/loghandler"
	"stackbattle-server/rooms"
	"stackbattle-server/storage"
	"stackbattle-server/ws"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Print("No .env file found; using environment variables.")
	}

	slog.SetDefault(slog.New(loghandler.NewCompactHandler(os.Stderr, slog.LevelInfo)))

	cfg := config.Load()
	log.Printf("Configuration: MaxPlayers=%d, MinPlayers=%d, HiddenReserveBase=%d, PileRevealMS=%d, WSPort=%d",
		cfg.MaxPlayers, cfg.MinPlayers, cfg.HiddenReserveBase, cfg.PileRevealMS, cfg.WSPort)

	if cfg.AuthBaseURL == "" {
		log.Print("Auth: AUTH_BASE_URL is not set — tokens are ignored and all players join as guests.")
	}

	store, err := storage.NewStore(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Storage: %v", err)
	}
	if store == nil {
		log.Print("Storage: DATABASE_URL is not set — round history is not persisted.")
	} else {
		defer store.Close()
	}

	registry := rooms.NewRegistry(cfg, func(res game.RoundResult) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := store.InsertRoundResult(ctx, uuid.NewString(), res.RoomID,
			res.LoserUserID, res.LoserName, res.PlayerNames, int(res.Duration.Seconds()))
		if err != nil {
			slog.Error("persisting round result", "tag", "storage", "room", res.RoomID, "err", err)
		}
	})

	hub := ws.NewHub(cfg, registry)
	go hub.Run()

	handler := api.NewHandler(cfg, registry, hub, store)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.ServeWS)
	mux.HandleFunc("/api/rooms", handler.Rooms)
	mux.HandleFunc("/api/stats", handler.Stats)
	mux.HandleFunc("/api/leaderboard", handler.Leaderboard)
	mux.HandleFunc("/api/history", handler.History)

	addr := fmt.Sprintf(":%d", cfg.WSPort)
	log.Printf("Stack battle server listening on %s", addr)
	log.Fatal(http.ListenAndServe(addr, mux))
}
