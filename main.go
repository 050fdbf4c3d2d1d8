package main

import (
	"context"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/verba-game/go-server/internal/httpserver"
	"github.com/verba-game/go-server/internal/service"
	"github.com/verba-game/go-server/internal/store"
	"github.com/verba-game/go-server/internal/wiki"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	secret := []byte(os.Getenv("JWT_SECRET"))
	if len(secret) == 0 {
		log.Fatal().Msg("JWT_SECRET must be set")
	}

	db, err := openDB(getEnv("DATABASE_PATH", "./data/verba.db"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	if err := migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	st := store.NewSQLite(db)
	if err := seed(context.Background(), st); err != nil {
		log.Fatal().Err(err).Msg("failed to seed database")
	}

	games := service.NewGames(st)
	wordCatalog := service.NewWords(st, wiki.NewClient())
	users := service.NewUsers(st, secret, envInt("JWT_EXPIRES_DAYS", 30))

	srv := httpserver.New(st, games, wordCatalog, users, secret)
	port := getEnv("PORT", "5175")
	log.Info().Str("port", port).Msg("starting verba-go-server")
	if err := srv.Start(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
