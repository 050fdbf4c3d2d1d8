// seed.go
//
// Boot-time seeding: the admin account, demo teams, vocabulary labels
// and a starter word catalog. Everything is idempotent, so seeding
// runs on every start.

package main

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/verba-game/go-server/internal/catalog"
	"github.com/verba-game/go-server/internal/service"
	"github.com/verba-game/go-server/internal/store"
	"github.com/verba-game/go-server/internal/words"
)

var seedTeams = []string{
	"Вертолеты",
	"Крысы",
	"Боевые вертолёты",
	"Мозамбийские девочки",
}

// seedVocs maps Wiktionary usage labels to their full names. The
// importer binds definitions to these by the short form.
var seedVocs = [][2]string{
	{"разг.", "разговорное"},
	{"перен.", "переносное значение"},
	{"устар.", "устаревшее"},
	{"книжн.", "книжное"},
	{"прост.", "просторечное"},
	{"спец.", "специальное"},
	{"жарг.", "жаргонное"},
	{"ирон.", "ироничное"},
	{"высок.", "высокий стиль"},
	{"обл.", "областное"},
}

func seed(ctx context.Context, st *store.SQLite) error {
	email := getEnv("SEED_ADMIN_EMAIL", "admin@mail.com")
	password := getEnv("SEED_ADMIN_PASSWORD", "123456")
	hash, err := service.HashPassword(password)
	if err != nil {
		return err
	}
	if err := st.InsertUser(ctx, email, hash, time.Now()); err != nil {
		return err
	}

	for _, name := range seedTeams {
		if err := st.InsertTeam(ctx, name); err != nil {
			return err
		}
	}
	for _, v := range seedVocs {
		if err := st.InsertVoc(ctx, v[0], v[1]); err != nil {
			return err
		}
	}

	// Starter words only go into an empty catalog.
	n, err := st.CountWords(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	list, err := words.StarterList()
	if err != nil {
		return err
	}
	now := time.Now()
	for _, body := range list {
		w, err := catalog.NewWord(body, catalog.WordActive, 0, now)
		if err != nil {
			return err
		}
		if _, err := st.InsertWord(ctx, w); err != nil {
			return err
		}
	}
	log.Info().Int("words", len(list)).Msg("seeded starter catalog")
	return nil
}
