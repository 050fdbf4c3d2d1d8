// internal/store/sqlite.go
//
// SQLite-backed persistence for games, team results and word results.
// All multi-row writes run inside a transaction; the round-completion
// update carries a state/turn guard so a lost-update race between two
// concurrent completions of the same game cannot commit twice.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/verba-game/go-server/internal/game"
	"github.com/verba-game/go-server/internal/verr"
)

// SQLite implements GameStore plus the catalog and user surfaces on a
// *sql.DB opened by the caller (see db.go at the repository root).
type SQLite struct {
	db *sql.DB
}

// NewSQLite wraps an open database handle.
func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db: db}
}

// DB exposes the underlying handle for migrations and tests.
func (s *SQLite) DB() *sql.DB { return s.db }

func parseTime(raw string) (time.Time, error) {
	t, err := time.Parse(timeFormat, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored time %q: %w", raw, err)
	}
	return t, nil
}

// Game loads one game row.
func (s *SQLite) Game(ctx context.Context, id int64) (game.Game, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT id, state, word_count, penalty, round_time, winner_id, turn, token, created_at, expired_at
        FROM games WHERE id=?`, id)

	var (
		g                    game.Game
		state                string
		winnerID             sql.NullInt64
		createdAt, expiredAt string
	)
	err := row.Scan(&g.ID, &state, &g.WordCount, &g.Penalty, &g.RoundTime, &winnerID, &g.Turn, &g.Token, &createdAt, &expiredAt)
	if errors.Is(err, sql.ErrNoRows) {
		return game.Game{}, verr.New(verr.CodeNotFound, "Game not found")
	}
	if err != nil {
		return game.Game{}, fmt.Errorf("load game %d: %w", id, err)
	}

	if g.State, err = game.ParseState(state); err != nil {
		return game.Game{}, err
	}
	if winnerID.Valid {
		g.WinnerID = &winnerID.Int64
	}
	if g.CreatedAt, err = parseTime(createdAt); err != nil {
		return game.Game{}, err
	}
	if g.ExpiredAt, err = parseTime(expiredAt); err != nil {
		return game.Game{}, err
	}
	return g, nil
}

// TeamWordsByGame groups word results under their team results, both in
// "order" ascending.
func (s *SQLite) TeamWordsByGame(ctx context.Context, gameID int64) ([]game.TeamWords, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT tr.id, tr.team_id, tr.game_id, tr."order",
               wr.id, wr.result, wr."order", wr.word_id
        FROM team_results tr
        LEFT JOIN word_results wr ON wr.team_result_id = tr.id
        WHERE tr.game_id = ?
        ORDER BY tr."order" ASC, wr."order" ASC`, gameID)
	if err != nil {
		return nil, fmt.Errorf("team words for game %d: %w", gameID, err)
	}
	defer rows.Close()

	var (
		out   []game.TeamWords
		index = map[int64]int{}
	)
	for rows.Next() {
		var (
			tr      game.TeamResult
			wrID    sql.NullInt64
			wrRes   sql.NullBool
			wrOrder sql.NullInt64
			wordID  sql.NullInt64
		)
		if err := rows.Scan(&tr.ID, &tr.TeamID, &tr.GameID, &tr.Order, &wrID, &wrRes, &wrOrder, &wordID); err != nil {
			return nil, err
		}
		i, ok := index[tr.ID]
		if !ok {
			i = len(out)
			index[tr.ID] = i
			out = append(out, game.TeamWords{TeamResult: tr})
		}
		if wrID.Valid {
			out[i].WordResults = append(out[i].WordResults, game.WordResult{
				ID:           wrID.Int64,
				Result:       wrRes.Bool,
				Order:        int(wrOrder.Int64),
				WordID:       wordID.Int64,
				TeamResultID: tr.ID,
			})
		}
	}
	return out, rows.Err()
}

// CreateGame inserts the game and its team results atomically.
func (s *SQLite) CreateGame(ctx context.Context, g game.Game, teamResults []game.TeamResult) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
        INSERT INTO games (state, word_count, penalty, round_time, winner_id, turn, token, created_at, expired_at)
        VALUES (?,?,?,?,?,?,?,?,?)`,
		g.State.String(), g.WordCount, g.Penalty, g.RoundTime, nil, g.Turn, g.Token,
		g.CreatedAt.UTC().Format(timeFormat), g.ExpiredAt.UTC().Format(timeFormat))
	if err != nil {
		return 0, fmt.Errorf("insert game: %w", err)
	}
	gameID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, tr := range teamResults {
		if _, err := tx.ExecContext(ctx, `
            INSERT INTO team_results (team_id, game_id, "order") VALUES (?,?,?)`,
			tr.TeamID, gameID, tr.Order); err != nil {
			return 0, fmt.Errorf("insert team result: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return gameID, nil
}

// CompleteRound writes the round outcome. The game row update re-checks
// state and turn; zero affected rows means another writer got there
// first and the transaction aborts with no partial writes.
func (s *SQLite) CompleteRound(ctx context.Context, g game.Game, prevTurn int, wordResults []game.WordResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var winnerID any
	if g.WinnerID != nil {
		winnerID = *g.WinnerID
	}
	res, err := tx.ExecContext(ctx, `
        UPDATE games SET state=?, winner_id=?, turn=?
        WHERE id=? AND state='active' AND turn=?`,
		g.State.String(), winnerID, g.Turn, g.ID, prevTurn)
	if err != nil {
		return fmt.Errorf("update game %d: %w", g.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return verr.New(verr.CodeInfrastructure, "Game was modified concurrently")
	}

	for _, wr := range wordResults {
		if _, err := tx.ExecContext(ctx, `
            INSERT INTO word_results (result, "order", word_id, team_result_id) VALUES (?,?,?,?)`,
			wr.Result, wr.Order, wr.WordID, wr.TeamResultID); err != nil {
			return fmt.Errorf("insert word result: %w", err)
		}
	}
	return tx.Commit()
}

// TeamsByIDsOrdered loads teams and returns them in the order of the
// input ids. This ordering seeds the turn rotation, so it must follow
// the caller's sequence, not the table's.
func (s *SQLite) TeamsByIDsOrdered(ctx context.Context, ids []int64) ([]game.Team, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name FROM teams WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("load teams: %w", err)
	}
	defer rows.Close()

	byID := map[int64]game.Team{}
	for rows.Next() {
		var t game.Team
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		byID[t.ID] = t
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]game.Team, 0, len(ids))
	for _, id := range ids {
		if t, ok := byID[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

// AllTeams lists the team catalog.
func (s *SQLite) AllTeams(ctx context.Context) ([]game.Team, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM teams ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []game.Team
	for rows.Next() {
		var t game.Team
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// InsertTeam adds a team, ignoring duplicates by name (seeding is
// idempotent).
func (s *SQLite) InsertTeam(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO teams (name) VALUES (?)`, name)
	return err
}

// ViewRows runs the two-chain join behind the game view: the regular
// per-team chain plus, via games.winner_id, the winner's own chain.
// Team results come out by "order" ascending so score ties in the view
// resolve deterministically.
func (s *SQLite) ViewRows(ctx context.Context, gameID int64) ([]game.ViewRow, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT g.id, g.state, g.word_count, g.penalty, g.round_time, g.turn, g.token, g.created_at, g.expired_at,
               tr.id, t.id, t.name,
               wr.id, wr.result, wr."order", wr.word_id, w.body,
               winner_tr.id, winner_t.id, winner_t.name,
               winner_wr.id, winner_wr.result, winner_wr."order", winner_wr.word_id, winner_w.body
        FROM games g
        JOIN team_results tr             ON tr.game_id = g.id
        JOIN teams t                     ON tr.team_id = t.id
        LEFT JOIN word_results wr        ON wr.team_result_id = tr.id
        LEFT JOIN words w                ON w.id = wr.word_id
        LEFT JOIN team_results winner_tr ON g.winner_id = winner_tr.id
        LEFT JOIN teams winner_t         ON winner_tr.team_id = winner_t.id
        LEFT JOIN word_results winner_wr ON winner_wr.team_result_id = winner_tr.id
        LEFT JOIN words winner_w         ON winner_w.id = winner_wr.word_id
        WHERE g.id = ?
        ORDER BY tr."order" ASC, wr."order" ASC`, gameID)
	if err != nil {
		return nil, fmt.Errorf("view rows for game %d: %w", gameID, err)
	}
	defer rows.Close()

	var out []game.ViewRow
	for rows.Next() {
		var (
			row                  game.ViewRow
			state                string
			createdAt, expiredAt string

			wrID, wrOrder, wrWordID sql.NullInt64
			wrResult                sql.NullBool
			wBody                   sql.NullString

			wtrID, wtID     sql.NullInt64
			wtName          sql.NullString
			wwrID, wwrOrder sql.NullInt64
			wwrWordID       sql.NullInt64
			wwrResult       sql.NullBool
			winnerBody      sql.NullString
		)
		if err := rows.Scan(
			&row.Game.ID, &state, &row.Game.WordCount, &row.Game.Penalty, &row.Game.RoundTime,
			&row.Game.Turn, &row.Game.Token, &createdAt, &expiredAt,
			&row.TeamResultID, &row.Team.ID, &row.Team.Name,
			&wrID, &wrResult, &wrOrder, &wrWordID, &wBody,
			&wtrID, &wtID, &wtName,
			&wwrID, &wwrResult, &wwrOrder, &wwrWordID, &winnerBody,
		); err != nil {
			return nil, err
		}

		if row.Game.State, err = game.ParseState(state); err != nil {
			return nil, err
		}
		if row.Game.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		if row.Game.ExpiredAt, err = parseTime(expiredAt); err != nil {
			return nil, err
		}

		if wrID.Valid {
			row.Word = &game.WordCell{
				ID:       wrID.Int64,
				Result:   wrResult.Bool,
				Order:    int(wrOrder.Int64),
				WordID:   wrWordID.Int64,
				WordBody: wBody.String,
			}
		}
		if wtrID.Valid {
			row.WinnerTeamResultID = &wtrID.Int64
			row.WinnerTeam = &game.Team{ID: wtID.Int64, Name: wtName.String}
			row.Game.WinnerID = &wtrID.Int64
		}
		if wwrID.Valid {
			row.WinnerWord = &game.WordCell{
				ID:       wwrID.Int64,
				Result:   wwrResult.Bool,
				Order:    int(wwrOrder.Int64),
				WordID:   wwrWordID.Int64,
				WordBody: winnerBody.String,
			}
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// UserByEmail loads an admin account.
func (s *SQLite) UserByEmail(ctx context.Context, email string) (User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, created_at FROM users WHERE email=?`, email)

	var (
		u       User
		created string
	)
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, verr.New(verr.CodeNotFound, "User not found")
	}
	if err != nil {
		return User{}, fmt.Errorf("load user: %w", err)
	}
	if u.CreatedAt, err = parseTime(created); err != nil {
		return User{}, err
	}
	return u, nil
}

// InsertUser creates an admin account, ignoring an existing email.
func (s *SQLite) InsertUser(ctx context.Context, email, passwordHash string, now time.Time) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT OR IGNORE INTO users (email, password_hash, created_at) VALUES (?,?,?)`,
		email, passwordHash, now.UTC().Format(timeFormat))
	return err
}
