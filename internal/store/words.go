// internal/store/words.go
//
// Word catalog persistence: lookups, filtered search, the admin update
// transaction (word row + full definition replacement) and aggregate
// stats.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/verba-game/go-server/internal/catalog"
	"github.com/verba-game/go-server/internal/verr"
)

// OrderField selects the sort column for word search.
type OrderField int

const (
	OrderByBody OrderField = iota
	OrderByStatus
	OrderByLoadStatus
	OrderByDifficulty
)

func (f OrderField) column() string {
	switch f {
	case OrderByStatus:
		return "status"
	case OrderByLoadStatus:
		return "load_status"
	case OrderByDifficulty:
		return "difficulty"
	}
	return "body"
}

// SearchFilter narrows and pages a word search. Empty slices mean "any".
type SearchFilter struct {
	Text         string
	Statuses     []catalog.WordStatus
	LoadStatuses []catalog.LoadStatus
	Difficulties []int
	OrderBy      OrderField
	Asc          bool
	Skip         int64
	Take         int64
}

// WordRow is one flat row of the search join: the word, an optional
// definition and the definition's optional voc. The service layer
// regroups rows into nested views.
type WordRow struct {
	Word catalog.Word

	DefinitionID     *int64
	Definition       string
	DefinitionStatus catalog.DefinitionStatus
	DefinitionOrder  int

	VocID    *int64
	VocShort string
	VocFull  string
}

func scanWord(scan func(dest ...any) error) (catalog.Word, error) {
	var (
		w                  catalog.Word
		status, loadStatus string
	)
	if err := scan(&w.ID, &w.Body, &status, &w.IsEditedAfterLoad, &loadStatus, &w.Difficulty, &w.Timestamp); err != nil {
		return catalog.Word{}, err
	}
	var err error
	if w.Status, err = catalog.ParseWordStatus(status); err != nil {
		return catalog.Word{}, err
	}
	if w.LoadStatus, err = catalog.ParseLoadStatus(loadStatus); err != nil {
		return catalog.Word{}, err
	}
	return w, nil
}

// Word loads one catalog entry.
func (s *SQLite) Word(ctx context.Context, id int64) (catalog.Word, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT id, body, status, is_edited_after_load, load_status, difficulty, timestamp
        FROM words WHERE id=?`, id)
	w, err := scanWord(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Word{}, verr.New(verr.CodeNotFound, "Word not found")
	}
	if err != nil {
		return catalog.Word{}, fmt.Errorf("load word %d: %w", id, err)
	}
	return w, nil
}

// InsertWord adds a catalog entry (used by seeding and word intake).
func (s *SQLite) InsertWord(ctx context.Context, w catalog.Word) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
        INSERT INTO words (body, status, is_edited_after_load, load_status, difficulty, timestamp)
        VALUES (?,?,?,?,?,?)`,
		w.Body, w.Status.String(), w.IsEditedAfterLoad, w.LoadStatus.String(), w.Difficulty, w.Timestamp)
	if err != nil {
		return 0, fmt.Errorf("insert word: %w", err)
	}
	return res.LastInsertId()
}

// CountWords reports catalog size (seeding uses it to run once).
func (s *SQLite) CountWords(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM words`).Scan(&n)
	return n, err
}

// SearchWords pages through the catalog with the given filter and
// returns flat rows: the word subquery applies filters, ordering and
// paging; definitions and vocs join on top.
func (s *SQLite) SearchWords(ctx context.Context, f SearchFilter) ([]WordRow, error) {
	var (
		conds []string
		args  []any
	)
	if f.Text != "" {
		conds = append(conds, "body LIKE ?")
		args = append(args, f.Text+"%")
	}
	if len(f.Statuses) > 0 {
		ph := make([]string, len(f.Statuses))
		for i, st := range f.Statuses {
			ph[i] = "?"
			args = append(args, st.String())
		}
		conds = append(conds, "status IN ("+strings.Join(ph, ",")+")")
	}
	if len(f.LoadStatuses) > 0 {
		ph := make([]string, len(f.LoadStatuses))
		for i, st := range f.LoadStatuses {
			ph[i] = "?"
			args = append(args, st.String())
		}
		conds = append(conds, "load_status IN ("+strings.Join(ph, ",")+")")
	}
	if len(f.Difficulties) > 0 {
		ph := make([]string, len(f.Difficulties))
		for i, d := range f.Difficulties {
			ph[i] = "?"
			args = append(args, d)
		}
		conds = append(conds, "difficulty IN ("+strings.Join(ph, ",")+")")
	}
	where := "1=1"
	if len(conds) > 0 {
		where = strings.Join(conds, " AND ")
	}

	dir := "DESC"
	if f.Asc {
		dir = "ASC"
	}
	take := f.Take
	if take <= 0 {
		take = 50
	}
	args = append(args, take, f.Skip)

	query := fmt.Sprintf(`
        SELECT w.id, w.body, w.status, w.is_edited_after_load, w.load_status, w.difficulty, w.timestamp,
               wd.id, wd.definition, wd.status, wd."order",
               v.id, v.short, v."full"
        FROM (SELECT * FROM words
              WHERE %s
              ORDER BY %s %s, id ASC
              LIMIT ? OFFSET ?) w
        LEFT JOIN word_definitions wd ON wd.word_id = w.id
        LEFT JOIN vocs v ON wd.voc_id = v.id
        ORDER BY w.%s %s, w.id ASC, wd."order" ASC`,
		where, f.OrderBy.column(), dir, f.OrderBy.column(), dir)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search words: %w", err)
	}
	defer rows.Close()

	var out []WordRow
	for rows.Next() {
		var (
			r                  WordRow
			status, loadStatus string

			defID            sql.NullInt64
			defText          sql.NullString
			defStatus        sql.NullString
			defOrder         sql.NullInt64
			vocID            sql.NullInt64
			vocShort, vocFul sql.NullString
		)
		if err := rows.Scan(
			&r.Word.ID, &r.Word.Body, &status, &r.Word.IsEditedAfterLoad, &loadStatus, &r.Word.Difficulty, &r.Word.Timestamp,
			&defID, &defText, &defStatus, &defOrder,
			&vocID, &vocShort, &vocFul,
		); err != nil {
			return nil, err
		}
		if r.Word.Status, err = catalog.ParseWordStatus(status); err != nil {
			return nil, err
		}
		if r.Word.LoadStatus, err = catalog.ParseLoadStatus(loadStatus); err != nil {
			return nil, err
		}
		if defID.Valid {
			r.DefinitionID = &defID.Int64
			r.Definition = defText.String
			r.DefinitionOrder = int(defOrder.Int64)
			if r.DefinitionStatus, err = catalog.ParseDefinitionStatus(defStatus.String); err != nil {
				return nil, err
			}
		}
		if vocID.Valid {
			r.VocID = &vocID.Int64
			r.VocShort = vocShort.String
			r.VocFull = vocFul.String
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// UpdateWord persists an edited word and replaces its definitions in
// one transaction.
func (s *SQLite) UpdateWord(ctx context.Context, w catalog.Word, defs []catalog.WordDefinition) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
        UPDATE words SET body=?, status=?, is_edited_after_load=?, load_status=?, difficulty=?, timestamp=?
        WHERE id=?`,
		w.Body, w.Status.String(), w.IsEditedAfterLoad, w.LoadStatus.String(), w.Difficulty, w.Timestamp, w.ID); err != nil {
		return fmt.Errorf("update word %d: %w", w.ID, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM word_definitions WHERE word_id=?`, w.ID); err != nil {
		return fmt.Errorf("clear definitions: %w", err)
	}
	for _, d := range defs {
		var vocID any
		if d.VocID != nil {
			vocID = *d.VocID
		}
		if _, err := tx.ExecContext(ctx, `
            INSERT INTO word_definitions (definition, status, "order", word_id, voc_id)
            VALUES (?,?,?,?,?)`,
			d.Definition, d.Status.String(), d.Order, w.ID, vocID); err != nil {
			return fmt.Errorf("insert definition: %w", err)
		}
	}
	return tx.Commit()
}

// WordStats aggregates the catalog by status, load status and
// difficulty in one pass.
type WordStats struct {
	Active     int64
	NotActive  int64
	Draft      int64
	Loaded     int64
	LoadedFail int64
	NotLoaded  int64
	Easy       int64
	Medium     int64
	Hard       int64
	Total      int64
}

// Stats computes WordStats.
func (s *SQLite) Stats(ctx context.Context) (WordStats, error) {
	var st WordStats
	err := s.db.QueryRowContext(ctx, `
        SELECT COUNT(w.id),
               COALESCE(SUM(CASE w.status WHEN 'active' THEN 1 ELSE 0 END), 0),
               COALESCE(SUM(CASE w.status WHEN 'not_active' THEN 1 ELSE 0 END), 0),
               COALESCE(SUM(CASE w.status WHEN 'draft' THEN 1 ELSE 0 END), 0),
               COALESCE(SUM(CASE w.load_status WHEN 'loaded' THEN 1 ELSE 0 END), 0),
               COALESCE(SUM(CASE w.load_status WHEN 'loaded_with_fail' THEN 1 ELSE 0 END), 0),
               COALESCE(SUM(CASE w.load_status WHEN 'not_loaded' THEN 1 ELSE 0 END), 0),
               COALESCE(SUM(CASE w.difficulty WHEN 0 THEN 1 ELSE 0 END), 0),
               COALESCE(SUM(CASE w.difficulty WHEN 1 THEN 1 ELSE 0 END), 0),
               COALESCE(SUM(CASE w.difficulty WHEN 2 THEN 1 ELSE 0 END), 0)
        FROM words w`).Scan(
		&st.Total, &st.Active, &st.NotActive, &st.Draft,
		&st.Loaded, &st.LoadedFail, &st.NotLoaded,
		&st.Easy, &st.Medium, &st.Hard)
	if err != nil {
		return WordStats{}, fmt.Errorf("word stats: %w", err)
	}
	return st, nil
}

// AllVocs lists vocabulary labels.
func (s *SQLite) AllVocs(ctx context.Context) ([]catalog.Voc, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, short, "full" FROM vocs ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []catalog.Voc
	for rows.Next() {
		var v catalog.Voc
		if err := rows.Scan(&v.ID, &v.Short, &v.Full); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// VocsByShorts resolves vocabulary labels by their short names.
func (s *SQLite) VocsByShorts(ctx context.Context, shorts []string) ([]catalog.Voc, error) {
	if len(shorts) == 0 {
		return nil, nil
	}
	ph := strings.TrimSuffix(strings.Repeat("?,", len(shorts)), ",")
	args := make([]any, len(shorts))
	for i, sh := range shorts {
		args[i] = sh
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, short, "full" FROM vocs WHERE short IN (`+ph+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []catalog.Voc
	for rows.Next() {
		var v catalog.Voc
		if err := rows.Scan(&v.ID, &v.Short, &v.Full); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// InsertVoc adds a vocabulary label, ignoring duplicates by short name.
func (s *SQLite) InsertVoc(ctx context.Context, short, full string) error {
	_, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO vocs (short, "full") VALUES (?,?)`, short, full)
	return err
}
