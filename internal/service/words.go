// internal/service/words.go
//
// Admin word catalog use cases: search with nested definition views,
// edits under the optimistic timestamp lock, and the Wiktionary
// definition import.

package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/verba-game/go-server/internal/catalog"
	"github.com/verba-game/go-server/internal/store"
	"github.com/verba-game/go-server/internal/verr"
	"github.com/verba-game/go-server/internal/wiki"
)

// WordStore is the slice of storage the catalog flows need.
type WordStore interface {
	Word(ctx context.Context, id int64) (catalog.Word, error)
	SearchWords(ctx context.Context, f store.SearchFilter) ([]store.WordRow, error)
	UpdateWord(ctx context.Context, w catalog.Word, defs []catalog.WordDefinition) error
	VocsByShorts(ctx context.Context, shorts []string) ([]catalog.Voc, error)
	AllVocs(ctx context.Context) ([]catalog.Voc, error)
	Stats(ctx context.Context) (store.WordStats, error)
}

// DefinitionSource fetches parsed definitions for a word body.
type DefinitionSource interface {
	Definitions(ctx context.Context, word string) ([]wiki.Definition, error)
}

// Words runs the admin catalog flows.
type Words struct {
	Store WordStore
	Wiki  DefinitionSource
	Now   func() time.Time
}

// NewWords builds the service with the real clock.
func NewWords(st WordStore, src DefinitionSource) *Words {
	return &Words{Store: st, Wiki: src, Now: time.Now}
}

// VocView is a vocabulary label as rendered to the admin UI.
type VocView struct {
	ID    int64  `json:"id"`
	Short string `json:"short"`
	Full  string `json:"full"`
}

// WordDefinitionView is one definition inside a word view.
type WordDefinitionView struct {
	ID         int64    `json:"id"`
	Definition string   `json:"definition"`
	Status     string   `json:"status"`
	Order      int      `json:"order"`
	Voc        *VocView `json:"voc"`
}

// WordView is the nested word shape for search results.
type WordView struct {
	ID                int64                `json:"id"`
	Body              string               `json:"body"`
	Status            string               `json:"status"`
	IsEditedAfterLoad bool                 `json:"is_edited_after_load"`
	LoadStatus        string               `json:"load_status"`
	Definitions       []WordDefinitionView `json:"definitions"`
	Timestamp         int64                `json:"timestamp"`
	Difficulty        int                  `json:"difficulty"`
}

// FieldOrder picks the sort column and direction of a search.
type FieldOrder struct {
	FieldMatch string `json:"field_match"`
	IsAsc      bool   `json:"is_asc"`
}

// SearchWordsRequest filters and pages the catalog. Empty slices mean
// no filter on that axis.
type SearchWordsRequest struct {
	Text         string     `json:"text"`
	Statuses     []string   `json:"statuses"`
	LoadStatuses []string   `json:"load_statuses"`
	Difficulties []int      `json:"difficulties"`
	FieldOrder   FieldOrder `json:"field_order"`
	Skip         int64      `json:"skip"`
	Take         int64      `json:"take"`
}

// DefinitionEditRequest is one definition in an update submission.
type DefinitionEditRequest struct {
	Definition string `json:"definition"`
	Status     string `json:"status"`
	VocID      *int64 `json:"voc_id"`
}

// UpdateWordRequest edits a word's status, difficulty and definitions.
type UpdateWordRequest struct {
	ID          int64                   `json:"id"`
	Status      string                  `json:"status"`
	Difficulty  int                     `json:"difficulty"`
	Timestamp   int64                   `json:"timestamp"`
	Definitions []DefinitionEditRequest `json:"definitions"`
}

// LoadDefinitionsRequest triggers the Wiktionary import for one word.
type LoadDefinitionsRequest struct {
	ID        int64 `json:"id"`
	Timestamp int64 `json:"timestamp"`
}

func parseOrderField(s string) (store.OrderField, error) {
	switch s {
	case "", "body":
		return store.OrderByBody, nil
	case "status":
		return store.OrderByStatus, nil
	case "load_status":
		return store.OrderByLoadStatus, nil
	case "difficulty":
		return store.OrderByDifficulty, nil
	}
	return 0, verr.Newf(verr.CodeValidation, "Unknown order field %q", s)
}

// Search pages the catalog and folds flat join rows into word views,
// keeping the store's ordering.
func (s *Words) Search(ctx context.Context, req SearchWordsRequest) ([]WordView, error) {
	orderBy, err := parseOrderField(req.FieldOrder.FieldMatch)
	if err != nil {
		return nil, err
	}
	filter := store.SearchFilter{
		Text:         req.Text,
		Difficulties: req.Difficulties,
		OrderBy:      orderBy,
		Asc:          req.FieldOrder.IsAsc,
		Skip:         req.Skip,
		Take:         req.Take,
	}
	for _, raw := range req.Statuses {
		st, err := catalog.ParseWordStatus(raw)
		if err != nil {
			return nil, verr.New(verr.CodeValidation, err.Error())
		}
		filter.Statuses = append(filter.Statuses, st)
	}
	for _, raw := range req.LoadStatuses {
		st, err := catalog.ParseLoadStatus(raw)
		if err != nil {
			return nil, verr.New(verr.CodeValidation, err.Error())
		}
		filter.LoadStatuses = append(filter.LoadStatuses, st)
	}

	rows, err := s.Store.SearchWords(ctx, filter)
	if err != nil {
		return nil, err
	}

	var (
		out   []WordView
		index = map[int64]int{}
	)
	for _, r := range rows {
		i, ok := index[r.Word.ID]
		if !ok {
			i = len(out)
			index[r.Word.ID] = i
			out = append(out, WordView{
				ID:                r.Word.ID,
				Body:              r.Word.Body,
				Status:            r.Word.Status.String(),
				IsEditedAfterLoad: r.Word.IsEditedAfterLoad,
				LoadStatus:        r.Word.LoadStatus.String(),
				Definitions:       []WordDefinitionView{},
				Timestamp:         r.Word.Timestamp,
				Difficulty:        r.Word.Difficulty,
			})
		}
		if r.DefinitionID == nil {
			continue
		}
		dv := WordDefinitionView{
			ID:         *r.DefinitionID,
			Definition: r.Definition,
			Status:     r.DefinitionStatus.String(),
			Order:      r.DefinitionOrder,
		}
		if r.VocID != nil {
			dv.Voc = &VocView{ID: *r.VocID, Short: r.VocShort, Full: r.VocFull}
		}
		out[i].Definitions = append(out[i].Definitions, dv)
	}
	return out, nil
}

// Update applies an admin edit to a word under the timestamp lock.
func (s *Words) Update(ctx context.Context, req UpdateWordRequest) error {
	word, err := s.Store.Word(ctx, req.ID)
	if err != nil {
		return err
	}
	status, err := catalog.ParseWordStatus(req.Status)
	if err != nil {
		return verr.New(verr.CodeValidation, err.Error())
	}

	edits := make([]catalog.DefinitionEdit, len(req.Definitions))
	for i, d := range req.Definitions {
		st, err := catalog.ParseDefinitionStatus(d.Status)
		if err != nil {
			return verr.New(verr.CodeValidation, err.Error())
		}
		edits[i] = catalog.DefinitionEdit{Definition: d.Definition, Status: st, VocID: d.VocID}
	}

	next, defs, err := catalog.Update(word, status, req.Difficulty, req.Timestamp, edits, s.Now())
	if err != nil {
		return err
	}
	return s.Store.UpdateWord(ctx, next, defs)
}

// LoadDefinitions imports a word's definitions from Wiktionary. A
// failed fetch or an empty parse marks the word loaded_with_fail
// instead of failing the request.
func (s *Words) LoadDefinitions(ctx context.Context, req LoadDefinitionsRequest) error {
	word, err := s.Store.Word(ctx, req.ID)
	if err != nil {
		return err
	}

	parsed, fetchErr := s.Wiki.Definitions(ctx, word.Body)
	if fetchErr != nil {
		log.Warn().Err(fetchErr).Str("word", word.Body).Msg("definition import failed")
	}

	imported, err := s.resolveVocs(ctx, parsed)
	if err != nil {
		return err
	}

	next, defs, err := catalog.LoadDefinitions(word, req.Timestamp, imported, fetchErr, s.Now())
	if err != nil {
		return err
	}
	return s.Store.UpdateWord(ctx, next, defs)
}

// resolveVocs maps each definition's first known label to a stored
// voc. Labels without a voc record are dropped.
func (s *Words) resolveVocs(ctx context.Context, parsed []wiki.Definition) ([]catalog.ImportedDefinition, error) {
	var (
		shorts []string
		seen   = map[string]bool{}
	)
	for _, d := range parsed {
		for _, l := range d.Labels {
			if !seen[l] {
				seen[l] = true
				shorts = append(shorts, l)
			}
		}
	}
	vocs, err := s.Store.VocsByShorts(ctx, shorts)
	if err != nil {
		return nil, err
	}
	byShort := make(map[string]catalog.Voc, len(vocs))
	for _, v := range vocs {
		byShort[v.Short] = v
	}

	out := make([]catalog.ImportedDefinition, len(parsed))
	for i, d := range parsed {
		imp := catalog.ImportedDefinition{Text: d.Text}
		for _, l := range d.Labels {
			if v, ok := byShort[l]; ok {
				imp.Voc = &v
				break
			}
		}
		out[i] = imp
	}
	return out, nil
}

// StatusStats splits the catalog by moderation status.
type StatusStats struct {
	Active    int64 `json:"active"`
	Draft     int64 `json:"draft"`
	NotActive int64 `json:"not_active"`
}

// LoadStatusStats splits the catalog by definition load status.
type LoadStatusStats struct {
	Loaded         int64 `json:"loaded"`
	LoadedWithFail int64 `json:"loaded_with_fail"`
	NotLoaded      int64 `json:"not_loaded"`
}

// DifficultyStats splits the catalog by difficulty.
type DifficultyStats struct {
	Easy   int64 `json:"easy"`
	Medium int64 `json:"medium"`
	Hard   int64 `json:"hard"`
}

// WordStatsView is the admin dashboard aggregate.
type WordStatsView struct {
	Status       StatusStats     `json:"status"`
	LoadStatus   LoadStatusStats `json:"load_status"`
	Difficulties DifficultyStats `json:"difficulties"`
	Total        int64           `json:"total"`
}

// Stats aggregates the catalog for the admin dashboard.
func (s *Words) Stats(ctx context.Context) (WordStatsView, error) {
	st, err := s.Store.Stats(ctx)
	if err != nil {
		return WordStatsView{}, err
	}
	return WordStatsView{
		Status:       StatusStats{Active: st.Active, Draft: st.Draft, NotActive: st.NotActive},
		LoadStatus:   LoadStatusStats{Loaded: st.Loaded, LoadedWithFail: st.LoadedFail, NotLoaded: st.NotLoaded},
		Difficulties: DifficultyStats{Easy: st.Easy, Medium: st.Medium, Hard: st.Hard},
		Total:        st.Total,
	}, nil
}

// Vocs lists the vocabulary labels.
func (s *Words) Vocs(ctx context.Context) ([]VocView, error) {
	vocs, err := s.Store.AllVocs(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]VocView, len(vocs))
	for i, v := range vocs {
		out[i] = VocView{ID: v.ID, Short: v.Short, Full: v.Full}
	}
	return out, nil
}
