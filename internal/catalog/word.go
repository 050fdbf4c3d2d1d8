// internal/catalog/word.go
//
// Pure word-catalog operations: admin edits and definition imports.
// Both are guarded by the word's Timestamp version so concurrent admin
// sessions cannot clobber each other; both return the updated word plus
// the full replacement set of definitions.

package catalog

import (
	"time"

	"github.com/verba-game/go-server/internal/verr"
)

const (
	minBodyLen       = 1
	maxBodyLen       = 255
	minDefinitionLen = 10
	maxDefinitionLen = 1000
)

func validateBody(body string) error {
	if len(body) < minBodyLen || len(body) > maxBodyLen {
		return verr.New(verr.CodeValidation, "Body size 1-255")
	}
	return nil
}

func validateDefinition(definition string) error {
	if len(definition) < minDefinitionLen || len(definition) > maxDefinitionLen {
		return verr.New(verr.CodeValidation, "Definition's length should be in range 10-1000")
	}
	return nil
}

func checkTimestamp(word Word, timestamp int64) error {
	if word.Timestamp != timestamp {
		return verr.New(verr.CodeTimestamp, "Timestamp is wrong")
	}
	return nil
}

// NewWord validates and builds a catalog entry.
func NewWord(body string, status WordStatus, difficulty int, now time.Time) (Word, error) {
	if err := validateBody(body); err != nil {
		return Word{}, err
	}
	return Word{
		Body:       body,
		Status:     status,
		LoadStatus: NotLoaded,
		Difficulty: difficulty,
		Timestamp:  now.Unix(),
	}, nil
}

// ImportedDefinition is one parsed definition with its optional voc.
type ImportedDefinition struct {
	Text string
	Voc  *Voc
}

// LoadDefinitions applies an import result to a word. A failed or empty
// import marks the word loaded_with_fail and keeps its definitions; a
// successful one replaces them, numbered by input position and created
// NotActive pending review.
func LoadDefinitions(word Word, timestamp int64, imported []ImportedDefinition, importErr error, now time.Time) (Word, []WordDefinition, error) {
	if err := checkTimestamp(word, timestamp); err != nil {
		return Word{}, nil, err
	}

	next := word
	next.Timestamp = now.Unix()

	if importErr != nil || len(imported) == 0 {
		next.LoadStatus = LoadedWithFail
		return next, nil, nil
	}

	defs := make([]WordDefinition, 0, len(imported))
	for i, d := range imported {
		if err := validateDefinition(d.Text); err != nil {
			return Word{}, nil, err
		}
		wd := WordDefinition{
			Definition: d.Text,
			Status:     DefinitionNotActive,
			Order:      i,
			WordID:     word.ID,
		}
		if d.Voc != nil {
			id := d.Voc.ID
			wd.VocID = &id
		}
		defs = append(defs, wd)
	}

	next.LoadStatus = Loaded
	return next, defs, nil
}

// DefinitionEdit is an admin-supplied definition in an update request.
type DefinitionEdit struct {
	Definition string
	Status     DefinitionStatus
	VocID      *int64
}

// Update applies an admin edit: new status, difficulty and the full
// replacement list of definitions, ordered by input position.
func Update(word Word, status WordStatus, difficulty int, timestamp int64, edits []DefinitionEdit, now time.Time) (Word, []WordDefinition, error) {
	if err := checkTimestamp(word, timestamp); err != nil {
		return Word{}, nil, err
	}

	defs := make([]WordDefinition, 0, len(edits))
	for i, e := range edits {
		if err := validateDefinition(e.Definition); err != nil {
			return Word{}, nil, err
		}
		defs = append(defs, WordDefinition{
			Definition: e.Definition,
			Status:     e.Status,
			Order:      i,
			WordID:     word.ID,
			VocID:      e.VocID,
		})
	}

	next := word
	next.Status = status
	next.Difficulty = difficulty
	next.Timestamp = now.Unix()
	return next, defs, nil
}
