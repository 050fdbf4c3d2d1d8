// internal/catalog/types.go
//
// Word catalog types: the administrative side of the backend. Words
// carry a moderation status, a definition load status and a difficulty;
// definitions optionally reference a vocabulary label (voc).

package catalog

import "fmt"

// WordStatus is the moderation state of a catalog word.
type WordStatus int

const (
	WordActive WordStatus = iota
	WordNotActive
	WordDraft
)

func (s WordStatus) String() string {
	switch s {
	case WordActive:
		return "active"
	case WordNotActive:
		return "not_active"
	}
	return "draft"
}

// ParseWordStatus maps the persisted string back to a WordStatus.
func ParseWordStatus(s string) (WordStatus, error) {
	switch s {
	case "active":
		return WordActive, nil
	case "not_active":
		return WordNotActive, nil
	case "draft":
		return WordDraft, nil
	}
	return WordDraft, fmt.Errorf("unknown word status %q", s)
}

// LoadStatus tracks whether definitions were imported for a word.
type LoadStatus int

const (
	NotLoaded LoadStatus = iota
	Loaded
	LoadedWithFail
)

func (s LoadStatus) String() string {
	switch s {
	case Loaded:
		return "loaded"
	case LoadedWithFail:
		return "loaded_with_fail"
	}
	return "not_loaded"
}

// ParseLoadStatus maps the persisted string back to a LoadStatus.
func ParseLoadStatus(s string) (LoadStatus, error) {
	switch s {
	case "not_loaded":
		return NotLoaded, nil
	case "loaded":
		return Loaded, nil
	case "loaded_with_fail":
		return LoadedWithFail, nil
	}
	return NotLoaded, fmt.Errorf("unknown load status %q", s)
}

// DefinitionStatus is the moderation state of one definition.
type DefinitionStatus int

const (
	DefinitionActive DefinitionStatus = iota
	DefinitionNotActive
)

func (s DefinitionStatus) String() string {
	if s == DefinitionActive {
		return "active"
	}
	return "not_active"
}

// ParseDefinitionStatus maps the persisted string back to a DefinitionStatus.
func ParseDefinitionStatus(s string) (DefinitionStatus, error) {
	switch s {
	case "active":
		return DefinitionActive, nil
	case "not_active":
		return DefinitionNotActive, nil
	}
	return DefinitionNotActive, fmt.Errorf("unknown definition status %q", s)
}

// Word is one catalog entry. Timestamp is an optimistic-lock version:
// every admin mutation must present the value it read, and every
// mutation stamps a fresh one.
type Word struct {
	ID                int64
	Body              string
	Status            WordStatus
	IsEditedAfterLoad bool
	LoadStatus        LoadStatus
	Difficulty        int // 0 easy, 1 medium, 2 hard
	Timestamp         int64
}

// WordDefinition is one imported or hand-edited definition of a word.
type WordDefinition struct {
	ID         int64
	Definition string
	Status     DefinitionStatus
	Order      int
	WordID     int64
	VocID      *int64
}

// Voc is a vocabulary label (e.g. colloquial, archaic) attached to
// definitions by the importer.
type Voc struct {
	ID    int64
	Short string
	Full  string
}
