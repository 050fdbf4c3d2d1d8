package catalog

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/verba-game/go-server/internal/verr"
)

var now = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func baseWord() Word {
	return Word{
		ID:         5,
		Body:       "собака",
		Status:     WordDraft,
		LoadStatus: NotLoaded,
		Difficulty: 1,
		Timestamp:  1000,
	}
}

func TestNewWordValidatesBody(t *testing.T) {
	if _, err := NewWord("", WordDraft, 0, now); !verr.Is(err, verr.CodeValidation) {
		t.Fatalf("err = %v", err)
	}
	if _, err := NewWord(strings.Repeat("x", 256), WordDraft, 0, now); !verr.Is(err, verr.CodeValidation) {
		t.Fatalf("err = %v", err)
	}
	w, err := NewWord("гора", WordActive, 2, now)
	if err != nil {
		t.Fatalf("NewWord: %v", err)
	}
	if w.LoadStatus != NotLoaded || w.Timestamp != now.Unix() {
		t.Fatalf("word: %+v", w)
	}
}

func TestLoadDefinitionsTimestampGuard(t *testing.T) {
	_, _, err := LoadDefinitions(baseWord(), 999, nil, nil, now)
	if !verr.Is(err, verr.CodeTimestamp) {
		t.Fatalf("err = %v, want Timestamp", err)
	}
}

func TestLoadDefinitionsFailureMarksWord(t *testing.T) {
	for _, tc := range []struct {
		name      string
		imported  []ImportedDefinition
		importErr error
	}{
		{"fetch error", nil, errors.New("boom")},
		{"nothing parsed", nil, nil},
	} {
		t.Run(tc.name, func(t *testing.T) {
			w, defs, err := LoadDefinitions(baseWord(), 1000, tc.imported, tc.importErr, now)
			if err != nil {
				t.Fatalf("LoadDefinitions: %v", err)
			}
			if w.LoadStatus != LoadedWithFail {
				t.Fatalf("load status = %v", w.LoadStatus)
			}
			if len(defs) != 0 {
				t.Fatalf("definitions: %+v", defs)
			}
			if w.Timestamp != now.Unix() {
				t.Fatalf("timestamp not refreshed: %d", w.Timestamp)
			}
		})
	}
}

func TestLoadDefinitionsSuccess(t *testing.T) {
	voc := Voc{ID: 3, Short: "разг.", Full: "разговорное"}
	imported := []ImportedDefinition{
		{Text: "домашнее животное семейства псовых"},
		{Text: "перен. преданный человек", Voc: &voc},
	}
	w, defs, err := LoadDefinitions(baseWord(), 1000, imported, nil, now)
	if err != nil {
		t.Fatalf("LoadDefinitions: %v", err)
	}
	if w.LoadStatus != Loaded {
		t.Fatalf("load status = %v", w.LoadStatus)
	}
	if len(defs) != 2 {
		t.Fatalf("definitions: %d", len(defs))
	}
	for i, d := range defs {
		if d.Order != i || d.Status != DefinitionNotActive || d.WordID != 5 {
			t.Fatalf("definition %d: %+v", i, d)
		}
	}
	if defs[1].VocID == nil || *defs[1].VocID != 3 {
		t.Fatalf("voc id: %+v", defs[1])
	}
	if defs[0].VocID != nil {
		t.Fatalf("unexpected voc on first definition: %+v", defs[0])
	}
}

func TestLoadDefinitionsRejectsShortDefinition(t *testing.T) {
	imported := []ImportedDefinition{{Text: "то"}}
	if _, _, err := LoadDefinitions(baseWord(), 1000, imported, nil, now); !verr.Is(err, verr.CodeValidation) {
		t.Fatalf("err = %v", err)
	}
}

func TestUpdate(t *testing.T) {
	vocID := int64(4)
	edits := []DefinitionEdit{
		{Definition: "первое значение слова", Status: DefinitionActive},
		{Definition: "второе значение слова", Status: DefinitionNotActive, VocID: &vocID},
	}
	w, defs, err := Update(baseWord(), WordActive, 2, 1000, edits, now)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if w.Status != WordActive || w.Difficulty != 2 || w.Timestamp != now.Unix() {
		t.Fatalf("word: %+v", w)
	}
	if len(defs) != 2 || defs[0].Order != 0 || defs[1].Order != 1 {
		t.Fatalf("definitions: %+v", defs)
	}
	if defs[1].VocID == nil || *defs[1].VocID != 4 {
		t.Fatalf("voc id not carried: %+v", defs[1])
	}

	if _, _, err := Update(baseWord(), WordActive, 2, 42, edits, now); !verr.Is(err, verr.CodeTimestamp) {
		t.Fatalf("stale timestamp: %v", err)
	}
}

func TestStatusRoundTrips(t *testing.T) {
	for _, s := range []WordStatus{WordActive, WordNotActive, WordDraft} {
		got, err := ParseWordStatus(s.String())
		if err != nil || got != s {
			t.Fatalf("word status %v: %v %v", s, got, err)
		}
	}
	for _, s := range []LoadStatus{NotLoaded, Loaded, LoadedWithFail} {
		got, err := ParseLoadStatus(s.String())
		if err != nil || got != s {
			t.Fatalf("load status %v: %v %v", s, got, err)
		}
	}
	for _, s := range []DefinitionStatus{DefinitionActive, DefinitionNotActive} {
		got, err := ParseDefinitionStatus(s.String())
		if err != nil || got != s {
			t.Fatalf("definition status %v: %v %v", s, got, err)
		}
	}
	if _, err := ParseWordStatus("bogus"); err == nil {
		t.Fatal("expected parse error")
	}
}
