package wiki

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const fixturePage = `<!DOCTYPE html>
<html><body>
<div class="mw-parser-output">
<h1><span class="mw-headline">Русский</span></h1>
<h3><span class="mw-headline">Морфологические свойства</span></h3>
<p>дом</p>
<h4><span class="mw-headline">Значение</span></h4>
<div><ol>
<li><a href="/wiki/x"><span>разг.</span></a>, жилое&nbsp;здание [1] ◆ Наш дом стоял на углу.</li>
<li>помещение, где  живут люди [2]</li>
<li><a href="/wiki/y"><span>устар.</span></a> старое [а 1] значение</li>
<li>◆ только пример</li>
</ol></div>
<h4><span class="mw-headline">Синонимы</span></h4>
<div><ol><li>здание</li></ol></div>
<h1><span class="mw-headline">Болгарский</span></h1>
<h4><span class="mw-headline">Значение</span></h4>
<div><ol><li>чужое значение</li></ol></div>
</div>
</body></html>`

func TestParse(t *testing.T) {
	defs, err := Parse(strings.NewReader(fixturePage))
	if err != nil {
		t.Fatal(err)
	}

	want := []Definition{
		{Labels: []string{"разг."}, Text: "жилое здание"},
		{Labels: nil, Text: "помещение, где живут люди"},
		{Labels: []string{"устар."}, Text: "старое значение"},
	}
	if len(defs) != len(want) {
		t.Fatalf("got %d definitions %+v, want %d", len(defs), defs, len(want))
	}
	for i, d := range defs {
		if d.Text != want[i].Text {
			t.Errorf("definition %d text = %q, want %q", i, d.Text, want[i].Text)
		}
		if len(d.Labels) != len(want[i].Labels) {
			t.Errorf("definition %d labels = %v, want %v", i, d.Labels, want[i].Labels)
			continue
		}
		for j := range d.Labels {
			if d.Labels[j] != want[i].Labels[j] {
				t.Errorf("definition %d labels = %v, want %v", i, d.Labels, want[i].Labels)
			}
		}
	}
}

func TestParseNoRussianBlock(t *testing.T) {
	page := `<html><body><div class="mw-parser-output">
<h1><span class="mw-headline">English</span></h1>
<h4><span class="mw-headline">Значение</span></h4>
<ol><li>never reached</li></ol>
</div></body></html>`

	defs, err := Parse(strings.NewReader(page))
	if err != nil {
		t.Fatal(err)
	}
	if len(defs) != 0 {
		t.Fatalf("got %d definitions, want 0", len(defs))
	}
}

func TestParseMissingContentBlock(t *testing.T) {
	if _, err := Parse(strings.NewReader(`<html><body><p>nothing</p></body></html>`)); err == nil {
		t.Fatal("expected an error for a page without mw-parser-output")
	}
}

func TestCleanup(t *testing.T) {
	tests := []struct {
		name   string
		labels []string
		raw    string
		want   string
	}{
		{"plain", nil, "жилое здание", "жилое здание"},
		{"nbsp and spaces", nil, "жилое  здание", "жилое здание"},
		{"sample cut", nil, "здание ◆ пример", "здание"},
		{"footnotes", nil, "здание [1] [а 2]", "здание"},
		{"labels stripped", []string{"разг."}, "разг., здание", "здание"},
		{"only sample", nil, "◆ пример", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := cleanup(tc.labels, tc.raw); got != tc.want {
				t.Fatalf("cleanup(%v, %q) = %q, want %q", tc.labels, tc.raw, got, tc.want)
			}
		})
	}
}

func TestClientDefinitions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("title"); got != "дом" {
			t.Errorf("title = %q, want %q", got, "дом")
		}
		if got := r.URL.Query().Get("printable"); got != "yes" {
			t.Errorf("printable = %q, want %q", got, "yes")
		}
		_, _ = w.Write([]byte(fixturePage))
	}))
	defer srv.Close()

	c := NewClient()
	c.BaseURL = srv.URL
	defs, err := c.Definitions(context.Background(), "дом")
	if err != nil {
		t.Fatal(err)
	}
	if len(defs) != 3 {
		t.Fatalf("got %d definitions, want 3", len(defs))
	}
}

func TestClientBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient()
	c.BaseURL = srv.URL
	if _, err := c.Definitions(context.Background(), "дом"); err == nil {
		t.Fatal("expected an error on non-200 response")
	}
}
