package words

import "testing"

func TestStarterList(t *testing.T) {
	list, err := StarterList()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) == 0 {
		t.Fatal("starter list is empty")
	}
	seen := map[string]bool{}
	for _, w := range list {
		if w == "" {
			t.Fatal("blank entry in starter list")
		}
		if seen[w] {
			t.Fatalf("duplicate entry %q", w)
		}
		seen[w] = true
	}
}
