// internal/words/embed.go
//
// Embedded starter word list used to seed an empty catalog.

package words

import (
	"bufio"
	"embed"
	"strings"
)

//go:embed starter.txt
var fs embed.FS

// StarterList returns the seed words, one per line, comments and blank
// lines skipped.
func StarterList() ([]string, error) {
	f, err := fs.Open("starter.txt")
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, strings.ToLower(s))
	}
	return out, sc.Err()
}
