// Configured keyword-to-answer rules consulted before any AI fallback when
// filling application form questions.

package knowledge

import (
	"fmt"
	"log"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Entry maps question keywords to a canned answer.
type Entry struct {
	Keywords []string `yaml:"keywords"`
	Answer   string   `yaml:"answer"`
}

type file struct {
	Questions []Entry `yaml:"questions"`
}

// Base is the loaded rule set. Read-only after Load.
type Base struct {
	entries []Entry
}

// Load reads the answers file. A missing file yields an empty base (AI and
// deterministic fallbacks only), not an error.
func Load(path string) (*Base, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("ℹ️ No answers file at %s. Using AI/deterministic fallbacks only.", path)
			return &Base{}, nil
		}
		return nil, fmt.Errorf("reading answers file: %w", err)
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing answers file: %w", err)
	}
	log.Printf("📚 Loaded %d answer rules from %s", len(f.Questions), path)
	return &Base{entries: f.Questions}, nil
}

// Lookup returns the answer of the first entry, in declaration order, where
// any keyword is a case-insensitive substring of the question label. No
// scoring across multiple matching entries: first match wins.
func (b *Base) Lookup(label string) (string, bool) {
	lower := strings.ToLower(label)
	for _, entry := range b.entries {
		for _, kw := range entry.Keywords {
			if kw == "" {
				continue
			}
			if strings.Contains(lower, strings.ToLower(kw)) {
				return entry.Answer, true
			}
		}
	}
	return "", false
}

// Len reports the number of loaded rules.
func (b *Base) Len() int {
	return len(b.entries)
}
