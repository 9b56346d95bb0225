// Resume text access. Extraction from PDF/DOCX is an external collaborator;
// the engine only needs the already-extracted free text for AI context.

package resume

import (
	"fmt"
	"os"
	"strings"
)

// LoadText reads the resume free text. An empty path means no resume is
// configured, which degrades AI context but is not an error.
func LoadText(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading resume file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
