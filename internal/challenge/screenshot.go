package challenge

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Screenshotter captures full-page evidence screenshots to timestamped paths.
type Screenshotter struct {
	outputDir string
}

func NewScreenshotter(dir string) *Screenshotter {
	os.MkdirAll(dir, 0755)
	return &Screenshotter{outputDir: dir}
}

// Capture saves a full-page screenshot and returns its path.
func (s *Screenshotter) Capture(page playwright.Page, name string) (string, error) {
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	path := filepath.Join(s.outputDir, fmt.Sprintf("%s_%s.png", name, timestamp))

	_, err := page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("capturing screenshot: %w", err)
	}
	return path, nil
}
