// Owns the playwright lifecycle for one run: a persistent profile directory
// holds the authenticated session across runs, so its presence decides
// whether the next run needs to re-authenticate.

package browser

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/playwright-community/playwright-go"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36"

// Session is the browser state owned by the engine for the lifetime of one
// run and passed to each component, instead of re-derived ad hoc.
type Session struct {
	pw      *playwright.Playwright
	context playwright.BrowserContext
	page    playwright.Page
}

// Launch starts Chromium with a persistent profile. A stale SingletonLock
// from a crashed prior instance is cleared first; launch is retried once
// after a second cleanup, then the failure is fatal to the caller since no
// opportunity can be processed without a browser.
func Launch(profileDir string, headless bool) (*Session, error) {
	clearStaleLock(profileDir)

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("starting playwright: %w", err)
	}

	opts := playwright.BrowserTypeLaunchPersistentContextOptions{
		Headless:  playwright.Bool(headless),
		UserAgent: playwright.String(userAgent),
		Viewport:  &playwright.Size{Width: 1280, Height: 720},
	}

	context, err := pw.Chromium.LaunchPersistentContext(profileDir, opts)
	if err != nil {
		log.Printf("⚠️ Browser launch failed: %v. Clearing profile lock and retrying...", err)
		clearStaleLock(profileDir)
		context, err = pw.Chromium.LaunchPersistentContext(profileDir, opts)
		if err != nil {
			pw.Stop()
			return nil, fmt.Errorf("launching persistent context: %w", err)
		}
	}

	var page playwright.Page
	if pages := context.Pages(); len(pages) > 0 {
		page = pages[0]
	} else {
		page, err = context.NewPage()
		if err != nil {
			context.Close()
			pw.Stop()
			return nil, fmt.Errorf("opening page: %w", err)
		}
	}

	log.Printf("✅ Browser started with persistent profile at %s", profileDir)
	return &Session{pw: pw, context: context, page: page}, nil
}

// Page returns the single active page processed by this run.
func (s *Session) Page() playwright.Page {
	return s.page
}

// SeedCookies loads a JSON cookie file into the context. A missing file is
// not an error: the persistent profile usually carries the session already.
func (s *Session) SeedCookies(path string) error {
	if path == "" {
		return nil
	}
	cookies, err := loadCookies(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if err := s.context.AddCookies(cookies); err != nil {
		return fmt.Errorf("adding cookies: %w", err)
	}
	log.Printf("🍪 Seeded %d cookies from %s", len(cookies), path)
	return nil
}

func (s *Session) Close() {
	if s.context != nil {
		s.context.Close()
	}
	if s.pw != nil {
		s.pw.Stop()
	}
	log.Println("🛑 Browser stopped.")
}

// clearStaleLock removes the Chromium singleton lock left behind by a
// crashed instance. The profile dir is exclusively owned by one running
// engine, so a lock with no live browser is always stale.
func clearStaleLock(profileDir string) {
	lock := filepath.Join(profileDir, "SingletonLock")
	if _, err := os.Lstat(lock); err == nil {
		log.Println("🔓 Found existing browser lock file. Attempting cleanup...")
		if err := os.Remove(lock); err != nil {
			log.Printf("⚠️ Could not remove lock file: %v. Browser might still be running.", err)
		}
	}
}
