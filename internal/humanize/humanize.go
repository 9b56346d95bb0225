// Human-plausible timing and input patterns shared by every interactive step.
// Uniform delays and instant typing are the easiest automation signatures to
// flag, so all waits here are randomized within a range.

package humanize

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/playwright-community/playwright-go"

	"jobpilot/internal/config"
)

// Duration returns a random duration between min and max milliseconds.
func Duration(min, max int) time.Duration {
	if min >= max {
		return time.Duration(min) * time.Millisecond
	}
	return time.Duration(rand.Intn(max-min)+min) * time.Millisecond
}

// Delay pauses execution for a random time between min and max (milliseconds).
func Delay(min, max int) {
	time.Sleep(Duration(min, max))
}

// DelayRange pauses within a configured range.
func DelayRange(r config.DelayRange) {
	Delay(r.Min, r.Max)
}

// MouseJiggle simulates random mouse movements to prevent idle detection.
func MouseJiggle(page playwright.Page) {
	x := float64(rand.Intn(800) + 100) //100-900
	y := float64(rand.Intn(600) + 100) //100-700

	page.Mouse().Move(x, y)
	Delay(100, 300)
	page.Mouse().Move(x+float64(rand.Intn(100)), y+float64(rand.Intn(100)))
}

// SmoothScroll simulates human scrolling behavior with a small correction up.
func SmoothScroll(page playwright.Page) {
	page.Mouse().Wheel(0, 500)
	Delay(500, 1000)

	// Scroll up a tiny bit (human-like correction)
	page.Mouse().Wheel(0, -200)
	Delay(500, 800)
}

// ScrollSteps scrolls down in a bounded number of viewport steps, forcing
// lazy-loaded rows into the DOM before extraction reads them.
func ScrollSteps(page playwright.Page, steps int) error {
	for i := 0; i < steps; i++ {
		step := rand.Intn(400) + 300
		if _, err := page.Evaluate(fmt.Sprintf("window.scrollBy(0, %d)", step)); err != nil {
			return err
		}
		Delay(800, 1600)

		// Occasionally scroll back up a bit
		if rand.Float32() < 0.2 {
			page.Evaluate("window.scrollBy(0, -150)")
			Delay(400, 900)
		}
	}
	return nil
}

// Type fills a field one keystroke at a time with randomized per-key delays.
func Type(loc playwright.Locator, text string, r config.DelayRange) error {
	if err := loc.Click(); err != nil {
		return err
	}
	return loc.PressSequentially(text, playwright.LocatorPressSequentiallyOptions{
		Delay: playwright.Float(keyDelay(r)),
	})
}

// keyDelay picks the per-key delay, tolerating an inverted range the same
// way Duration does.
func keyDelay(r config.DelayRange) float64 {
	if r.Min >= r.Max {
		return float64(r.Min)
	}
	return float64(rand.Intn(r.Max-r.Min+1) + r.Min)
}
