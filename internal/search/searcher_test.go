package search

import (
	"context"
	"testing"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobpilot/internal/config"
)

func TestBuildURL(t *testing.T) {
	url := BuildURL([]string{"golang developer"}, "São Paulo")
	assert.Contains(t, url, "keywords=golang+developer")
	assert.Contains(t, url, "f_AL=true")
	assert.Contains(t, url, "f_TPR=r604800")
	assert.Contains(t, url, "f_E=1%2C2")
}

func TestResolveLink(t *testing.T) {
	tests := []struct {
		name     string
		href     string
		layout   Layout
		expected string
	}{
		{
			name:     "auth relative link gets host prefix",
			href:     "/jobs/view/123",
			layout:   LayoutAuthenticated,
			expected: "https://www.linkedin.com/jobs/view/123",
		},
		{
			name:     "guest absolute link untouched",
			href:     "https://www.linkedin.com/jobs/view/456",
			layout:   LayoutGuest,
			expected: "https://www.linkedin.com/jobs/view/456",
		},
		{
			name:     "guest relative link is unresolvable",
			href:     "/jobs/view/789",
			layout:   LayoutGuest,
			expected: "",
		},
		{
			name:     "empty href",
			href:     "",
			layout:   LayoutAuthenticated,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, resolveLink(tt.href, tt.layout))
		})
	}
}

func TestExcluded(t *testing.T) {
	excludes := []string{"senior", "estágio", ""}

	assert.True(t, Excluded("Senior Golang Developer", excludes))
	assert.True(t, Excluded("Desenvolvedor SÊNIOR", excludes), "diacritic-insensitive match")
	assert.True(t, Excluded("Estagio em TI", excludes))
	assert.False(t, Excluded("Golang Developer", excludes))
}

func TestSampleKeywords(t *testing.T) {
	available := []string{"a", "b", "c", "d", "e"}

	picked := sampleKeywords(available, 3)
	assert.Len(t, picked, 3)
	for _, kw := range picked {
		assert.Contains(t, available, kw)
	}

	// Fewer available than requested: all returned.
	assert.Equal(t, []string{"a", "b"}, sampleKeywords([]string{"a", "b"}, 3))
}

// Integration test against a mocked results page, in the style of the
// real-browser tests: requires playwright browsers installed.
func TestSearch_GuestLayoutExtraction(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping browser test in short mode")
	}

	pw, err := playwright.Run()
	require.NoError(t, err)
	defer pw.Stop()
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	require.NoError(t, err)
	defer browser.Close()
	page, err := browser.NewPage()
	require.NoError(t, err)

	mockHTML := `<html><body>
	<ul class="jobs-search__results-list">
	  <li>
	    <h3 class="base-search-card__title">Golang Developer</h3>
	    <h4 class="base-search-card__subtitle">Acme</h4>
	    <span class="job-search-card__location">Remote</span>
	    <a class="base-card__full-link" href="https://www.linkedin.com/jobs/view/1?refId=x">x</a>
	  </li>
	  <li>
	    <h3 class="base-search-card__title">Senior Golang Developer</h3>
	    <h4 class="base-search-card__subtitle">Acme</h4>
	    <span class="job-search-card__location">Remote</span>
	    <a class="base-card__full-link" href="https://www.linkedin.com/jobs/view/2">x</a>
	  </li>
	  <li>
	    <h3 class="base-search-card__title">Still Loading Role</h3>
	  </li>
	</ul>
	</body></html>`

	err = page.Route("**/*", func(route playwright.Route) {
		route.Fulfill(playwright.RouteFulfillOptions{
			Status:      playwright.Int(200),
			ContentType: playwright.String("text/html"),
			Body:        mockHTML,
		})
	})
	require.NoError(t, err)

	cfg := &config.Config{
		Profile: config.Profile{
			IncludeKeywords: []string{"golang"},
			ExcludeKeywords: []string{"senior"},
			Locations:       []string{"Brazil"},
		},
	}
	searcher := New(cfg, nil)

	results, err := searcher.Search(context.Background(), page, []string{"golang"})
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "Golang Developer", results[0].Title)
	assert.Equal(t, "https://www.linkedin.com/jobs/view/1", results[0].Link, "tracking params stripped")
}

// A navigation failure must degrade to an empty list so the cycle continues;
// only browser launch failures may end a run.
func TestSearch_NavigationFailureYieldsEmptyList(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping browser test in short mode")
	}

	pw, err := playwright.Run()
	require.NoError(t, err)
	defer pw.Stop()
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	require.NoError(t, err)
	defer browser.Close()
	page, err := browser.NewPage()
	require.NoError(t, err)

	err = page.Route("**/*", func(route playwright.Route) {
		route.Abort()
	})
	require.NoError(t, err)

	searcher := New(&config.Config{}, nil)
	results, err := searcher.Search(context.Background(), page, []string{"golang"})

	require.NoError(t, err)
	assert.Empty(t, results)
}
