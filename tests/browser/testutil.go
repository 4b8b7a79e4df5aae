// Package browser drives the agreements UI with Playwright. Every test gets its
// own in-process server; the browser itself is launched once and shared.
package browser

import (
	"os"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/kuitang/agreements-e2e/internal/app"
)

const (
	// Always use these timeout constants for browser tests.
	// Never introduce a larger timeout value anywhere in tests/browser.
	browserMaxTimeoutMS = 5000
	browserMaxTimeout   = 5 * time.Second
)

var (
	browserMu      sync.Mutex
	sharedPW       *playwright.Playwright
	sharedBrowser  playwright.Browser
	browserInitErr error
	browserOnce    sync.Once
)

// BrowserTestEnv is one test's server plus access to the shared browser.
type BrowserTestEnv struct {
	Server  *app.TestServer
	BaseURL string
}

// SetupBrowserTestEnv starts a fresh server and makes sure Chromium is
// running. The test is skipped under -short or when Playwright is missing.
func SetupBrowserTestEnv(t *testing.T) *BrowserTestEnv {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	initBrowser(t)

	srv := app.StartTestServer(t, app.TestOptions{})
	return &BrowserTestEnv{Server: srv, BaseURL: srv.BaseURL}
}

func initBrowser(t *testing.T) {
	t.Helper()

	browserMu.Lock()
	defer browserMu.Unlock()

	browserOnce.Do(func() {
		pw, err := playwright.Run()
		if err != nil {
			browserInitErr = err
			return
		}
		browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
			Headless: playwright.Bool(true),
		})
		if err != nil {
			_ = pw.Stop()
			browserInitErr = err
			return
		}
		sharedPW = pw
		sharedBrowser = browser
	})
	if browserInitErr != nil {
		t.Skip("Playwright not available:", browserInitErr)
	}
}

func cleanupBrowser() {
	browserMu.Lock()
	defer browserMu.Unlock()
	if sharedBrowser != nil {
		_ = sharedBrowser.Close()
		sharedBrowser = nil
	}
	if sharedPW != nil {
		_ = sharedPW.Stop()
		sharedPW = nil
	}
}

func TestMain(m *testing.M) {
	code := m.Run()
	cleanupBrowser()
	os.Exit(code)
}

// NewPage opens a page in a fresh browser context with the default timeouts.
func (env *BrowserTestEnv) NewPage(t *testing.T) playwright.Page {
	t.Helper()

	ctx, err := sharedBrowser.NewContext()
	if err != nil {
		t.Fatalf("could not create browser context: %v", err)
	}
	t.Cleanup(func() { _ = ctx.Close() })
	ctx.SetDefaultTimeout(browserMaxTimeoutMS)
	ctx.SetDefaultNavigationTimeout(browserMaxTimeoutMS)

	page, err := ctx.NewPage()
	if err != nil {
		t.Fatalf("could not create page: %v", err)
	}
	return page
}

// OpenAgreements opens a page on the agreements listing.
func (env *BrowserTestEnv) OpenAgreements(t *testing.T) playwright.Page {
	t.Helper()
	page := env.NewPage(t)
	Navigate(t, page, env.BaseURL, "/agreements")
	WaitForSelector(t, page, AgreementPage.SearchInput)
	return page
}

// =============================================================================
// Navigation and wait helpers
// =============================================================================

// Navigate navigates to a path on the test server and waits for DOMContentLoaded.
func Navigate(t *testing.T, page playwright.Page, baseURL, path string) {
	t.Helper()

	_, err := page.Goto(baseURL+path, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(browserMaxTimeoutMS),
	})
	if err != nil {
		t.Fatalf("Failed to navigate to %s: %v", path, err)
	}
}

// WaitForSelector waits for an element to be visible and returns its locator.
func WaitForSelector(t *testing.T, page playwright.Page, selector string) playwright.Locator {
	t.Helper()

	first := page.Locator(selector).First()
	err := first.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(browserMaxTimeoutMS),
	})
	if err != nil {
		title, _ := page.Title()
		content, _ := page.Content()
		if len(content) > 500 {
			content = content[:500] + "..."
		}
		t.Logf("Current URL: %s", page.URL())
		t.Logf("Current title: %s", title)
		t.Logf("Content preview: %s", content)
		t.Fatalf("Failed to wait for selector %s: %v", selector, err)
	}
	return first
}

// WaitForURL waits until the page URL matches pattern.
func WaitForURL(t *testing.T, page playwright.Page, pattern *regexp.Regexp) {
	t.Helper()

	err := page.WaitForURL(pattern, playwright.PageWaitForURLOptions{
		Timeout: playwright.Float(browserMaxTimeoutMS),
	})
	if err != nil {
		t.Fatalf("URL %s never matched %s: %v", page.URL(), pattern, err)
	}
}

// TextOf returns the trimmed text content of the first match of selector.
func TextOf(t *testing.T, page playwright.Page, selector string) string {
	t.Helper()

	text, err := WaitForSelector(t, page, selector).TextContent()
	if err != nil {
		t.Fatalf("Failed to read text of %s: %v", selector, err)
	}
	return strings.TrimSpace(text)
}
