package grid

import "time"

// Page is the browser surface the grid engine needs. It is a deliberate
// subset of what a real driver offers; pkg/browser adapts playwright to it.
type Page interface {
	// Goto navigates to the URL and waits for the initial load, bounded by
	// the timeout.
	Goto(url string, timeout time.Duration) error

	// WaitQuiescent blocks until no network requests have been in flight for
	// a short window, bounded by the timeout.
	WaitQuiescent(timeout time.Duration) error

	// WaitForURL blocks until the page URL matches the glob pattern, bounded
	// by the timeout.
	WaitForURL(pattern string, timeout time.Duration) error

	// URL reports the current page URL.
	URL() string

	// Locator resolves a selector against the full page. Resolution is lazy;
	// the returned Locator re-queries the DOM on every use.
	Locator(selector string) Locator

	// Screenshot writes a full-page PNG to path.
	Screenshot(path string) error
}

// Locator is a lazy reference to zero or more elements. Locators are never
// cached across operations; the grid may re-render at any suspension point,
// so every access re-resolves against the current DOM.
type Locator interface {
	// Count reports how many elements currently match.
	Count() (int, error)

	// Nth narrows to the element at the 0-based index.
	Nth(index int) Locator

	// First narrows to the first matching element.
	First() Locator

	// WithText narrows to elements whose rendered text contains the
	// substring (case-sensitive).
	WithText(substring string) Locator

	// Locator resolves a selector relative to this element.
	Locator(selector string) Locator

	// Click performs a single click.
	Click(timeout time.Duration) error

	// DblClick performs a double click.
	DblClick(timeout time.Duration) error

	// Fill clears the element and types the value.
	Fill(value string, timeout time.Duration) error

	// Press issues a single key event, e.g. "Enter".
	Press(key string, timeout time.Duration) error

	// WaitVisible blocks until the element is visible, bounded by the
	// timeout.
	WaitVisible(timeout time.Duration) error

	// TextContent returns the element's rendered text.
	TextContent() (string, error)
}
