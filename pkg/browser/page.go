package browser

import (
	"regexp"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/austinchang/gridsync/pkg/grid"
)

// pageAdapter implements grid.Page on a playwright page.
type pageAdapter struct {
	page playwright.Page
}

func ms(d time.Duration) *float64 {
	return playwright.Float(float64(d.Milliseconds()))
}

func (a *pageAdapter) Goto(url string, timeout time.Duration) error {
	_, err := a.page.Goto(url, playwright.PageGotoOptions{
		Timeout: ms(timeout),
	})
	return err
}

func (a *pageAdapter) WaitQuiescent(timeout time.Duration) error {
	return a.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: ms(timeout),
	})
}

func (a *pageAdapter) WaitForURL(pattern string, timeout time.Duration) error {
	return a.page.WaitForURL(pattern, playwright.PageWaitForURLOptions{
		Timeout: ms(timeout),
	})
}

func (a *pageAdapter) URL() string {
	return a.page.URL()
}

func (a *pageAdapter) Locator(selector string) grid.Locator {
	return locatorAdapter{locator: a.page.Locator(selector)}
}

func (a *pageAdapter) Screenshot(path string) error {
	_, err := a.page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	return err
}

// locatorAdapter implements grid.Locator on a playwright locator. Locators
// stay lazy: narrowing methods return new adapters and nothing resolves
// until an action or query runs.
type locatorAdapter struct {
	locator playwright.Locator
}

func (l locatorAdapter) Count() (int, error) {
	return l.locator.Count()
}

func (l locatorAdapter) Nth(index int) grid.Locator {
	return locatorAdapter{locator: l.locator.Nth(index)}
}

func (l locatorAdapter) First() grid.Locator {
	return locatorAdapter{locator: l.locator.First()}
}

func (l locatorAdapter) WithText(substring string) grid.Locator {
	return locatorAdapter{locator: l.locator.Filter(playwright.LocatorFilterOptions{
		HasText: exactText(substring),
	})}
}

// exactText builds the hasText filter pattern for a case-sensitive substring
// match. A plain string filter is case-insensitive in the driver, which could
// resolve a text reference onto the wrong row.
func exactText(substring string) *regexp.Regexp {
	return regexp.MustCompile(regexp.QuoteMeta(substring))
}

func (l locatorAdapter) Locator(selector string) grid.Locator {
	return locatorAdapter{locator: l.locator.Locator(selector)}
}

func (l locatorAdapter) Click(timeout time.Duration) error {
	return l.locator.Click(playwright.LocatorClickOptions{Timeout: ms(timeout)})
}

func (l locatorAdapter) DblClick(timeout time.Duration) error {
	return l.locator.Dblclick(playwright.LocatorDblclickOptions{Timeout: ms(timeout)})
}

func (l locatorAdapter) Fill(value string, timeout time.Duration) error {
	return l.locator.Fill(value, playwright.LocatorFillOptions{Timeout: ms(timeout)})
}

func (l locatorAdapter) Press(key string, timeout time.Duration) error {
	return l.locator.Press(key, playwright.LocatorPressOptions{Timeout: ms(timeout)})
}

func (l locatorAdapter) WaitVisible(timeout time.Duration) error {
	return l.locator.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: ms(timeout),
	})
}

func (l locatorAdapter) TextContent() (string, error) {
	return l.locator.TextContent()
}
