package grid

import (
	"strconv"
	"time"

	"go.uber.org/zap"
)

// RowRef identifies a grid row at the moment of lookup: either a 1-based
// ordinal position or a text-match predicate. RowRefs are never persisted
// and resolve fresh on every use, because the grid may re-render between
// operations.
type RowRef struct {
	ordinal int
	text    string
}

// ByOrdinal references the nth visible data row, 1-based as the operator
// counts rows on screen.
func ByOrdinal(n int) RowRef {
	return RowRef{ordinal: n}
}

// ByText references the first row whose rendered text contains the
// substring (case-sensitive).
func ByText(substring string) RowRef {
	return RowRef{text: substring}
}

// IsOrdinal reports whether the reference is positional.
func (r RowRef) IsOrdinal() bool {
	return r.text == ""
}

// String renders the reference for logs.
func (r RowRef) String() string {
	if r.IsOrdinal() {
		return "row #" + strconv.Itoa(r.ordinal)
	}
	return "row matching " + r.text
}

// gridSettle is the pause after the grid container appears, letting the
// widget finish populating rows.
const gridSettle = 2 * time.Second

// RowLocator resolves row references against the live grid. It holds no
// element handles; every call re-queries the page.
type RowLocator struct {
	page      Page
	selectors Selectors
	timeout   time.Duration
	sleep     func(time.Duration)
	log       *zap.Logger
}

// NewRowLocator builds a locator for the grid identified by opts.Selectors.
func NewRowLocator(page Page, opts Options, log *zap.Logger) *RowLocator {
	return &RowLocator{
		page:      page,
		selectors: opts.Selectors,
		timeout:   opts.ElementTimeout,
		sleep:     time.Sleep,
		log:       log,
	}
}

// container re-resolves the grid container.
func (l *RowLocator) container() Locator {
	return l.page.Locator(l.selectors.GridContainer)
}

// Rows re-resolves the current data-row collection.
func (l *RowLocator) Rows() Locator {
	return l.container().Locator(l.selectors.DataRow)
}

// WaitReady blocks until the grid container is visible, then lets the widget
// settle. Returns false if the container never appears within the element
// timeout.
func (l *RowLocator) WaitReady() bool {
	if err := l.container().WaitVisible(l.timeout); err != nil {
		l.log.Warn("grid container did not become visible",
			zap.String("selector", l.selectors.GridContainer),
			zap.Error(err))
		return false
	}
	l.sleep(gridSettle)
	return true
}

// Locate resolves a row reference to a live locator. The boolean is false
// when the grid is not ready or no row matches; resolution misses are results,
// not errors.
func (l *RowLocator) Locate(ref RowRef) (Locator, bool) {
	if !l.WaitReady() {
		return nil, false
	}

	rows := l.Rows()

	if ref.IsOrdinal() {
		count, err := rows.Count()
		if err != nil {
			l.log.Warn("failed to count grid rows", zap.Error(err))
			return nil, false
		}
		if ref.ordinal < 1 || ref.ordinal > count {
			l.log.Debug("row ordinal out of range",
				zap.Int("ordinal", ref.ordinal),
				zap.Int("rows", count))
			return nil, false
		}
		// 1-based on screen, 0-based in the row collection
		return rows.Nth(ref.ordinal - 1), true
	}

	matched := rows.WithText(ref.text).First()
	count, err := matched.Count()
	if err != nil {
		l.log.Warn("failed to match grid rows by text", zap.Error(err))
		return nil, false
	}
	if count == 0 {
		l.log.Debug("no row contains text", zap.String("text", ref.text))
		return nil, false
	}
	return matched, true
}
