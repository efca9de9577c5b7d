package grid

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// fakeElement is a scriptable grid.Locator for tests. Collections carry
// items; leaf elements carry interaction recorders.
type fakeElement struct {
	count    int
	countErr error

	items []*fakeElement
	text  string

	children map[string]*fakeElement

	visibleErr error
	textErr    error

	clicks    int
	dblclicks int
	fills     []string
	presses   []string

	clickErr error
	fillErr  error
	pressErr error

	// fillErrFor fails Fill only for specific values, letting one batch item
	// fail while the rest succeed against the same cells.
	fillErrFor map[string]error

	// fillLog, when set, receives every filled value in order. Share one
	// log across elements to observe cross-cell ordering.
	fillLog *[]string
}

func emptyElement() *fakeElement {
	return &fakeElement{visibleErr: errors.New("no such element")}
}

func (f *fakeElement) Count() (int, error) {
	return f.count, f.countErr
}

func (f *fakeElement) Nth(index int) Locator {
	if index >= 0 && index < len(f.items) {
		return f.items[index]
	}
	return emptyElement()
}

func (f *fakeElement) First() Locator {
	if len(f.items) > 0 {
		return f.items[0]
	}
	return f
}

func (f *fakeElement) WithText(substring string) Locator {
	var matches []*fakeElement
	for _, item := range f.items {
		if strings.Contains(item.text, substring) {
			matches = append(matches, item)
		}
	}
	return &fakeElement{count: len(matches), items: matches}
}

func (f *fakeElement) Locator(selector string) Locator {
	if child, ok := f.children[selector]; ok {
		return child
	}
	return emptyElement()
}

func (f *fakeElement) Click(time.Duration) error {
	f.clicks++
	return f.clickErr
}

func (f *fakeElement) DblClick(time.Duration) error {
	f.dblclicks++
	return f.clickErr
}

func (f *fakeElement) Fill(value string, _ time.Duration) error {
	if f.fillErr != nil {
		return f.fillErr
	}
	if err, ok := f.fillErrFor[value]; ok {
		return err
	}
	f.fills = append(f.fills, value)
	if f.fillLog != nil {
		*f.fillLog = append(*f.fillLog, value)
	}
	return nil
}

func (f *fakeElement) Press(key string, _ time.Duration) error {
	if f.pressErr != nil {
		return f.pressErr
	}
	f.presses = append(f.presses, key)
	return nil
}

func (f *fakeElement) WaitVisible(time.Duration) error {
	return f.visibleErr
}

func (f *fakeElement) TextContent() (string, error) {
	return f.text, f.textErr
}

// fakePage is a scriptable grid.Page rooted at a selector map.
type fakePage struct {
	roots map[string]*fakeElement

	url           string
	gotoErr       error
	quiescentErr  error
	waitURLErr    error
	screenshotErr error

	gotoCalls    []string
	waitURLCalls []string
}

func newFakePage() *fakePage {
	return &fakePage{roots: map[string]*fakeElement{}, url: "https://portal.example/entry"}
}

func (p *fakePage) Goto(url string, _ time.Duration) error {
	p.gotoCalls = append(p.gotoCalls, url)
	return p.gotoErr
}

func (p *fakePage) WaitQuiescent(time.Duration) error {
	return p.quiescentErr
}

func (p *fakePage) WaitForURL(pattern string, _ time.Duration) error {
	p.waitURLCalls = append(p.waitURLCalls, pattern)
	return p.waitURLErr
}

func (p *fakePage) URL() string {
	return p.url
}

func (p *fakePage) Locator(selector string) Locator {
	if root, ok := p.roots[selector]; ok {
		return root
	}
	return emptyElement()
}

func (p *fakePage) Screenshot(string) error {
	return p.screenshotErr
}

// Test wiring helpers.

func testOptions() Options {
	return Options{
		EntryURL:         "https://portal.example/entry",
		PostLoginPattern: "**/entry*",
		Selectors: Selectors{
			GridContainer: "#grid",
			DataRow:       "tr.row",
			HeaderRow:     "tr.header",
			AddControls:   []string{"#add-primary", "#add-alt"},
			DeleteControls: []string{
				"#del-primary", "#del-alt",
			},
			ConfirmButton: "#confirm",
			SearchButton:  "#search",
			SaveAllButton: "#save",
			PasswordInput: "input[type='password']",
			CellEditor:    "input.editor",
		},
		Columns: map[string]int{
			"part_number":         1,
			"station":             2,
			"version":             3,
			"description":         4,
			"manufacturing_group": 5,
		},
		PageLoadTimeout: 10 * time.Millisecond,
		ElementTimeout:  10 * time.Millisecond,
		EditorTimeout:   10 * time.Millisecond,
		LoginTimeout:    10 * time.Millisecond,
		BatchDelay:      time.Millisecond,
	}
}

// newRow builds a data row with editable cells for the five mapped columns.
// fillLog receives every committed value in order; brokenEditors lists
// 1-based column positions whose inline editor never appears.
func newRow(text string, fillLog *[]string, brokenEditors ...int) *fakeElement {
	row := &fakeElement{count: 1, text: text, children: map[string]*fakeElement{}}

	broken := map[int]bool{}
	for _, pos := range brokenEditors {
		broken[pos] = true
	}

	var tds []*fakeElement
	for pos := 1; pos <= 5; pos++ {
		editor := &fakeElement{count: 1, fillLog: fillLog}
		if broken[pos] {
			editor.visibleErr = errors.New("editor did not open")
		}
		cell := &fakeElement{
			count:    1,
			children: map[string]*fakeElement{"input.editor": editor},
		}
		// mapped position pos renders as the pos+1'th child cell
		row.children[fmt.Sprintf("td:nth-child(%d)", pos+1)] = cell
		tds = append(tds, cell)
	}
	row.children["td"] = &fakeElement{count: len(tds), items: tds}
	return row
}

// newGridPage wires a page with a visible grid container holding the rows.
func newGridPage(rows ...*fakeElement) (*fakePage, *fakeElement) {
	container := &fakeElement{
		count: 1,
		children: map[string]*fakeElement{
			"tr.row": {count: len(rows), items: rows},
		},
	}
	page := newFakePage()
	page.roots["#grid"] = container
	page.roots["body"] = &fakeElement{count: 1}
	return page, container
}

// newTestOrchestrator builds an orchestrator with recorded sleeps so tests
// run instantly.
func newTestOrchestrator(page Page, opts Options) (*Orchestrator, *[]time.Duration) {
	o := NewOrchestrator(page, opts, zap.NewNop())
	var sleeps []time.Duration
	rec := func(d time.Duration) { sleeps = append(sleeps, d) }
	o.sleep = rec
	o.locator.sleep = rec
	o.editor.sleep = rec
	return o, &sleeps
}
