package grid

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/austinchang/gridsync/pkg/record"
)

// createThreshold is the minimum field success rate for a create to count
// as successful. Edit accepts the same rate or any single committed field.
const createThreshold = 0.8

// Preview bounds for View.
const (
	previewRows = 10
	previewCols = 6
)

// Settle delays between grid interactions.
const (
	rowSelectSettle = 500 * time.Millisecond
	addSettle       = 2 * time.Second
	confirmWait     = 2 * time.Second
	buttonSettle    = 3 * time.Second
)

// Orchestrator composes the row locator, cell editor, and record field order
// into whole-record grid operations. All methods return structured results;
// none of them panic or surface driver errors, and batches always run to
// completion.
//
// Exactly one orchestrator must drive one page at a time. Operations are
// strictly sequential; nothing here is safe for concurrent use against the
// same page.
type Orchestrator struct {
	page    Page
	opts    Options
	locator *RowLocator
	editor  *CellEditor
	sleep   func(time.Duration)
	log     *zap.Logger
}

// NewOrchestrator builds the grid engine for one page.
func NewOrchestrator(page Page, opts Options, log *zap.Logger) *Orchestrator {
	return &Orchestrator{
		page:    page,
		opts:    opts,
		locator: NewRowLocator(page, opts, log),
		editor:  NewCellEditor(page, opts, log),
		sleep:   time.Sleep,
		log:     log,
	}
}

// Create adds one record to the grid: invoke the add affordance if one
// exists, fill the last row field by field, and judge the outcome by field
// success rate.
func (o *Orchestrator) Create(rec record.Record) OperationResult {
	o.log.Info("creating record", zap.String("record", rec.String()))

	if !o.locator.WaitReady() {
		return abort(FailureGridNotReady, "grid container did not become visible")
	}

	// The add control is best-effort: some grid versions auto-provision an
	// editable blank row without one.
	if control, selector, found := firstMatch(o.locator.container(), probes(o.opts.Selectors.AddControls)); found {
		o.log.Info("clicking add control", zap.String("selector", selector))
		if err := control.Click(o.opts.ElementTimeout); err != nil {
			o.log.Warn("add control click failed, continuing", zap.Error(err))
		}
		o.sleep(addSettle)
	} else {
		o.log.Info("no add control found, filling the trailing row directly")
	}

	rows := o.locator.Rows()
	count, err := rows.Count()
	if err != nil || count == 0 {
		return abort(FailureNoTargetRow, "no data row available to fill after add")
	}

	target := rows.Nth(count - 1)
	if err := target.Click(o.opts.ElementTimeout); err != nil {
		o.log.Warn("failed to select target row", zap.Error(err))
	}
	o.sleep(rowSelectSettle)

	result := o.fillFields(target, rec)
	result.Success = result.Attempted > 0 && result.SuccessRate >= createThreshold

	o.log.Info("create finished",
		zap.Bool("success", result.Success),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("attempted", result.Attempted))
	return result
}

// Edit updates the referenced row with the record's fields. Edits are judged
// more leniently than creates: one committed field is enough, reflecting
// that edits often intentionally touch a subset of fields.
func (o *Orchestrator) Edit(ref RowRef, rec record.Record) OperationResult {
	o.log.Info("editing record", zap.Stringer("row", ref), zap.String("record", rec.String()))

	row, found := o.locator.Locate(ref)
	if !found {
		return abort(FailureRowNotFound, fmt.Sprintf("no row matched %s", ref))
	}

	if err := row.Click(o.opts.ElementTimeout); err != nil {
		o.log.Warn("failed to select row", zap.Error(err))
	}
	o.sleep(rowSelectSettle)

	result := o.fillFields(row, rec)
	result.Success = result.Succeeded > 0 || result.SuccessRate >= createThreshold

	o.log.Info("edit finished",
		zap.Bool("success", result.Success),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("attempted", result.Attempted))
	return result
}

// fillFields runs the cell editor over the record's fields in canonical
// order. Skipped (unmapped) fields are excluded from both the numerator and
// denominator of the success rate.
func (o *Orchestrator) fillFields(row Locator, rec record.Record) OperationResult {
	var result OperationResult

	for _, field := range rec.Fields() {
		status := o.editor.Set(row, field.Name, field.Value)
		result.Fields = append(result.Fields, FieldOutcome{
			Field:  field.Name,
			Value:  field.Value,
			Status: status,
		})

		switch status {
		case FieldOK:
			result.Attempted++
			result.Succeeded++
		case FieldFailed:
			result.Attempted++
		case FieldSkipped:
			// never attempted, not counted
		}
	}

	result.SuccessRate = rate(result.Succeeded, result.Attempted)
	return result
}

// Delete removes the referenced row through the grid's delete affordance,
// accepting a confirmation prompt if one appears.
func (o *Orchestrator) Delete(ref RowRef) OperationResult {
	o.log.Info("deleting record", zap.Stringer("row", ref))

	row, found := o.locator.Locate(ref)
	if !found {
		return abort(FailureRowNotFound, fmt.Sprintf("no row matched %s", ref))
	}

	if err := row.Click(o.opts.ElementTimeout); err != nil {
		o.log.Warn("failed to select row", zap.Error(err))
	}
	o.sleep(rowSelectSettle)

	control, selector, found := firstMatch(o.locator.container(), probes(o.opts.Selectors.DeleteControls))
	if !found {
		return abort(FailureDeleteControlNotFound, "no delete control matched any candidate selector")
	}

	o.log.Info("clicking delete control", zap.String("selector", selector))
	if err := control.Click(o.opts.ElementTimeout); err != nil {
		return abort(FailureInternal, fmt.Sprintf("delete control click failed: %v", err))
	}
	o.sleep(confirmWait)

	confirm := o.page.Locator(o.opts.Selectors.ConfirmButton)
	if count, err := confirm.Count(); err == nil && count > 0 {
		if err := confirm.First().Click(o.opts.ElementTimeout); err != nil {
			o.log.Warn("confirmation click failed", zap.Error(err))
		} else {
			o.log.Info("confirmed deletion")
		}
	}

	return OperationResult{Success: true}
}

// BatchCreate runs Create for each record strictly in order, pausing between
// items so the portal settles. Item failures never abort the batch; the
// batch succeeds when at least one item succeeded.
func (o *Orchestrator) BatchCreate(records []record.Record) BatchResult {
	o.log.Info("starting batch create", zap.Int("total", len(records)))

	batch := BatchResult{Total: len(records)}
	for i, rec := range records {
		o.log.Info("processing batch item",
			zap.Int("index", i+1),
			zap.Int("total", len(records)))

		result := o.Create(rec)
		batch.Items = append(batch.Items, BatchItem{Index: i + 1, Result: result})
		if result.Success {
			batch.SuccessCount++
		} else {
			batch.FailedCount++
		}

		if i < len(records)-1 {
			o.sleep(o.opts.BatchDelay)
		}
	}

	batch.SuccessRate = rate(batch.SuccessCount, batch.Total)
	batch.Success = batch.SuccessCount > 0

	o.log.Info("batch create finished",
		zap.Int("succeeded", batch.SuccessCount),
		zap.Int("failed", batch.FailedCount))
	return batch
}

// View reads a bounded preview of the rendered grid without mutating
// anything. It never fails hard: internal faults come back as a structured
// failure with a diagnostic.
func (o *Orchestrator) View() GridView {
	if !o.locator.WaitReady() {
		return GridView{Diagnostic: "grid container did not become visible"}
	}

	view := GridView{Success: true}

	rowCount, err := o.locator.Rows().Count()
	if err != nil {
		return GridView{Diagnostic: fmt.Sprintf("failed to count rows: %v", err)}
	}
	view.RowCount = rowCount

	view.Headers = o.readHeaders()

	limit := rowCount
	if limit > previewRows {
		limit = previewRows
	}
	for i := 0; i < limit; i++ {
		view.Rows = append(view.Rows, o.readRow(i))
	}

	o.log.Info("grid preview read",
		zap.Int("rows", view.RowCount),
		zap.Int("previewed", len(view.Rows)))
	return view
}

// readHeaders returns up to previewCols header texts, with positional
// placeholders where a cell cannot be read.
func (o *Orchestrator) readHeaders() []string {
	header := o.locator.container().Locator(o.opts.Selectors.HeaderRow)
	count, err := header.Count()
	if err != nil || count == 0 {
		return nil
	}

	cells := header.First().Locator("td")
	cellCount, err := cells.Count()
	if err != nil {
		return nil
	}
	if cellCount > previewCols {
		cellCount = previewCols
	}

	headers := make([]string, 0, cellCount)
	for i := 0; i < cellCount; i++ {
		text, err := cells.Nth(i).TextContent()
		if err != nil || strings.TrimSpace(text) == "" {
			headers = append(headers, fmt.Sprintf("column %d", i+1))
			continue
		}
		headers = append(headers, strings.TrimSpace(text))
	}
	return headers
}

// readRow returns up to previewCols cell texts of the ith data row.
func (o *Orchestrator) readRow(index int) []string {
	cells := o.locator.Rows().Nth(index).Locator("td")
	cellCount, err := cells.Count()
	if err != nil {
		o.log.Warn("failed to read preview row", zap.Int("row", index+1), zap.Error(err))
		return nil
	}
	if cellCount > previewCols {
		cellCount = previewCols
	}

	values := make([]string, 0, cellCount)
	for i := 0; i < cellCount; i++ {
		text, err := cells.Nth(i).TextContent()
		if err != nil {
			values = append(values, "")
			continue
		}
		values = append(values, strings.TrimSpace(text))
	}
	return values
}

// ClickSearch presses the portal's search button and waits for the refresh
// to settle. Best-effort; false when the button is missing or unresponsive.
func (o *Orchestrator) ClickSearch() bool {
	return o.clickPortalButton("search", o.opts.Selectors.SearchButton)
}

// ClickSaveAll presses the portal's save-all button and waits for the save
// to settle.
func (o *Orchestrator) ClickSaveAll() bool {
	return o.clickPortalButton("save-all", o.opts.Selectors.SaveAllButton)
}

func (o *Orchestrator) clickPortalButton(name, selector string) bool {
	button := o.page.Locator(selector)
	if err := button.WaitVisible(o.opts.ElementTimeout); err != nil {
		o.log.Error("portal button not visible", zap.String("button", name), zap.Error(err))
		return false
	}
	if err := button.Click(o.opts.ElementTimeout); err != nil {
		o.log.Error("portal button click failed", zap.String("button", name), zap.Error(err))
		return false
	}
	o.sleep(buttonSettle)
	o.log.Info("portal button clicked", zap.String("button", name))
	return true
}

// Snapshot summarizes what the active selector set currently resolves to.
// Used to diagnose selector drift after portal upgrades.
type Snapshot struct {
	URL           string         `json:"url"`
	GridCount     int            `json:"grid_count"`
	RowCount      int            `json:"row_count"`
	SearchButtons int            `json:"search_buttons"`
	SaveButtons   int            `json:"save_buttons"`
	Selectors     Selectors      `json:"selectors"`
	Columns       map[string]int `json:"columns"`
}

// DebugSnapshot collects element counts for the configured selectors.
func (o *Orchestrator) DebugSnapshot() Snapshot {
	snap := Snapshot{
		URL:       o.page.URL(),
		Selectors: o.opts.Selectors,
		Columns:   o.opts.Columns,
	}
	snap.GridCount, _ = o.locator.container().Count()
	snap.RowCount, _ = o.locator.Rows().Count()
	snap.SearchButtons, _ = o.page.Locator(o.opts.Selectors.SearchButton).Count()
	snap.SaveButtons, _ = o.page.Locator(o.opts.Selectors.SaveAllButton).Count()
	return snap
}
