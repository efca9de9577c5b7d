package grid

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// EditState is the position of one cell-edit attempt in its protocol.
type EditState int

const (
	// EditIdle is the initial state, before the cell is resolved.
	EditIdle EditState = iota

	// EditLocated means the cell exists and the inline editor is being
	// opened.
	EditLocated

	// EditEditing means the inline editor is visible and accepting input.
	EditEditing

	// EditCommitted is the terminal success state.
	EditCommitted

	// EditFailed is the terminal failure state.
	EditFailed
)

// editEvent is an observation fed into the transition function.
type editEvent int

const (
	// eventCellFound: the target cell resolved to an element.
	eventCellFound editEvent = iota

	// eventCellMissing: the row has no cell at the mapped position.
	eventCellMissing

	// eventEditorVisible: the inline editor appeared after activation.
	eventEditorVisible

	// eventEditorTimeout: the editor never appeared within the timeout.
	eventEditorTimeout

	// eventCommitDone: the value was typed and confirmed.
	eventCommitDone

	// eventCommitError: typing or confirming raised a driver error.
	eventCommitError
)

// editAction is the side effect the driver must perform after a transition.
type editAction int

const (
	// actionNone: nothing to perform.
	actionNone editAction = iota

	// actionOpenEditor: double-activate the cell to open its inline editor.
	actionOpenEditor

	// actionCommitValue: clear the editor, type the value, confirm.
	actionCommitValue

	// actionRecoverFocus: click a neutral spot to close stray edit state.
	// Without this, a half-open editor leaks into the next cell attempt.
	actionRecoverFocus
)

// editTransition is the pure transition function of the cell-edit protocol.
// It maps (state, event) to (next state, side effect) and performs no I/O,
// so the recovery behavior is testable without a browser.
func editTransition(state EditState, event editEvent) (EditState, editAction) {
	switch state {
	case EditIdle:
		switch event {
		case eventCellFound:
			return EditLocated, actionOpenEditor
		case eventCellMissing:
			return EditFailed, actionNone
		}
	case EditLocated:
		switch event {
		case eventEditorVisible:
			return EditEditing, actionCommitValue
		case eventEditorTimeout:
			return EditFailed, actionRecoverFocus
		}
	case EditEditing:
		switch event {
		case eventCommitDone:
			return EditCommitted, actionNone
		case eventCommitError:
			return EditFailed, actionNone
		}
	}
	// Terminal states absorb everything else.
	return state, actionNone
}

// Settle delays for the portal to process UI events.
const (
	cellActivateSettle = 500 * time.Millisecond
	commitSettle       = time.Second
)

// CellEditor drives single-cell edits through the grid's
// double-click-to-edit protocol. Driver errors never escape; every path
// resolves to a FieldStatus.
type CellEditor struct {
	page          Page
	columns       map[string]int
	editor        string
	editorTimeout time.Duration
	timeout       time.Duration
	sleep         func(time.Duration)
	log           *zap.Logger
}

// NewCellEditor builds an editor using the column mapping and editor
// selector from opts.
func NewCellEditor(page Page, opts Options, log *zap.Logger) *CellEditor {
	return &CellEditor{
		page:          page,
		columns:       opts.Columns,
		editor:        opts.Selectors.CellEditor,
		editorTimeout: opts.EditorTimeout,
		timeout:       opts.ElementTimeout,
		sleep:         time.Sleep,
		log:           log,
	}
}

// Set edits one cell of the given row to value. Fields with no column
// mapping are rejected before the protocol starts and reported as skipped.
func (e *CellEditor) Set(row Locator, field, value string) FieldStatus {
	position, mapped := e.columns[field]
	if !mapped {
		e.log.Warn("field has no column mapping, skipping", zap.String("field", field))
		return FieldSkipped
	}

	// The mapped position is the 1-based visual column; the row's child
	// cells carry one leading non-data cell, hence position+1. Keep this
	// offset in sync with the locator tests.
	cell := row.Locator(fmt.Sprintf("td:nth-child(%d)", position+1))

	state := EditIdle

	count, err := cell.Count()
	if err != nil || count == 0 {
		state, _ = editTransition(state, eventCellMissing)
		e.log.Error("cell not found",
			zap.String("field", field),
			zap.Int("column", position),
			zap.Error(err))
		return FieldFailed
	}
	state, _ = editTransition(state, eventCellFound)

	// actionOpenEditor
	if err := cell.DblClick(e.timeout); err != nil {
		e.log.Error("failed to activate cell", zap.String("field", field), zap.Error(err))
		return FieldFailed
	}
	e.sleep(cellActivateSettle)

	editor := cell.Locator(e.editor)
	if err := editor.WaitVisible(e.editorTimeout); err != nil {
		var action editAction
		state, action = editTransition(state, eventEditorTimeout)
		if action == actionRecoverFocus {
			e.recoverFocus()
		}
		e.log.Error("inline editor did not appear",
			zap.String("field", field),
			zap.Duration("timeout", e.editorTimeout))
		return FieldFailed
	}
	state, _ = editTransition(state, eventEditorVisible)

	// actionCommitValue
	if err := editor.Fill(value, e.timeout); err != nil {
		state, _ = editTransition(state, eventCommitError)
		e.log.Error("failed to type cell value", zap.String("field", field), zap.Error(err))
		return FieldFailed
	}
	if err := editor.Press("Enter", e.timeout); err != nil {
		state, _ = editTransition(state, eventCommitError)
		e.log.Error("failed to confirm cell value", zap.String("field", field), zap.Error(err))
		return FieldFailed
	}
	e.sleep(commitSettle)

	state, _ = editTransition(state, eventCommitDone)
	if state != EditCommitted {
		return FieldFailed
	}

	e.log.Info("cell committed", zap.String("field", field), zap.String("value", value))
	return FieldOK
}

// recoverFocus clicks the page body to force-close any stray editor.
func (e *CellEditor) recoverFocus() {
	if err := e.page.Locator("body").Click(e.timeout); err != nil {
		e.log.Warn("recovery click failed", zap.Error(err))
	}
}
