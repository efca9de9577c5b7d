package grid

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/austinchang/gridsync/pkg/record"
)

func testRecord() record.Record {
	return record.Record{
		PartNumber:         "C08GL0DIG017A",
		Station:            "B/I",
		Version:            "V3.3.5.9_1.16.0.1E3.12-1",
		Description:        "EN0DIGOA1-0322-GL_HL-325L B/I",
		ManufacturingGroup: "DEFAULT",
	}
}

// breakEditor makes the editor at the 1-based mapped column never appear.
func breakEditor(row *fakeElement, position int) {
	sel := fmt.Sprintf("td:nth-child(%d)", position+1)
	row.children[sel].children["input.editor"].visibleErr = errors.New("editor did not open")
}

// failValues makes every editor in the row reject the given fill values.
func failValues(row *fakeElement, values ...string) {
	for pos := 1; pos <= 5; pos++ {
		sel := fmt.Sprintf("td:nth-child(%d)", pos+1)
		editor := row.children[sel].children["input.editor"]
		if editor.fillErrFor == nil {
			editor.fillErrFor = map[string]error{}
		}
		for _, v := range values {
			editor.fillErrFor[v] = errors.New("rejected")
		}
	}
}

func addControl(container *fakeElement) *fakeElement {
	button := &fakeElement{count: 1}
	container.children["#add-primary"] = button
	return button
}

func TestCreateFillsFiveFieldsInOrder(t *testing.T) {
	var log []string
	row := newRow("target", &log)
	page, container := newGridPage(row)
	button := addControl(container)

	o, _ := newTestOrchestrator(page, testOptions())
	result := o.Create(testRecord())

	assert.True(t, result.Success)
	assert.Equal(t, FailureNone, result.Failure)
	assert.Equal(t, 5, result.Attempted)
	assert.Equal(t, 5, result.Succeeded)
	assert.Equal(t, 1.0, result.SuccessRate)
	assert.Equal(t, 1, button.clicks)

	// Canonical order, one fill per field.
	rec := testRecord()
	assert.Equal(t, []string{
		rec.PartNumber, rec.Station, rec.Version, rec.Description, rec.ManufacturingGroup,
	}, log)
}

func TestCreateTargetsLastRow(t *testing.T) {
	var log []string
	existing := newRow("existing", &log)
	blank := newRow("blank", &log)
	page, container := newGridPage(existing, blank)
	addControl(container)

	o, _ := newTestOrchestrator(page, testOptions())
	result := o.Create(testRecord())

	require.True(t, result.Success)
	assert.Equal(t, 1, blank.clicks, "the freshly added trailing row is the fill target")
	for pos := 2; pos <= 6; pos++ {
		sel := fmt.Sprintf("td:nth-child(%d)", pos)
		assert.Zero(t, existing.children[sel].dblclicks)
	}
}

func TestCreateWithoutAddControl(t *testing.T) {
	// Some grid versions auto-provision a blank row; the add control is
	// best-effort.
	var log []string
	page, _ := newGridPage(newRow("blank", &log))

	o, _ := newTestOrchestrator(page, testOptions())
	result := o.Create(testRecord())

	assert.True(t, result.Success)
	assert.Len(t, log, 5)
}

func TestCreateSkipsUnmappedFieldWithoutPenalty(t *testing.T) {
	var log []string
	page, container := newGridPage(newRow("target", &log))
	addControl(container)

	opts := testOptions()
	delete(opts.Columns, "manufacturing_group")

	o, _ := newTestOrchestrator(page, opts)
	result := o.Create(testRecord())

	assert.True(t, result.Success, "a skipped field must not drag the rate down")
	assert.Equal(t, 4, result.Attempted)
	assert.Equal(t, 4, result.Succeeded)
	assert.Equal(t, 1.0, result.SuccessRate)
	assert.Len(t, log, 4)

	require.Len(t, result.Fields, 5)
	assert.Equal(t, FieldSkipped, result.Fields[4].Status)
	assert.Equal(t, "manufacturing_group", result.Fields[4].Field)
}

func TestCreateThresholdBoundary(t *testing.T) {
	t.Run("4 of 5 meets the threshold", func(t *testing.T) {
		var log []string
		row := newRow("target", &log)
		breakEditor(row, 5)
		page, container := newGridPage(row)
		addControl(container)

		o, _ := newTestOrchestrator(page, testOptions())
		result := o.Create(testRecord())

		assert.True(t, result.Success)
		assert.InDelta(t, 0.8, result.SuccessRate, 1e-9)
	})

	t.Run("3 of 5 misses the threshold", func(t *testing.T) {
		var log []string
		row := newRow("target", &log)
		breakEditor(row, 4)
		breakEditor(row, 5)
		page, container := newGridPage(row)
		addControl(container)

		o, _ := newTestOrchestrator(page, testOptions())
		result := o.Create(testRecord())

		assert.False(t, result.Success)
		assert.Equal(t, FailureNone, result.Failure, "a rate miss is not an abort")
		assert.Equal(t, 5, result.Attempted)
		assert.Equal(t, 3, result.Succeeded)
	})
}

func TestCreateGridNotReady(t *testing.T) {
	page := newFakePage()

	o, _ := newTestOrchestrator(page, testOptions())
	result := o.Create(testRecord())

	assert.False(t, result.Success)
	assert.Equal(t, FailureGridNotReady, result.Failure)
	assert.Zero(t, result.Attempted)
}

func TestCreateNoTargetRow(t *testing.T) {
	page, container := newGridPage() // visible grid, zero data rows
	addControl(container)

	o, _ := newTestOrchestrator(page, testOptions())
	result := o.Create(testRecord())

	assert.False(t, result.Success)
	assert.Equal(t, FailureNoTargetRow, result.Failure)
}

func TestEditAcceptsSingleCommittedField(t *testing.T) {
	var log []string
	row := newRow("target", &log)
	for pos := 2; pos <= 5; pos++ {
		breakEditor(row, pos)
	}
	page, _ := newGridPage(row)

	o, _ := newTestOrchestrator(page, testOptions())
	result := o.Edit(ByOrdinal(1), testRecord())

	assert.True(t, result.Success, "one committed field is enough for an edit")
	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 5, result.Attempted)
	assert.InDelta(t, 0.2, result.SuccessRate, 1e-9)
}

func TestEditStricterForCreate(t *testing.T) {
	// The same 1-of-5 outcome that passes an edit fails a create.
	var log []string
	row := newRow("target", &log)
	for pos := 2; pos <= 5; pos++ {
		breakEditor(row, pos)
	}
	page, container := newGridPage(row)
	addControl(container)

	o, _ := newTestOrchestrator(page, testOptions())
	result := o.Create(testRecord())

	assert.False(t, result.Success)
	assert.Equal(t, 1, result.Succeeded)
}

func TestEditRowNotFound(t *testing.T) {
	var log []string
	page, _ := newGridPage(newRow("only", &log))

	o, _ := newTestOrchestrator(page, testOptions())
	result := o.Edit(ByOrdinal(7), testRecord())

	assert.False(t, result.Success)
	assert.Equal(t, FailureRowNotFound, result.Failure)
	assert.Zero(t, result.Attempted)
}

func TestEditByTextMatch(t *testing.T) {
	var log []string
	other := newRow("part D99", &log)
	target := newRow("part C08GL", &log)
	page, _ := newGridPage(other, target)

	o, _ := newTestOrchestrator(page, testOptions())
	result := o.Edit(ByText("C08GL"), testRecord())

	assert.True(t, result.Success)
	assert.Equal(t, 1, target.clicks)
	assert.Zero(t, other.clicks)
}

func TestDeleteConfirmsPrompt(t *testing.T) {
	var log []string
	row := newRow("victim", &log)
	page, container := newGridPage(row)
	del := &fakeElement{count: 1}
	container.children["#del-primary"] = del
	confirm := &fakeElement{count: 1}
	page.roots["#confirm"] = confirm

	o, _ := newTestOrchestrator(page, testOptions())
	result := o.Delete(ByOrdinal(1))

	assert.True(t, result.Success)
	assert.Equal(t, 1, row.clicks)
	assert.Equal(t, 1, del.clicks)
	assert.Equal(t, 1, confirm.clicks)
}

func TestDeleteWithoutConfirmationPrompt(t *testing.T) {
	var log []string
	page, container := newGridPage(newRow("victim", &log))
	container.children["#del-alt"] = &fakeElement{count: 1}

	o, _ := newTestOrchestrator(page, testOptions())
	result := o.Delete(ByOrdinal(1))

	assert.True(t, result.Success, "some deletes apply without a prompt")
}

func TestDeleteControlNotFound(t *testing.T) {
	var log []string
	page, _ := newGridPage(newRow("victim", &log))

	o, _ := newTestOrchestrator(page, testOptions())
	result := o.Delete(ByOrdinal(1))

	assert.False(t, result.Success)
	assert.Equal(t, FailureDeleteControlNotFound, result.Failure)
}

func TestBatchCreateRunsToCompletion(t *testing.T) {
	var log []string
	row := newRow("target", &log)
	page, container := newGridPage(row)
	addControl(container)

	recA := testRecord()
	recB := record.Record{
		PartNumber:         "BADPART01",
		Station:            "XX",
		Version:            "VBAD.0.0.1",
		Description:        "rejected description",
		ManufacturingGroup: "BADGRP",
	}
	recC := testRecord()
	recC.PartNumber = "C08GL0DIG018B"

	// Every field of the middle record is rejected at the editor.
	failValues(row, recB.PartNumber, recB.Station, recB.Version, recB.Description, recB.ManufacturingGroup)

	opts := testOptions()
	o, sleeps := newTestOrchestrator(page, opts)
	batch := o.BatchCreate([]record.Record{recA, recB, recC})

	assert.True(t, batch.Success, "one success is enough for the batch")
	assert.Equal(t, 3, batch.Total)
	assert.Equal(t, 2, batch.SuccessCount)
	assert.Equal(t, 1, batch.FailedCount)
	assert.InDelta(t, 2.0/3.0, batch.SuccessRate, 1e-9)

	require.Len(t, batch.Items, 3)
	assert.Equal(t, 1, batch.Items[0].Index)
	assert.True(t, batch.Items[0].Result.Success)
	assert.False(t, batch.Items[1].Result.Success)
	assert.True(t, batch.Items[2].Result.Success)

	// Strict input order: A's fills, then C's (B's were all rejected).
	assert.Equal(t, []string{
		recA.PartNumber, recA.Station, recA.Version, recA.Description, recA.ManufacturingGroup,
		recC.PartNumber, recC.Station, recC.Version, recC.Description, recC.ManufacturingGroup,
	}, log)

	// Two inter-item pauses for three items.
	var delays int
	for _, d := range *sleeps {
		if d == opts.BatchDelay {
			delays++
		}
	}
	assert.Equal(t, 2, delays)
}

func TestBatchCreateAllFailed(t *testing.T) {
	page := newFakePage() // grid never becomes ready

	o, _ := newTestOrchestrator(page, testOptions())
	batch := o.BatchCreate([]record.Record{testRecord(), testRecord()})

	assert.False(t, batch.Success)
	assert.Equal(t, 2, batch.FailedCount)
	assert.Zero(t, batch.SuccessCount)
	assert.Zero(t, batch.SuccessRate)
}

func TestBatchCreateEmpty(t *testing.T) {
	var log []string
	page, _ := newGridPage(newRow("r", &log))

	o, _ := newTestOrchestrator(page, testOptions())
	batch := o.BatchCreate(nil)

	assert.False(t, batch.Success)
	assert.Zero(t, batch.Total)
	assert.Zero(t, batch.SuccessRate, "an empty batch has rate 0, not NaN")
}

func withHeader(container *fakeElement, titles ...string) {
	cells := make([]*fakeElement, len(titles))
	for i, title := range titles {
		cells[i] = &fakeElement{count: 1, text: title}
	}
	header := &fakeElement{
		count:    1,
		children: map[string]*fakeElement{"td": {count: len(cells), items: cells}},
	}
	container.children["tr.header"] = &fakeElement{count: 1, items: []*fakeElement{header}}
}

func TestViewBoundsPreview(t *testing.T) {
	var log []string
	rows := make([]*fakeElement, 12)
	for i := range rows {
		rows[i] = newRow(fmt.Sprintf("row %d", i+1), &log)
	}
	page, container := newGridPage(rows...)
	withHeader(container, "c1", "c2", "c3", "c4", "c5", "c6", "c7", "c8")

	o, _ := newTestOrchestrator(page, testOptions())
	view := o.View()

	assert.True(t, view.Success)
	assert.Equal(t, 12, view.RowCount)
	assert.Len(t, view.Rows, 10, "preview is capped at ten rows")
	assert.Equal(t, []string{"c1", "c2", "c3", "c4", "c5", "c6"}, view.Headers,
		"preview is capped at six columns")
}

func TestViewEmptyGrid(t *testing.T) {
	page, container := newGridPage()
	withHeader(container, "c1", "", "c3")

	o, _ := newTestOrchestrator(page, testOptions())
	view := o.View()

	assert.True(t, view.Success, "an empty grid is a valid view")
	assert.Zero(t, view.RowCount)
	assert.Empty(t, view.Rows)
	assert.Equal(t, []string{"c1", "column 2", "c3"}, view.Headers,
		"unreadable header cells fall back to positional names")
}

func TestViewGridNotReady(t *testing.T) {
	page := newFakePage()

	o, _ := newTestOrchestrator(page, testOptions())
	view := o.View()

	assert.False(t, view.Success)
	assert.NotEmpty(t, view.Diagnostic)
}

func TestClickPortalButtons(t *testing.T) {
	page := newFakePage()
	search := &fakeElement{count: 1}
	page.roots["#search"] = search

	o, _ := newTestOrchestrator(page, testOptions())

	assert.True(t, o.ClickSearch())
	assert.Equal(t, 1, search.clicks)
	assert.False(t, o.ClickSaveAll(), "missing button reports false, never panics")
}

func TestDebugSnapshot(t *testing.T) {
	var log []string
	page, _ := newGridPage(newRow("r1", &log), newRow("r2", &log))
	page.roots["#search"] = &fakeElement{count: 1}

	o, _ := newTestOrchestrator(page, testOptions())
	snap := o.DebugSnapshot()

	assert.Equal(t, "https://portal.example/entry", snap.URL)
	assert.Equal(t, 1, snap.GridCount)
	assert.Equal(t, 2, snap.RowCount)
	assert.Equal(t, 1, snap.SearchButtons)
	assert.Zero(t, snap.SaveButtons)
}

func TestOperationsNeverSleepForReal(t *testing.T) {
	var log []string
	page, container := newGridPage(newRow("target", &log))
	addControl(container)

	o, sleeps := newTestOrchestrator(page, testOptions())

	start := time.Now()
	o.Create(testRecord())
	assert.Less(t, time.Since(start), time.Second)
	assert.NotEmpty(t, *sleeps, "settle pauses go through the injected sleeper")
}
