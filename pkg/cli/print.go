package cli

import (
	"fmt"
	"strings"

	"github.com/austinchang/gridsync/pkg/grid"
	"github.com/austinchang/gridsync/pkg/record"
)

func printOperation(name string, result grid.OperationResult) {
	status := "FAILED"
	if result.Success {
		status = "OK"
	}
	fmt.Printf("%s: %s", name, status)
	if result.Failure != grid.FailureNone {
		fmt.Printf(" (%s)", result.Failure)
	}
	if result.Attempted > 0 {
		fmt.Printf("  fields %d/%d (%.0f%%)", result.Succeeded, result.Attempted, result.SuccessRate*100)
	}
	fmt.Println()

	for _, field := range result.Fields {
		fmt.Printf("  %-20s %-8s %s\n", field.Field, field.Status, field.Value)
	}
	if result.Diagnostic != "" {
		fmt.Printf("  %s\n", result.Diagnostic)
	}
}

func printBatch(batch grid.BatchResult) {
	fmt.Printf("batch: %d/%d succeeded, %d failed (%.0f%%)\n",
		batch.SuccessCount, batch.Total, batch.FailedCount, batch.SuccessRate*100)
	for _, item := range batch.Items {
		status := "failed"
		if item.Result.Success {
			status = "ok"
		}
		fmt.Printf("  item %d: %s\n", item.Index, status)
	}
}

func printView(view grid.GridView) {
	fmt.Printf("grid: %d row(s)\n", view.RowCount)
	if len(view.Headers) > 0 {
		fmt.Println(strings.Join(view.Headers, " | "))
	}
	for _, row := range view.Rows {
		fmt.Println(strings.Join(row, " | "))
	}
	if view.RowCount > len(view.Rows) {
		fmt.Printf("... %d more row(s)\n", view.RowCount-len(view.Rows))
	}
}

func printSnapshot(snap grid.Snapshot) {
	fmt.Printf("url: %s\n", snap.URL)
	fmt.Printf("grid containers: %d  data rows: %d  search buttons: %d  save buttons: %d\n",
		snap.GridCount, snap.RowCount, snap.SearchButtons, snap.SaveButtons)
}

func printStored(records []record.Stored) {
	if len(records) == 0 {
		fmt.Println("the dataset is empty")
		return
	}
	fmt.Printf("%-5s %-16s %-6s %-28s %s\n", "ID", "PART", "STA", "VERSION", "DESCRIPTION")
	for _, s := range records {
		fmt.Printf("%-5d %-16s %-6s %-28s %s\n",
			s.ID, s.PartNumber, s.Station, s.Version, s.Description)
	}
}
