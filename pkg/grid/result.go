package grid

// Failure classifies why an operation aborted. Empty means no abort.
type Failure string

const (
	// FailureNone indicates the operation ran to completion (it may still
	// have missed its success threshold).
	FailureNone Failure = ""

	// FailureGridNotReady means the grid container never became visible.
	FailureGridNotReady Failure = "grid_not_ready"

	// FailureRowNotFound means the row reference resolved to nothing.
	FailureRowNotFound Failure = "row_not_found"

	// FailureNoTargetRow means a create found no row to fill after invoking
	// the add control.
	FailureNoTargetRow Failure = "no_target_row"

	// FailureDeleteControlNotFound means no delete affordance was located.
	FailureDeleteControlNotFound Failure = "delete_control_not_found"

	// FailureInternal covers unexpected faults; the diagnostic carries the
	// detail.
	FailureInternal Failure = "internal"
)

// FieldStatus is the per-field outcome of a cell edit.
type FieldStatus string

const (
	// FieldOK means the edit committed.
	FieldOK FieldStatus = "ok"

	// FieldFailed means the editor never opened or the commit did not
	// register.
	FieldFailed FieldStatus = "failed"

	// FieldSkipped means the field has no column mapping and was never
	// attempted. Skipped fields count in neither the numerator nor the
	// denominator of the success rate.
	FieldSkipped FieldStatus = "skipped"
)

// FieldOutcome records what happened to one field during create or edit.
type FieldOutcome struct {
	Field  string      `json:"field"`
	Value  string      `json:"value"`
	Status FieldStatus `json:"status"`
}

// OperationResult is the outcome of one create, edit, or delete operation.
type OperationResult struct {
	Success     bool           `json:"success"`
	Failure     Failure        `json:"failure,omitempty"`
	Diagnostic  string         `json:"diagnostic,omitempty"`
	Attempted   int            `json:"attempted"`
	Succeeded   int            `json:"succeeded"`
	SuccessRate float64        `json:"success_rate"`
	Fields      []FieldOutcome `json:"fields,omitempty"`
}

// abort builds a result for an operation that could not run.
func abort(failure Failure, diagnostic string) OperationResult {
	return OperationResult{Failure: failure, Diagnostic: diagnostic}
}

// rate computes succeeded/attempted, with 0 attempted defined as rate 0.
func rate(succeeded, attempted int) float64 {
	if attempted == 0 {
		return 0
	}
	return float64(succeeded) / float64(attempted)
}

// BatchItem pairs one batch entry with its create result.
type BatchItem struct {
	Index  int             `json:"index"`
	Result OperationResult `json:"result"`
}

// BatchResult aggregates a sequential batch of creates. Success means at
// least one item succeeded; individual failures never abort the batch.
type BatchResult struct {
	Success      bool        `json:"success"`
	Total        int         `json:"total"`
	SuccessCount int         `json:"success_count"`
	FailedCount  int         `json:"failed_count"`
	SuccessRate  float64     `json:"success_rate"`
	Items        []BatchItem `json:"items"`
}

// GridView is a bounded, read-only preview of the rendered grid.
type GridView struct {
	Success    bool       `json:"success"`
	Diagnostic string     `json:"diagnostic,omitempty"`
	RowCount   int        `json:"row_count"`
	Headers    []string   `json:"headers"`
	Rows       [][]string `json:"data"`
}
