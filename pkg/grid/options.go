package grid

import "time"

// Selectors identifies the portal's widgets. Values are CSS selectors; the
// add and delete controls are prioritized candidate lists, first match wins.
type Selectors struct {
	GridContainer  string   `json:"grid_container" yaml:"grid_container"`
	DataRow        string   `json:"data_row" yaml:"data_row"`
	HeaderRow      string   `json:"header_row" yaml:"header_row"`
	AddControls    []string `json:"add_controls" yaml:"add_controls"`
	DeleteControls []string `json:"delete_controls" yaml:"delete_controls"`
	ConfirmButton  string   `json:"confirm_button" yaml:"confirm_button"`
	SearchButton   string   `json:"search_button" yaml:"search_button"`
	SaveAllButton  string   `json:"save_all_button" yaml:"save_all_button"`
	PasswordInput  string   `json:"password_input" yaml:"password_input"`
	CellEditor     string   `json:"cell_editor" yaml:"cell_editor"`
}

// DefaultSelectors returns the selector set for the production portal's
// DevExpress grid.
func DefaultSelectors() Selectors {
	return Selectors{
		GridContainer: `[id$="Setting_GridViewPartial"]`,
		DataRow:       `tr.dxgvDataRow_DEVMVC`,
		HeaderRow:     `tr.dxgvHeader_DEVMVC`,
		AddControls: []string{
			`[id$="_DXCBtnNew"]`,
			`[id*="New"]`,
			`input[value="新增"]`,
			`a[title*="新增"]`,
		},
		DeleteControls: []string{
			`[id$="_DXCBtnDelete"]`,
			`[id*="Delete"]`,
			`input[value="刪除"]`,
			`a[title*="刪除"]`,
		},
		ConfirmButton: `button:has-text("OK"), button:has-text("Yes"), button:has-text("確定"), button:has-text("是")`,
		SearchButton:  `#fr_btn_search_MMT010_Index_FormLayout_search_CD`,
		SaveAllButton: `#cus_btn_masterdetailsave_CD`,
		PasswordInput: `input[type="password"]`,
		CellEditor:    `input[type="text"]:visible`,
	}
}

// Options configures the grid engine for one deployment target.
type Options struct {
	// EntryURL is the portal page carrying the grid.
	EntryURL string

	// PostLoginPattern is the URL glob that signals interactive login has
	// completed.
	PostLoginPattern string

	// Selectors identifies the grid widgets.
	Selectors Selectors

	// Columns maps field names to 1-based visual column positions. Fields
	// absent from the map are skipped, never errored.
	Columns map[string]int

	// PageLoadTimeout bounds navigation and quiescence waits.
	PageLoadTimeout time.Duration

	// ElementTimeout bounds element visibility waits and interactions.
	ElementTimeout time.Duration

	// EditorTimeout bounds the wait for a cell's inline editor to appear.
	EditorTimeout time.Duration

	// LoginTimeout bounds the human-in-the-loop login wait.
	LoginTimeout time.Duration

	// BatchDelay is the settle pause between batch items.
	BatchDelay time.Duration
}

// DefaultOptions returns the production defaults. Callers normally override
// EntryURL and Columns from configuration.
func DefaultOptions() Options {
	return Options{
		PostLoginPattern: "**/MMT010_Index*",
		Selectors:        DefaultSelectors(),
		Columns: map[string]int{
			"part_number":         1,
			"station":             2,
			"version":             3,
			"description":         4,
			"manufacturing_group": 5,
		},
		PageLoadTimeout: 60 * time.Second,
		ElementTimeout:  10 * time.Second,
		EditorTimeout:   5 * time.Second,
		LoginTimeout:    2 * time.Minute,
		BatchDelay:      time.Second,
	}
}
