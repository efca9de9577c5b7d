// Package config loads and persists the application configuration as a JSON
// file under the user's home directory.
package config

import (
	"time"

	"github.com/austinchang/gridsync/pkg/browser"
	"github.com/austinchang/gridsync/pkg/grid"
	"github.com/austinchang/gridsync/pkg/logging"
	"github.com/austinchang/gridsync/pkg/record"
)

// Config is the full application configuration.
type Config struct {
	Browser browser.Config `json:"browser"`
	Portal  PortalConfig   `json:"portal"`
	Data    DataConfig     `json:"data"`
	Logging logging.Config `json:"logging"`
}

// PortalConfig describes the target portal deployment: where it lives, how
// long to wait for it, and how its grid is wired.
type PortalConfig struct {
	EntryURL         string `json:"entry_url"`
	PostLoginPattern string `json:"post_login_pattern"`

	PageLoadTimeoutMs int `json:"page_load_timeout_ms"`
	ElementTimeoutMs  int `json:"element_timeout_ms"`
	EditorTimeoutMs   int `json:"editor_timeout_ms"`
	LoginTimeoutMs    int `json:"login_timeout_ms"`
	BatchDelayMs      int `json:"batch_delay_ms"`

	Selectors grid.Selectors `json:"selectors"`

	// ColumnMapping maps record field names to 1-based grid columns. Fields
	// missing here are skipped during fills, by design.
	ColumnMapping map[string]int `json:"column_mapping"`
}

// DataConfig locates the local dataset and its export artifacts.
type DataConfig struct {
	StorePath  string        `json:"store_path"`
	ExportPath string        `json:"export_path"`
	BackupDir  string        `json:"backup_dir"`
	Default    record.Record `json:"default_record"`
}

// Default returns the shipped configuration for the production portal.
func Default() *Config {
	opts := grid.DefaultOptions()
	return &Config{
		Browser: browser.DefaultConfig(),
		Portal: PortalConfig{
			EntryURL:          "https://accmisportal.accton.com/ACCTON/MMT/MMT010/MMT010_Index",
			PostLoginPattern:  opts.PostLoginPattern,
			PageLoadTimeoutMs: int(opts.PageLoadTimeout.Milliseconds()),
			ElementTimeoutMs:  int(opts.ElementTimeout.Milliseconds()),
			EditorTimeoutMs:   int(opts.EditorTimeout.Milliseconds()),
			LoginTimeoutMs:    int(opts.LoginTimeout.Milliseconds()),
			BatchDelayMs:      int(opts.BatchDelay.Milliseconds()),
			Selectors:         opts.Selectors,
			ColumnMapping:     opts.Columns,
		},
		Data: DataConfig{
			ExportPath: "export/records.json",
			BackupDir:  "export/backup",
			Default: record.Record{
				PartNumber:         "C08GL0DIG017A",
				Station:            "B/I",
				Version:            "V3.3.5.9_1.16.0.1E3.12-1",
				Description:        "EN0DIGOA1-0322-GL_HL-325L B/I",
				ManufacturingGroup: record.DefaultManufacturingGroup,
			},
		},
		Logging: logging.DefaultConfig(),
	}
}

// GridOptions converts the portal section into grid engine options.
func (p PortalConfig) GridOptions() grid.Options {
	return grid.Options{
		EntryURL:         p.EntryURL,
		PostLoginPattern: p.PostLoginPattern,
		Selectors:        p.Selectors,
		Columns:          p.ColumnMapping,
		PageLoadTimeout:  time.Duration(p.PageLoadTimeoutMs) * time.Millisecond,
		ElementTimeout:   time.Duration(p.ElementTimeoutMs) * time.Millisecond,
		EditorTimeout:    time.Duration(p.EditorTimeoutMs) * time.Millisecond,
		LoginTimeout:     time.Duration(p.LoginTimeoutMs) * time.Millisecond,
		BatchDelay:       time.Duration(p.BatchDelayMs) * time.Millisecond,
	}
}
