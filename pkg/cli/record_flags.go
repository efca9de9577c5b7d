package cli

import (
	"github.com/spf13/cobra"

	"github.com/austinchang/gridsync/pkg/record"
)

// recordFlags collects the per-field flags shared by add and edit.
type recordFlags struct {
	partNumber  string
	station     string
	version     string
	description string
	group       string
	useDefault  bool
}

func (f *recordFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.partNumber, "part", "", "part number")
	cmd.Flags().StringVar(&f.station, "station", "", "test station (B/I, FT, PT, SHIP, BI)")
	cmd.Flags().StringVar(&f.version, "ver", "", "software version")
	cmd.Flags().StringVar(&f.description, "desc", "", "description")
	cmd.Flags().StringVar(&f.group, "group", "", "manufacturing group")
	cmd.Flags().BoolVar(&f.useDefault, "use-default", false, "start from the configured default record")
}

// build merges the flags over the base record (the configured default when
// --use-default is set, empty otherwise), then normalizes and validates.
func (f *recordFlags) build(base record.Record) (record.Record, error) {
	rec := record.Record{}
	if f.useDefault {
		rec = base
	}
	if f.partNumber != "" {
		rec.PartNumber = f.partNumber
	}
	if f.station != "" {
		rec.Station = f.station
	}
	if f.version != "" {
		rec.Version = f.version
	}
	if f.description != "" {
		rec.Description = f.description
	}
	if f.group != "" {
		rec.ManufacturingGroup = f.group
	}

	rec.Normalize()
	if err := rec.Validate(); err != nil {
		return record.Record{}, err
	}
	return rec, nil
}
