package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/austinchang/gridsync/pkg/record"
)

func newRecordsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "Manage the local record dataset",
	}
	cmd.AddCommand(
		newRecordsListCmd(a),
		newRecordsAddCmd(a),
		newRecordsDeleteCmd(a),
		newRecordsSearchCmd(a),
		newRecordsImportCmd(a),
		newRecordsExportCmd(a),
		newRecordsValidateCmd(a),
	)
	return cmd
}

// openStore opens the dataset database from the configured location.
func (a *app) openStore() (*record.Store, error) {
	return record.NewStore(a.store.StorePath())
}

func newRecordsListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the staged records",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.List()
			if err != nil {
				return err
			}
			printStored(records)
			return nil
		},
	}
}

func newRecordsAddCmd(a *app) *cobra.Command {
	flags := &recordFlags{}
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Stage one record in the local dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := flags.build(a.cfg.Data.Default)
			if err != nil {
				return err
			}

			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			existing, err := store.List()
			if err != nil {
				return err
			}
			var dataset []record.Record
			for _, s := range existing {
				dataset = append(dataset, s.Record)
			}
			if dups := record.Duplicates(rec, dataset); len(dups) > 0 {
				fmt.Printf("warning: %d similar record(s) already staged\n", len(dups))
			}

			id, err := store.Add(rec)
			if err != nil {
				return err
			}
			fmt.Printf("staged record %d: %s\n", id, rec)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newRecordsDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a staged record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid record id %q", args[0])
			}

			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Delete(id); err != nil {
				return err
			}
			fmt.Printf("deleted record %d\n", id)
			return nil
		},
	}
}

func newRecordsSearchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "search <term>",
		Short: "Search the staged records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.Search(args[0])
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Println("no records matched")
				return nil
			}
			printStored(records)
			return nil
		},
	}
}

func newRecordsImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import records from a JSON or YAML file into the dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, rejected, err := record.ImportFile(args[0])
			if err != nil {
				return err
			}
			for _, rej := range rejected {
				fmt.Printf("skipping invalid entry: %v\n", rej)
			}
			if len(records) == 0 {
				return errors.New("the file contains no valid records")
			}

			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			for _, rec := range records {
				if _, err := store.Add(rec); err != nil {
					return err
				}
			}
			fmt.Printf("imported %d record(s)\n", len(records))
			return nil
		},
	}
}

func newRecordsExportCmd(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the staged records to a JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			stored, err := store.List()
			if err != nil {
				return err
			}
			var records []record.Record
			for _, s := range stored {
				records = append(records, s.Record)
			}

			path := out
			if path == "" {
				path = a.cfg.Data.ExportPath
			}
			if err := record.ExportFile(records, path, a.cfg.Data.BackupDir); err != nil {
				return err
			}
			fmt.Printf("exported %d record(s) to %s\n", len(records), path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default from config)")
	return cmd
}

func newRecordsValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Assess the quality of every staged record",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			stored, err := store.List()
			if err != nil {
				return err
			}
			if len(stored) == 0 {
				fmt.Println("the dataset is empty")
				return nil
			}

			var totalScore float64
			var errCount, warnCount int
			for i, report := range record.AssessDataset(stored) {
				totalScore += report.Score
				errCount += len(report.Errors)
				warnCount += len(report.Warnings)

				if !report.Valid {
					fmt.Printf("record %d has errors:\n", stored[i].ID)
					for _, e := range report.Errors {
						fmt.Printf("  - %s\n", e)
					}
				}
			}

			fmt.Printf("records: %d  average score: %.1f/100  errors: %d  warnings: %d\n",
				len(stored), totalScore/float64(len(stored)), errCount, warnCount)
			return nil
		},
	}
}

// loadBatchFile loads and validates a batch file for the batch command.
func loadBatchFile(path string) ([]record.Record, []error, error) {
	return record.ImportFile(path)
}
