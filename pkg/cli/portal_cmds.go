package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/austinchang/gridsync/pkg/grid"
)

func newAddCmd(a *app) *cobra.Command {
	flags := &recordFlags{}
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add one record to the portal grid",
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := flags.build(a.cfg.Data.Default)
			if err != nil {
				return err
			}
			return a.withPortal(func(orch *grid.Orchestrator, snap func(string)) error {
				result := orch.Create(rec)
				printOperation("add", result)
				if !result.Success {
					snap("add_failed")
					return errors.New("add did not succeed")
				}
				return nil
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func newEditCmd(a *app) *cobra.Command {
	flags := &recordFlags{}
	var row int
	var match string
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit a grid row identified by position or text match",
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := rowRef(row, match)
			if err != nil {
				return err
			}
			rec, err := flags.build(a.cfg.Data.Default)
			if err != nil {
				return err
			}
			return a.withPortal(func(orch *grid.Orchestrator, snap func(string)) error {
				result := orch.Edit(ref, rec)
				printOperation("edit", result)
				if !result.Success {
					snap("edit_failed")
					return errors.New("edit did not succeed")
				}
				return nil
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVar(&row, "row", 0, "1-based row position")
	cmd.Flags().StringVar(&match, "match", "", "substring to find the row by text")
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	var row int
	var match string
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a grid row identified by position or text match",
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := rowRef(row, match)
			if err != nil {
				return err
			}
			if !yes {
				return errors.New("deletion is destructive; re-run with --yes to confirm")
			}
			return a.withPortal(func(orch *grid.Orchestrator, snap func(string)) error {
				result := orch.Delete(ref)
				printOperation("delete", result)
				if !result.Success {
					snap("delete_failed")
					return errors.New("delete did not succeed")
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&row, "row", 0, "1-based row position")
	cmd.Flags().StringVar(&match, "match", "", "substring to find the row by text")
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the deletion")
	return cmd
}

func newViewCmd(a *app) *cobra.Command {
	var debug bool
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Preview the grid's current contents",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withPortal(func(orch *grid.Orchestrator, snap func(string)) error {
				view := orch.View()
				if !view.Success {
					snap("view_failed")
					return fmt.Errorf("could not read the grid: %s", view.Diagnostic)
				}
				printView(view)
				if debug {
					printSnapshot(orch.DebugSnapshot())
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&debug, "debug", false, "also print selector resolution counts")
	return cmd
}

func newBatchCmd(a *app) *cobra.Command {
	var save bool
	cmd := &cobra.Command{
		Use:   "batch <file>",
		Short: "Add every record from a JSON or YAML file to the grid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, rejected, err := loadBatchFile(args[0])
			if err != nil {
				return err
			}
			for _, rej := range rejected {
				fmt.Printf("skipping invalid entry: %v\n", rej)
			}
			if len(records) == 0 {
				return errors.New("the file contains no valid records")
			}

			return a.withPortal(func(orch *grid.Orchestrator, snap func(string)) error {
				batch := orch.BatchCreate(records)
				printBatch(batch)
				if save && batch.SuccessCount > 0 {
					if !orch.ClickSaveAll() {
						fmt.Println("warning: save-all button was not responsive")
					}
				}
				if !batch.Success {
					snap("batch_failed")
					return errors.New("no batch item succeeded")
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&save, "save", false, "press the portal's save-all button after the batch")
	return cmd
}

// rowRef converts the --row/--match flag pair into a row reference.
func rowRef(row int, match string) (grid.RowRef, error) {
	switch {
	case row > 0 && match != "":
		return grid.RowRef{}, errors.New("--row and --match are mutually exclusive")
	case row > 0:
		return grid.ByOrdinal(row), nil
	case strings.TrimSpace(match) != "":
		return grid.ByText(match), nil
	default:
		return grid.RowRef{}, errors.New("identify the row with --row or --match")
	}
}
