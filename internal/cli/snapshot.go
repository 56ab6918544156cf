package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/backstage/internal/snapshot"
)

func newExportCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "export <dir>",
		Short: "Write every table to <dir>/<table>.jsonl",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, flags, nil)
			if err != nil {
				return err
			}
			defer s.close()

			b, err := s.console.Backend()
			if err != nil {
				return classify(err)
			}
			counts, err := snapshot.Export(cmd.Context(), b, args[0], s.console.TableNames())
			if err != nil {
				return sysError("export: %v", err)
			}
			return printCounts(cmd, flags, "exported", counts, s.console.TableNames())
		},
	}
}

func newImportCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "import <dir>",
		Short: "Upsert rows from <dir>/<table>.jsonl files",
		Long: "Import reads one <table>.jsonl per table. Missing files are skipped,\n" +
			"as are malformed lines and rows without an id. Rows replace existing\n" +
			"rows with the same id.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, flags, nil)
			if err != nil {
				return err
			}
			defer s.close()

			b, err := s.console.Backend()
			if err != nil {
				return classify(err)
			}
			counts, err := snapshot.ImportDir(cmd.Context(), b, args[0], s.console.TableNames())
			if err != nil {
				return userError("import: %v", err)
			}
			return printCounts(cmd, flags, "imported", counts, s.console.TableNames())
		},
	}
}

func printCounts(cmd *cobra.Command, flags *rootFlags, verb string, counts map[string]int, order []string) error {
	if flags.jsonMode {
		return printJSON(cmd.OutOrStdout(), counts)
	}
	for _, table := range order {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %d %s\n", verb, counts[table], table)
	}
	return nil
}
