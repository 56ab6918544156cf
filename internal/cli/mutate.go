package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/backstage/pkg/types"
)

func newCreateCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "create <table> <json>",
		Short: "Create a row from a JSON object",
		Long: `Create decodes the JSON object into a new row. The id, number and
timestamps are assigned by backstage; values supplied for them are ignored.

Example:
  backstage create gifts '{"name":"Rose","price":1,"sort":3}'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := parseObject(args[1])
			if err != nil {
				return err
			}
			s, err := openSession(cmd, flags, nil)
			if err != nil {
				return err
			}
			defer s.close()

			t, err := s.table(args[0])
			if err != nil {
				return err
			}
			row, err := t.Create(cmd.Context(), payload)
			if err != nil {
				return classify(err)
			}
			if flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), row)
			}
			return printRows(cmd.OutOrStdout(), []any{row})
		},
	}
}

func newUpdateCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "update <table> <id> <json>",
		Short: "Change the given fields of a row",
		Long: `Update merges the JSON object onto the row. Fields not in the object
keep their values.

Example:
  backstage update users 0190b6c2-a101-7000-8000-000000000001 '{"status":"Invalid"}'`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := parseObject(args[2])
			if err != nil {
				return err
			}
			s, err := openSession(cmd, flags, nil)
			if err != nil {
				return err
			}
			defer s.close()

			t, err := s.table(args[0])
			if err != nil {
				return err
			}
			if err := t.Update(cmd.Context(), args[1], patch); err != nil {
				return classify(err)
			}
			row, err := t.Get(cmd.Context(), args[1])
			if err != nil {
				return classify(err)
			}
			if flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), row)
			}
			return printRows(cmd.OutOrStdout(), []any{row})
		},
	}
}

// newIDsCmd builds a command that applies op to a list of row IDs.
// deleteRows removes a single id strictly, so a mistyped id is reported, and
// several ids as one batch that skips unknown ones.
func deleteRows(t types.Table, ctx context.Context, ids []string) error {
	if len(ids) == 1 {
		return t.Delete(ctx, ids[0])
	}
	return t.BatchDelete(ctx, ids)
}

func newIDsCmd(flags *rootFlags, name, short string, op func(types.Table, context.Context, []string) error) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <table> <id>...",
		Short: short,
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, flags, nil)
			if err != nil {
				return err
			}
			defer s.close()

			t, err := s.table(args[0])
			if err != nil {
				return err
			}
			ids := args[1:]
			if err := op(t, cmd.Context(), ids); err != nil {
				return classify(err)
			}
			if flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), map[string]any{"table": args[0], "op": name, "ids": ids})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d id(s) in %s\n", name, len(ids), args[0])
			return nil
		},
	}
}
