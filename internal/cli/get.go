package cli

import (
	"github.com/spf13/cobra"
)

func newGetCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "get <table> <id>",
		Short: "Show one row",
		Args:  cobra.ExactArgs(2),
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
