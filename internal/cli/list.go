package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/backstage/pkg/query"
	"github.com/mesh-intelligence/backstage/pkg/types"
)

func newListCmd(flags *rootFlags) *cobra.Command {
	var (
		page     int
		perPage  int
		where    string
		recycled bool
		keys     bool
	)
	cmd := &cobra.Command{
		Use:   "list <table> [key=value...]",
		Short: "List rows with optional filters",
		Long: `List queries one page of a table. Filters are key=value pairs and are
ANDed together; "All" or an empty value disables a filter. Date ranges use
<key>_from and <key>_to.

Example:
  backstage list users status=Valid nickname=lu
  backstage list payments paid_from=2024-03-01 paid_to=2024-03-31
  backstage list gifts --where 'price >= 100'
  backstage list rooms --recycled
  backstage list rooms --filters`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filters, err := parseFilters(args[1:])
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
			if keys {
				if flags.jsonMode {
					return printJSON(cmd.OutOrStdout(), t.Filters())
				}
				for _, k := range t.Filters() {
					fmt.Fprintln(cmd.OutOrStdout(), k)
				}
				return nil
			}
			q := types.Query{Filters: filters, Where: where, Page: page, PerPage: perPage}
			fetch := t.Fetch
			if recycled {
				fetch = t.FetchRecycled
			}
			result, err := fetch(cmd.Context(), q)
			if err != nil {
				return classify(err)
			}

			if flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), result)
			}
			if err := printRows(cmd.OutOrStdout(), result.Data); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "page %d/%d, %d rows\n",
				result.Page+1, max(query.PageCount(result.Total, result.PerPage), 1), result.Total)
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 0, "zero-based page number")
	cmd.Flags().IntVar(&perPage, "per-page", query.DefaultPerPage, "rows per page")
	cmd.Flags().StringVar(&where, "where", "", "advanced filter expression, e.g. 'price >= 100'")
	cmd.Flags().BoolVar(&recycled, "recycled", false, "list the recycle bin instead")
	cmd.Flags().BoolVar(&keys, "filters", false, "print the table's filter keys and exit")
	return cmd
}
