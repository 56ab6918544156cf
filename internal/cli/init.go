package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/backstage/internal/paths"
	"github.com/mesh-intelligence/backstage/pkg/types"
)

func newInitCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize backstage configuration and storage",
		Long: "Create the configuration directory with a default config.yaml, then\n" +
			"attach the configured backend once so its schema exists.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, err := paths.ResolveConfigDir(flags.configDir)
			if err != nil {
				return sysError("resolve config dir: %v", err)
			}
			s, err := openSession(cmd, flags, nil)
			if err != nil {
				return err
			}
			s.close()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "backstage initialized\nconfig: %s\nbackend: %s\n",
				paths.ConfigFile(configDir), s.settings.Console.Backend)
			if s.settings.Console.Backend == types.BackendSQLite {
				fmt.Fprintf(out, "data: %s\n", s.settings.Console.DataDir)
				if shared, err := paths.DefaultDataDir(); err == nil && shared != s.settings.Console.DataDir {
					fmt.Fprintf(out, "hint: set data_dir to %s to share one database across checkouts\n", shared)
				}
			}
			return nil
		},
	}
}
