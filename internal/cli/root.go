// Package cli implements the backstage command-line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/backstage/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// exitError carries the exit code a failed command should end with.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func userError(format string, args ...any) error {
	return &exitError{code: exitUserError, err: fmt.Errorf(format, args...)}
}

func sysError(format string, args ...any) error {
	return &exitError{code: exitSysError, err: fmt.Errorf(format, args...)}
}

// userSentinels are the errors caused by bad input rather than by the
// system.
var userSentinels = []error{
	types.ErrNotFound, types.ErrInvalidID, types.ErrInvalidData,
	types.ErrInvalidFilter, types.ErrInvalidStatus, types.ErrTableNotFound,
	types.ErrBackendEmpty, types.ErrBackendUnknown,
	types.ErrPostgresDSNEmpty, types.ErrRedisAddrEmpty,
}

// classify attaches an exit code to err: user errors for bad input,
// system errors for everything else.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return err
	}
	for _, target := range userSentinels {
		if errors.Is(err, target) {
			return &exitError{code: exitUserError, err: err}
		}
	}
	return &exitError{code: exitSysError, err: err}
}

// exitCode returns the exit code for err. Errors without one, such as
// cobra's usage errors, are user errors.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitUserError
}

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	backend   string
	logLevel  string
	jsonMode  bool
}

// NewRootCmd creates the top-level "backstage" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:   "backstage",
		Short: "Admin console backend for a live-streaming platform",
		Long: "Backstage serves and edits the admin tables of a live-streaming platform:\n" +
			"users, rooms, gifts, payments, agents, reports, settings and banks.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	pf.StringVar(&flags.dataDir, "data-dir", "", "data directory (default: .backstage-db)")
	pf.StringVar(&flags.backend, "backend", "", "storage backend: memory, sqlite, postgres, redis")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.BoolVar(&flags.jsonMode, "json", false, "output in JSON format")

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(flags),
		newServeCmd(flags),
		newListCmd(flags),
		newGetCmd(flags),
		newCreateCmd(flags),
		newUpdateCmd(flags),
		newIDsCmd(flags, "delete", "Permanently delete rows", deleteRows),
		newIDsCmd(flags, "recycle", "Move rows to the recycle bin", types.Table.Recycle),
		newIDsCmd(flags, "restore", "Restore rows from the recycle bin", types.Table.Restore),
		newIDsCmd(flags, "purge", "Permanently delete recycled rows", types.Table.Purge),
		newExportCmd(flags),
		newImportCmd(flags),
	)
	return root
}

// Run executes the command line args and returns the process exit code.
// Errors are printed to stderr.
func Run(args []string, stdout, stderr io.Writer) int {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.Execute()
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
	}
	return exitCode(err)
}

// Execute runs the root command against the process arguments.
func Execute() int {
	return Run(os.Args[1:], os.Stdout, os.Stderr)
}
