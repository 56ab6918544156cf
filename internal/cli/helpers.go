package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/backstage/internal/console"
	"github.com/mesh-intelligence/backstage/internal/logging"
	"github.com/mesh-intelligence/backstage/internal/metrics"
	"github.com/mesh-intelligence/backstage/pkg/types"
)

// session is an attached console plus what the command resolved to get it.
type session struct {
	console  *console.Console
	settings settings
	logger   zerolog.Logger
}

// openSession resolves settings, builds the logger and attaches a console.
// The caller must call close. m may be nil.
func openSession(cmd *cobra.Command, flags *rootFlags, m *metrics.Collector) (*session, error) {
	s, err := resolveSettings(flags)
	if err != nil {
		return nil, sysError("%v", err)
	}
	logger, err := logging.New(s.LogLevel, s.LogFormat, cmd.ErrOrStderr())
	if err != nil {
		return nil, userError("%v", err)
	}
	c := console.New(console.WithLogger(logger), console.WithMetrics(m))
	if err := c.Attach(s.Console); err != nil {
		return nil, classify(fmt.Errorf("attach %s backend: %w", s.Console.Backend, err))
	}
	return &session{console: c, settings: s, logger: logger}, nil
}

func (s *session) close() {
	if err := s.console.Detach(); err != nil {
		s.logger.Warn().Err(err).Msg("detach failed")
	}
}

// table returns the named table with a helpful error for unknown names.
func (s *session) table(name string) (types.Table, error) {
	t, err := s.console.GetTable(name)
	if err != nil {
		return nil, classify(fmt.Errorf("%w (valid: %s)", err, strings.Join(s.console.TableNames(), ", ")))
	}
	return t, nil
}

// parseObject decodes a JSON object argument.
func parseObject(arg string) (map[string]any, error) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(arg), &obj); err != nil || obj == nil {
		return nil, userError("invalid JSON object %q", arg)
	}
	return obj, nil
}

// parseFilters turns key=value arguments into filter state.
func parseFilters(args []string) (map[string]string, error) {
	filters := make(map[string]string, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, userError("invalid filter %q (expected key=value)", arg)
		}
		filters[key] = value
	}
	return filters, nil
}

func printJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return sysError("marshal output: %v", err)
	}
	fmt.Fprintln(w, string(out))
	return nil
}

// leadColumns open every row in text output.
var leadColumns = []string{"number", "id", "status"}

// printRows writes rows as an aligned table: the lead columns, then the
// remaining fields as key=value pairs in name order.
func printRows(w io.Writer, rows []any) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NUMBER\tID\tSTATUS\tFIELDS")
	for _, row := range rows {
		fields, err := toMap(row)
		if err != nil {
			return err
		}
		cols := make([]string, 0, len(leadColumns)+1)
		for _, k := range leadColumns {
			cols = append(cols, fmt.Sprint(fields[k]))
			delete(fields, k)
		}
		for _, k := range []string{"sort", "created_at", "updated_at"} {
			delete(fields, k)
		}
		cols = append(cols, formatFields(fields))
		fmt.Fprintln(tw, strings.Join(cols, "\t"))
	}
	return tw.Flush()
}

func toMap(row any) (map[string]any, error) {
	b, err := json.Marshal(row)
	if err != nil {
		return nil, sysError("marshal row: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, sysError("unmarshal row: %v", err)
	}
	return m, nil
}

func formatFields(fields map[string]any) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, fields[k])
	}
	return strings.Join(parts, " ")
}
