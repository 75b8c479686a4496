package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/msgstore/internal/message"
	"github.com/roach88/msgstore/internal/queryprovider"
	"github.com/roach88/msgstore/internal/serializer"
	"github.com/roach88/msgstore/internal/sqlbuilder"
)

// ScriptsOptions holds flags for the scripts command.
type ScriptsOptions struct {
	*RootOptions
	Dialect string
	Binary  bool
}

// NewScriptsCommand creates the scripts command.
func NewScriptsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ScriptsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "scripts",
		Short: "Print the SQL scripts for a dialect",
		Long: `Print the create, exists, insert and unfiltered select scripts the
repository runs for a dialect. No database connection is made.

Examples:
  msgstore scripts --dialect postgres
  msgstore scripts --dialect sqlserver --binary --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScripts(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Dialect, "dialect", "d", "", "SQL dialect: postgres, mysql, sqlite, sqlserver (required)")
	_ = cmd.MarkFlagRequired("dialect")
	cmd.Flags().BoolVar(&opts.Binary, "binary", false, "use binary payload columns")

	return cmd
}

// Scripts is the data reported by the scripts command.
type Scripts struct {
	Dialect    string `json:"dialect"`
	Create     string `json:"create"`
	Exists     string `json:"exists"`
	ExistsArgs []any  `json:"exists_args"`
	Insert     string `json:"insert"`
	Filter     string `json:"filter"`
}

func (s Scripts) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "-- %s: create --\n%s", s.Dialect, s.Create)
	fmt.Fprintf(&b, "-- %s: exists (args %v) --\n%s\n", s.Dialect, s.ExistsArgs, s.Exists)
	fmt.Fprintf(&b, "-- %s: insert --\n%s\n", s.Dialect, s.Insert)
	fmt.Fprintf(&b, "-- %s: filter --\n%s", s.Dialect, s.Filter)
	return b.String()
}

func runScripts(opts *ScriptsOptions, cmd *cobra.Command) error {
	dialect, err := sqlbuilder.ParseDialect(opts.Dialect)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --dialect", err).WithCode(ErrCodeInvalidArgument)
	}

	var s serializer.Serializer = serializer.JSON{}
	if opts.Binary {
		s = serializer.Gob{}
	}
	p, err := queryprovider.New(dialect, s)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build query provider", err)
	}

	exists, existsArgs := p.GetExistsTableScript()
	filter, _, err := p.GetFilterScript(message.NewQuery())
	if err != nil {
		return WrapExitError(ExitFailure, "failed to build filter script", err)
	}

	return NewOutputFormatter(opts.RootOptions, cmd).Success(Scripts{
		Dialect:    dialect.String(),
		Create:     p.GetCreateTableScript(),
		Exists:     exists,
		ExistsArgs: existsArgs,
		Insert:     p.GetInsertMessageScript(),
		Filter:     filter,
	})
}
