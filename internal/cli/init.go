package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the messages table if it does not exist",
		Long: `Create the messages table and its indexes in the configured database.

Running init against a database that already has the table does nothing.

Example:
  msgstore init --config ./msgstore.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(rootOpts, cmd)
		},
	}
}

// InitResult is the data reported by init.
type InitResult struct {
	Driver  string `json:"driver"`
	Dialect string `json:"dialect"`
	Text    bool   `json:"text_payload"`
}

func (r InitResult) String() string {
	return fmt.Sprintf("Schema ready (driver %s, dialect %s)", r.Driver, r.Dialect)
}

func runInit(opts *RootOptions, cmd *cobra.Command) error {
	e, err := openEnv(cmd.Context(), opts)
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.repo.EnsureSchema(cmd.Context()); err != nil {
		return WrapExitError(ExitFailure, "failed to create schema", err).WithCode(ErrCodeDatabase)
	}

	return NewOutputFormatter(opts, cmd).Success(InitResult{
		Driver:  e.cfg.Database.Driver,
		Dialect: e.repo.Provider().Dialect().String(),
		Text:    e.repo.Serializer().IsText(),
	})
}
