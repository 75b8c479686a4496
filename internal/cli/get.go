package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/msgstore/internal/httpapi"
	"github.com/roach88/msgstore/internal/message"
	"github.com/roach88/msgstore/internal/repository"
)

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one stored message by its storage id",
		Long: `Load a single message by the id the database assigned to it.

The lookup goes through the gorm repository on the configured connection.

Examples:
  msgstore get 42
  msgstore get 42 --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runGet(opts *RootOptions, raw string, cmd *cobra.Command) error {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return WrapExitError(ExitCommandError, "invalid id",
			fmt.Errorf("%w: id must be a positive integer, got %q", message.ErrInvalidArgument, raw))
	}

	e, err := openEnv(cmd.Context(), opts)
	if err != nil {
		return err
	}
	defer e.Close()

	gdb, err := repository.Open(e.cfg.Database.Driver, e.db.DB)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open repository", err).WithCode(ErrCodeDatabase)
	}
	repo, err := repository.NewGormRepository[repository.MessageModel](gdb)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open repository", err).WithCode(ErrCodeDatabase)
	}

	model, err := repo.Get(cmd.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		return WrapExitError(ExitFailure, fmt.Sprintf("message %d not found", id), err).WithCode(ErrCodeNotFound)
	}
	if err != nil {
		return WrapExitError(ExitFailure, "failed to load message", err).WithCode(ErrCodeStorage)
	}
	rec, err := model.Record()
	if err != nil {
		return WrapExitError(ExitFailure, "failed to decode message", err).WithCode(ErrCodeStorage)
	}

	if opts.Format == "json" {
		return NewOutputFormatter(opts, cmd).Success(httpapi.RenderRecord(rec, e.repo.Serializer().IsText()))
	}
	return writeRecordTable(cmd.OutOrStdout(), []message.Record{rec})
}
