package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/roach88/msgstore/internal/httpapi"
	"github.com/roach88/msgstore/internal/message"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	ID            string
	ContentType   string
	ErrorType     string
	Status        string
	Type          string
	From          string
	To            string
	DurationAbove time.Duration
	DurationBelow time.Duration
	Skip          int
	Take          int
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query",
		Short: "List stored messages matching a filter",
		Long: `List stored messages in id order. All filters are optional and combine
with AND. --content-type and --error-type match by prefix.

Examples:
  msgstore query --status failed
  msgstore query --content-type Orders. --from 2024-03-01T00:00:00Z --take 20
  msgstore query --duration-above 1s --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ID, "id", "", "content id")
	cmd.Flags().StringVar(&opts.ContentType, "content-type", "", "content type prefix")
	cmd.Flags().StringVar(&opts.ErrorType, "error-type", "", "error type prefix")
	cmd.Flags().StringVar(&opts.Status, "status", "", "status name or code")
	cmd.Flags().StringVarP(&opts.Type, "type", "t", "", "message type name or code")
	cmd.Flags().StringVar(&opts.From, "from", "", "created at or after (RFC3339)")
	cmd.Flags().StringVar(&opts.To, "to", "", "created at or before (RFC3339)")
	cmd.Flags().DurationVar(&opts.DurationAbove, "duration-above", -1, "minimum execution duration")
	cmd.Flags().DurationVar(&opts.DurationBelow, "duration-below", -1, "maximum execution duration")
	cmd.Flags().IntVar(&opts.Skip, "skip", 0, "rows to skip")
	cmd.Flags().IntVar(&opts.Take, "take", 0, "rows to return (0 for all)")

	return cmd
}

func runQuery(opts *QueryOptions, cmd *cobra.Command) error {
	q, err := opts.query(cmd)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid query flags", err)
	}

	e, err := openEnv(cmd.Context(), opts.RootOptions)
	if err != nil {
		return err
	}
	defer e.Close()

	records, err := e.repo.Query(cmd.Context(), q)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to query messages", err).WithCode(ErrCodeStorage)
	}

	text := e.repo.Serializer().IsText()
	if opts.Format == "json" {
		return NewOutputFormatter(opts.RootOptions, cmd).Success(httpapi.RenderRecords(records, text))
	}
	return writeRecordTable(cmd.OutOrStdout(), records)
}

// query maps flags onto a message.Query. Prefix filters apply only when the
// flag was given, so --content-type "" matches everything explicitly.
func (o *QueryOptions) query(cmd *cobra.Command) (*message.Query, error) {
	q := message.NewQuery()
	flags := cmd.Flags()

	if o.ID != "" {
		id, err := uuid.Parse(o.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: --id: %v", message.ErrInvalidArgument, err)
		}
		q.WithID(id)
	}

	var from, to time.Time
	for _, f := range []struct {
		raw string
		dst *time.Time
	}{{o.From, &from}, {o.To, &to}} {
		if f.raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339Nano, f.raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", message.ErrInvalidArgument, err)
		}
		*f.dst = t
	}
	q.WithCreatedRange(from, to)

	if flags.Changed("content-type") {
		q.WithContentType(o.ContentType)
	}
	if flags.Changed("error-type") {
		q.WithErrorType(o.ErrorType)
	}
	if o.Status != "" {
		s, err := message.ParseStatus(o.Status)
		if err != nil {
			return nil, err
		}
		q.WithStatus(s)
	}
	if o.Type != "" {
		t, err := message.ParseType(o.Type)
		if err != nil {
			return nil, err
		}
		q.WithType(t)
	}

	q.WithExecutionDuration(o.DurationAbove, o.DurationBelow)
	q.Page(o.Skip, o.Take)
	return q, q.Validate()
}

func writeRecordTable(w io.Writer, records []message.Record) error {
	if len(records) == 0 {
		fmt.Fprintln(w, "No messages found")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tCONTENT TYPE\tSTATUS\tCREATED\tDURATION\tERROR")
	for _, rec := range records {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			rec.ID,
			rec.Type,
			rec.ContentType,
			rec.Status,
			rec.CreatedAt.Format(time.RFC3339),
			rec.ExecutionDuration,
			rec.ErrorType,
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "\n%d message(s)\n", len(records))
	return nil
}
