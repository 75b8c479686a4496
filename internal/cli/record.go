package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/msgstore/internal/message"
)

// RecordOptions holds flags for the record command.
type RecordOptions struct {
	*RootOptions
	Type         string
	ContentType  string
	Content      string
	Data         map[string]string
	Status       string
	ErrorType    string
	ErrorMessage string
	Duration     time.Duration
}

// NewRecordCommand creates the record command.
func NewRecordCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RecordOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Store one executed message",
		Long: `Store one executed message in the configured database.

--content is parsed as JSON when it is valid JSON and stored as a plain
string otherwise. The status defaults to completed, or failed when
--error-type is given.

Examples:
  msgstore record --content-type Orders.Create --content '{"id":1}'
  msgstore record --type event --content-type Orders.Created --duration 15ms
  msgstore record --content-type Billing.Charge --error-type DeclinedError --error-message "card declined"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecord(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Type, "type", "t", "command", "message type: command, query, event")
	cmd.Flags().StringVar(&opts.ContentType, "content-type", "", "content type name (required)")
	_ = cmd.MarkFlagRequired("content-type")
	cmd.Flags().StringVar(&opts.Content, "content", "{}", "message content")
	cmd.Flags().StringToStringVar(&opts.Data, "data", nil, "extra key=value data")
	cmd.Flags().StringVar(&opts.Status, "status", "", "status: not_initialized, processing, completed, failed, rejected")
	cmd.Flags().StringVar(&opts.ErrorType, "error-type", "", "error type name")
	cmd.Flags().StringVar(&opts.ErrorMessage, "error-message", "", "error message")
	cmd.Flags().DurationVar(&opts.Duration, "duration", 0, "execution duration")

	return cmd
}

// RecordResult is the data reported by record.
type RecordResult struct {
	ContentID   string `json:"content_id"`
	ContentType string `json:"content_type"`
	Status      string `json:"status"`
}

func (r RecordResult) String() string {
	return fmt.Sprintf("Stored %s %s (%s)", r.ContentType, r.ContentID, r.Status)
}

func runRecord(opts *RecordOptions, cmd *cobra.Command) error {
	env, err := opts.envelope()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid record flags", err)
	}

	e, err := openEnv(cmd.Context(), opts.RootOptions)
	if err != nil {
		return err
	}
	defer e.Close()

	rec, err := message.NewRecord(e.repo.Serializer(), env)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to serialize message", err)
	}
	if opts.ErrorType != "" {
		if err := opts.applyError(&rec, e.repo.Serializer().Serialize); err != nil {
			return WrapExitError(ExitFailure, "failed to serialize error details", err)
		}
	}

	if err := e.repo.Insert(cmd.Context(), rec); err != nil {
		return WrapExitError(ExitFailure, "failed to store message", err).WithCode(ErrCodeStorage)
	}

	return NewOutputFormatter(opts.RootOptions, cmd).Success(RecordResult{
		ContentID:   rec.ContentID.String(),
		ContentType: rec.ContentType,
		Status:      rec.Status.String(),
	})
}

// envelope builds the message from flags.
func (o *RecordOptions) envelope() (message.Envelope, error) {
	typ, err := message.ParseType(o.Type)
	if err != nil {
		return message.Envelope{}, err
	}
	if o.ErrorMessage != "" && o.ErrorType == "" {
		return message.Envelope{}, fmt.Errorf("%w: --error-message requires --error-type", message.ErrInvalidArgument)
	}

	env := message.Envelope{
		Type:              typ,
		ContentType:       o.ContentType,
		Content:           parseContent(o.Content),
		Data:              o.Data,
		CreatedAt:         time.Now().UTC(),
		ExecutionDuration: o.Duration,
	}

	switch {
	case o.Status != "":
		if env.Status, err = message.ParseStatus(o.Status); err != nil {
			return message.Envelope{}, err
		}
	case o.ErrorType != "":
		env.Status = message.StatusFailed
	}
	return env, nil
}

// applyError sets the error columns from the --error-* flags.
func (o *RecordOptions) applyError(rec *message.Record, serialize func(any) ([]byte, error)) error {
	msg := o.ErrorMessage
	if msg == "" {
		msg = o.ErrorType
	}
	rec.ErrorType = o.ErrorType
	rec.ErrorMessage = msg

	details, err := serialize(message.ErrorDetail{Type: o.ErrorType, Message: msg})
	if err != nil {
		return err
	}
	rec.ErrorDetails = details
	return nil
}

// parseContent decodes raw as JSON, falling back to the raw string.
func parseContent(raw string) any {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return raw
	}
	return v
}
