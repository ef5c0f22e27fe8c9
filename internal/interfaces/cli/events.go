package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/CompoundForge/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/CompoundForge/pkg/errors"
)

func NewEventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Inspect the compound.analyzed event topic",
	}
	cmd.AddCommand(newEventsTailCmd())
	return cmd
}

func newEventsTailCmd() *cobra.Command {
	var (
		group string
		from  string
		limit int
	)
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Print analysis events as they arrive",
		Long:  "Consumes the configured Kafka topic until interrupted, --max events were printed, or --timeout expires.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			if from != "earliest" && from != "latest" {
				return errors.Newf(errors.ErrCodeBadRequest, "--from must be earliest or latest, got %q", from)
			}
			if group == "" {
				group = fmt.Sprintf("cforge-tail-%d", time.Now().UnixNano())
			}
			consumer, err := kafka.NewConsumer(kafka.ConsumerConfig{
				Brokers:         cc.Config.Kafka.Brokers,
				GroupID:         group,
				Topic:           cc.Config.Kafka.Topic,
				AutoOffsetReset: from,
			}, cc.Logger.Named("events"))
			if err != nil {
				return err
			}
			defer consumer.Close()

			ctx, cancel := commandContext(cmd, cc)
			defer cancel()
			return tailEvents(ctx, cancel, cmd, cc, consumer, limit)
		},
	}
	cmd.Flags().StringVar(&group, "group", "", "consumer group (default: a fresh group per run)")
	cmd.Flags().StringVar(&from, "from", "latest", "start offset for a new group (earliest, latest)")
	cmd.Flags().IntVar(&limit, "max", 0, "stop after this many events; 0 means no limit")
	return cmd
}

type envelopeRunner interface {
	Run(ctx context.Context, handler kafka.EnvelopeHandler) error
}

func tailEvents(ctx context.Context, cancel context.CancelFunc, cmd *cobra.Command, cc *CLIContext, r envelopeRunner, limit int) error {
	seen := 0
	return r.Run(ctx, func(_ context.Context, env *kafka.EventEnvelope) error {
		if cc.OutputFormat == "json" {
			if err := printJSON(cmd, env); err != nil {
				return err
			}
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), formatEvent(env))
		}
		seen++
		if limit > 0 && seen >= limit {
			cancel()
		}
		return nil
	})
}

func formatEvent(env *kafka.EventEnvelope) string {
	prefix := fmt.Sprintf("%s %s", env.Timestamp.Format(time.RFC3339), env.EventType)
	if env.EventType != kafka.EventCompoundAnalyzed {
		return prefix
	}
	var p kafka.CompoundAnalyzedPayload
	if err := env.DecodePayload(&p); err != nil {
		return prefix + " (undecodable payload)"
	}
	line := fmt.Sprintf("%s %s %s %s [%s]", prefix,
		strings.Join(p.Elements, "-"), p.Likelihood, p.BondType, strings.Join(p.Formulas, " "))
	if p.UserFormula != "" {
		line += " formula=" + p.UserFormula
	}
	return line
}
