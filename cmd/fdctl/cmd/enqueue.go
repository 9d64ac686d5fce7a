package cmd

import (
	"fmt"

	"github.com/SscSPs/finance_dashboard/internal/ingest"
	"github.com/spf13/cobra"
)

var enqueueOpts struct {
	date          string
	establishment string
	amount        string
	kind          string
	category      string
	notes         string
	owner         string
}

// enqueueCmd publishes one transaction to the ingest queue.
var enqueueCmd = &cobra.Command{
	Use:   "enqueue",
	Short: "Publish a transaction to the ingest queue",
	Long: `Publishes one message in the format the ingest worker consumes. Without --owner
the row is stored unowned and waits for a claim.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := ingest.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			return err
		}
		defer client.Close()

		msg := ingest.NewTransactionMessage(
			enqueueOpts.date,
			enqueueOpts.establishment,
			enqueueOpts.amount,
			enqueueOpts.kind,
			enqueueOpts.category,
			enqueueOpts.notes,
			enqueueOpts.owner,
		)
		if err := client.PublishTransaction(cmd.Context(), msg); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Queued %s on %s\n", msg.Establishment, cfg.AMQPQueue)
		return nil
	},
}

func init() {
	f := enqueueCmd.Flags()
	f.StringVar(&enqueueOpts.date, "date", "", "transaction date as the bot writes it")
	f.StringVar(&enqueueOpts.establishment, "establishment", "", "where the money went or came from")
	f.StringVar(&enqueueOpts.amount, "amount", "", "unsigned amount")
	f.StringVar(&enqueueOpts.kind, "kind", "despesa", "despesa or receita")
	f.StringVar(&enqueueOpts.category, "category", "Outros", "category")
	f.StringVar(&enqueueOpts.notes, "notes", "", "free-text notes")
	f.StringVar(&enqueueOpts.owner, "owner", "", "owner identity (phone); empty leaves the row unowned")
	_ = enqueueCmd.MarkFlagRequired("date")
	_ = enqueueCmd.MarkFlagRequired("establishment")
}
