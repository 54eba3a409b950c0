package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/uilacceb/splitter/pkg/api"
)

func regenerateCmd(opts *rootOptions) *cobra.Command {
	var (
		all         bool
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "regenerate [event-id]",
		Short: "Rebuild the unsettled obligations of stored events",
		Long: `Recomputes the unsettled obligations of one event, or of every stored event
with --all. Settled rows are never touched.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (len(args) == 1) {
				return errors.New("pass either an event ID or --all")
			}

			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			if all {
				n, err := a.ledger.RegenerateAll(cmd.Context(), concurrency)
				fmt.Fprintf(cmd.OutOrStdout(), "regenerated %d events\n", n)
				return err
			}

			out, err := a.ledger.Regenerate(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			resp := api.NetResponse{Obligations: make([]api.Obligation, 0, len(out))}
			for _, o := range out {
				resp.Obligations = append(resp.Obligations, api.Obligation{From: o.From, To: o.To, Amount: o.Amount})
			}
			return writeJSON(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Regenerate every stored event")
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "Events regenerated in parallel with --all")
	return cmd
}
