package cmd

import (
	"fmt"
	"time"

	"github.com/bnema/copytrade-cli/internal/adapters/render/report"
	"github.com/bnema/copytrade-cli/internal/domain"
	"github.com/spf13/cobra"
)

const defaultHistoryLimit = 20

type loginJSON struct {
	LoginID     string             `json:"login_id"`
	AccountType domain.AccountType `json:"account_type"`
	Role        domain.Role        `json:"role"`
	Token       string             `json:"token"`
	At          time.Time          `json:"at"`
}

func newHistoryCmd(app *app) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent logins (newest first)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			journal, err := app.openJournal(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = journal.Close() }()

			records, err := journal.List(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if asJSON {
				out := make([]loginJSON, 0, len(records))
				for _, record := range records {
					out = append(out, loginJSON(record))
				}
				return writeJSON(cmd, out)
			}

			rendered, err := app.historyRenderer(records, report.RenderOptions{Now: app.now()})
			if err != nil {
				return fmt.Errorf("render history: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().IntVar(&limit, "limit", defaultHistoryLimit, "Maximum number of entries")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	cmd.AddCommand(newHistoryClearCmd(app))

	return cmd
}

func newHistoryClearCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every recorded login",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			journal, err := app.openJournal(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = journal.Close() }()

			if err := journal.Clear(cmd.Context()); err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), "login history cleared")
			return err
		},
	}
}
