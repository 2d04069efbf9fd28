package cmd

import (
	"context"
	"fmt"

	"github.com/bnema/copytrade-cli/internal/application"
	"github.com/bnema/copytrade-cli/internal/domain"
	"github.com/spf13/cobra"
)

type copyRun func(ctx context.Context, controller *application.CopyController) ([]domain.Outcome, error)

func newCopyCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "copy",
		Short: "Start or stop copying the configured trader",
	}

	cmd.AddCommand(
		newCopyStartCmd(app),
		newCopyStopCmd(app),
		newCopyStartAllCmd(app),
		newCopyStopAllCmd(app),
	)

	return cmd
}

func newCopyStartCmd(app *app) *cobra.Command {
	var token string
	var demoToReal bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start copying for one copier token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			copier, err := app.tokens.ResolveToken(cmd.Context(), token)
			if err != nil {
				return err
			}

			return runCopy(cmd, app, needsNetwork(app, demoToReal), true, asJSON, func(ctx context.Context, controller *application.CopyController) ([]domain.Outcome, error) {
				return single(controller.StartCopy(ctx, copier, demoToReal))
			})
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Copier token (default: saved token)")
	cmd.Flags().BoolVar(&demoToReal, "demo-to-real", false, "Copy the demo trader instead of the real one")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func newCopyStopCmd(app *app) *cobra.Command {
	var token string
	var demoToReal bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop copying for one copier token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			copier, err := app.tokens.ResolveToken(cmd.Context(), token)
			if err != nil {
				return err
			}

			return runCopy(cmd, app, needsNetwork(app, demoToReal), true, asJSON, func(ctx context.Context, controller *application.CopyController) ([]domain.Outcome, error) {
				return single(controller.StopCopy(ctx, copier, demoToReal))
			})
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Copier token (default: saved token)")
	cmd.Flags().BoolVar(&demoToReal, "demo-to-real", false, "Stop a copy started with --demo-to-real")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func newCopyStartAllCmd(app *app) *cobra.Command {
	var demoToReal bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "start-all",
		Short: "Start copying for every stored copier token, one after another",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tokens, err := app.tokens.BatchTokens(cmd.Context())
			if err != nil {
				return err
			}

			return runCopy(cmd, app, needsNetwork(app, demoToReal), false, asJSON, func(ctx context.Context, controller *application.CopyController) ([]domain.Outcome, error) {
				return controller.StartAll(ctx, tokens, demoToReal)
			})
		},
	}

	cmd.Flags().BoolVar(&demoToReal, "demo-to-real", false, "Copy the demo trader instead of the real one")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func newCopyStopAllCmd(app *app) *cobra.Command {
	var demoToReal bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stop-all",
		Short: "Stop copying for every stored copier token, one after another",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tokens, err := app.tokens.BatchTokens(cmd.Context())
			if err != nil {
				return err
			}

			return runCopy(cmd, app, needsNetwork(app, demoToReal), false, asJSON, func(ctx context.Context, controller *application.CopyController) ([]domain.Outcome, error) {
				return controller.StopAll(ctx, tokens, demoToReal)
			})
		},
	}

	cmd.Flags().BoolVar(&demoToReal, "demo-to-real", false, "Stop copies started with --demo-to-real")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

// needsNetwork reports whether a flow must reach the API. Simulated
// demo-to-real copies start and stop locally.
func needsNetwork(app *app, demoToReal bool) bool {
	return !(demoToReal && app.settings.Copy.SimulateDemoToReal)
}

// single adapts a one-flow result to the batch shape. A zero outcome means
// the flow never finished, so err is returned as is.
func single(outcome domain.Outcome, err error) ([]domain.Outcome, error) {
	if outcome.Token == "" {
		return nil, err
	}

	return []domain.Outcome{outcome}, nil
}

type batchJSON struct {
	Outcomes []domain.Outcome    `json:"outcomes"`
	Summary  application.Summary `json:"summary"`
}

func runCopy(cmd *cobra.Command, app *app, connect bool, one bool, asJSON bool, run copyRun) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), app.settings.Copy.Timeout)
	defer cancel()

	session, err := app.openSession(ctx, connect)
	if err != nil {
		return err
	}
	defer func() { _ = session.Close() }()

	var outcomes []domain.Outcome
	work := func(ctx context.Context) error {
		var runErr error
		outcomes, runErr = run(ctx, session.controller)
		return runErr
	}

	if asJSON {
		err = work(ctx)
	} else {
		err = runFlowSpinner(ctx, cmd.ErrOrStderr(), session.controller.StatusLine, work)
	}
	session.notices.flush(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	if err := writeOutcomes(cmd, app, outcomes, one, asJSON); err != nil {
		return err
	}

	summary := application.Summarize(outcomes)
	if summary.Failed == 0 {
		return nil
	}
	if one {
		return outcomes[0].Err
	}

	return fmt.Errorf("%d of %d copy flows failed", summary.Failed, summary.Total)
}

func writeOutcomes(cmd *cobra.Command, app *app, outcomes []domain.Outcome, one bool, asJSON bool) error {
	if asJSON {
		if one && len(outcomes) == 1 {
			return writeJSON(cmd, outcomes[0])
		}
		return writeJSON(cmd, batchJSON{Outcomes: outcomes, Summary: application.Summarize(outcomes)})
	}

	rendered, err := app.outcomeRenderer(outcomes)
	if err != nil {
		return fmt.Errorf("render copy results: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}
