package cmd

import (
	"context"
	"fmt"

	"github.com/bnema/copytrade-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newAuthorizeCmd(app *app) *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "authorize",
		Short: "Authorize a token against the trading API and save it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAuthorize(cmd, app, token)
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "API token (default: saved token)")

	return cmd
}

func runAuthorize(cmd *cobra.Command, app *app, explicit string) error {
	token, err := app.tokens.ResolveToken(cmd.Context(), explicit)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), app.settings.Copy.Timeout)
	defer cancel()

	session, err := app.openSession(ctx, true)
	if err != nil {
		return err
	}
	defer func() { _ = session.Close() }()

	var auth domain.Authorization
	err = runFlowSpinner(ctx, cmd.ErrOrStderr(), session.controller.StatusLine, func(ctx context.Context) error {
		var authErr error
		auth, authErr = session.controller.Authorize(ctx, token)
		return authErr
	})
	session.notices.flush(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	if err := app.tokens.SaveToken(cmd.Context(), token); err != nil {
		return fmt.Errorf("save authorized token: %w", err)
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Authorized as %s (%s)\n", auth.LoginID, auth.AccountType.Label())
	return err
}
