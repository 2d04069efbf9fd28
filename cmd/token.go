package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bnema/copytrade-cli/internal/adapters/render/report"
	"github.com/bnema/copytrade-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newTokenCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage copier tokens and the saved token",
	}

	cmd.AddCommand(
		newTokenAddCmd(app),
		newTokenRemoveCmd(app),
		newTokenListCmd(app),
		newTokenSaveCmd(app),
		newTokenSavedCmd(app),
	)

	return cmd
}

func newTokenAddCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <token>",
		Short: "Add a copier token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			copier, added, err := app.tokens.AddCopier(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if !added {
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "copier %s (%s) already stored\n", copier.ID, copier.Label)
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "added copier %s (%s)\n", copier.ID, copier.Label)
			return err
		},
	}
}

func newTokenRemoveCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <id-or-token>",
		Aliases: []string{"rm"},
		Short:   "Remove a copier token",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			copier, err := app.tokens.RemoveCopier(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "removed copier %s (%s)\n", copier.ID, copier.Label)
			return err
		},
	}
}

type copierJSON struct {
	ID      domain.CopierID `json:"id"`
	Token   string          `json:"token"`
	AddedAt *time.Time      `json:"added_at,omitempty"`
}

func newTokenListCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List copier tokens (masked)",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			copiers, err := app.tokens.ListCopiers(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				out := make([]copierJSON, 0, len(copiers))
				for _, copier := range copiers {
					entry := copierJSON{ID: copier.ID, Token: copier.Label}
					if !copier.AddedAt.IsZero() {
						addedAt := copier.AddedAt
						entry.AddedAt = &addedAt
					}
					out = append(out, entry)
				}
				return writeJSON(cmd, out)
			}

			rendered, err := app.copiersRenderer(copiers, report.RenderOptions{Now: app.now()})
			if err != nil {
				return fmt.Errorf("render copiers: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func newTokenSaveCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "save <token>",
		Short: "Save the token offered by default on the next run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.tokens.SaveToken(cmd.Context(), args[0]); err != nil {
				return err
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "saved token %s\n", domain.MaskToken(domain.NormalizeToken(args[0])))
			return err
		},
	}
}

func newTokenSavedCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "saved",
		Short: "Show the saved token (masked)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, _, err := app.tokens.SavedToken(cmd.Context())
			if err != nil {
				if errors.Is(err, domain.ErrNoSavedToken) {
					return fmt.Errorf("%w: run `ct token save <token>` or `ct authorize --token <token>`", err)
				}
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), domain.MaskToken(token))
			return err
		},
	}
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
