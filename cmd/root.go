package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "ct",
		Short:         "Copy trading CLI (ct): manage copier tokens and start or stop copying",
		Long:          "ct keeps a list of copier API tokens, runs the copy-trading setup flow against the trading API over one WebSocket connection, and records every login in a local journal.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newTokenCmd(app),
		newAuthorizeCmd(app),
		newCopyCmd(app),
		newHistoryCmd(app),
	)

	return rootCmd
}
