package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func contextCMD() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "context",
		Short: "Inspect or clear a session",
	}

	show := &cobra.Command{
		Use:   "show [session]",
		Short: "List the turns remembered for a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := timeoutContext(cmd.Context(), timeout)
			defer cancel()

			state, err := newAPIClient(serverURL, apiToken).GetContext(ctx, args[0])
			if err != nil {
				return err
			}
			if len(state.Turns) == 0 {
				color.Yellow("Session %s has no turns", state.SessionId)
				return nil
			}
			for i, turn := range state.Turns {
				color.Green("%d. %s", i+1, turn.OriginalQuery)
				if turn.UsedQuery != turn.OriginalQuery {
					fmt.Printf("   used: %s\n", turn.UsedQuery)
				}
				for _, u := range turn.ResultMeta.TopUrls {
					color.Cyan("   %s", u)
				}
			}
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear [session]",
		Short: "Forget a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := timeoutContext(cmd.Context(), timeout)
			defer cancel()

			out, err := newAPIClient(serverURL, apiToken).ClearContext(ctx, args[0])
			if err != nil {
				return err
			}
			color.Green("Cleared session %s", out.SessionId)
			return nil
		},
	}

	cmd.AddCommand(show, clearCmd)
	return cmd
}
