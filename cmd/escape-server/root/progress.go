package root

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newProgressCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Inspect or discard the saved game",
	}
	cmd.AddCommand(newProgressShowCmd(flags), newProgressClearCmd(flags))
	return cmd
}

func newProgressShowCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the saved snapshot as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, cleanup, err := openStore(cmd, flags)
			if err != nil {
				return err
			}
			defer cleanup()

			snap := store.LoadProgress(cmd.Context())
			if snap == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "No saved progress.")
				return nil
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(snap)
		},
	}
}

func newProgressClearCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Discard the saved game",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, cleanup, err := openStore(cmd, flags)
			if err != nil {
				return err
			}
			defer cleanup()

			if !store.ClearProgress(cmd.Context()) {
				return errors.New("progress could not be cleared")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✔ Saved progress cleared")
			return nil
		},
	}
}
