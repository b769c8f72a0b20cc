package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MRamiBalles/EscapeRoomGame/server/internal/domain/settings"
)

func newSettingsCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the stored player settings",
	}
	cmd.AddCommand(newSettingsShowCmd(flags), newSettingsSetCmd(flags))
	return cmd
}

func newSettingsShowCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the current settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, cleanup, err := openStore(cmd, flags)
			if err != nil {
				return err
			}
			defer cleanup()

			printSettings(cmd, store.LoadSettings(cmd.Context()))
			return nil
		},
	}
}

func newSettingsSetCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "set KEY VALUE",
		Short:   "Change one setting (soundEnabled, volume, graphicsQuality)",
		Example: "  escape-server settings set volume 40%\n  escape-server settings set graphicsQuality low",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, cleanup, err := openStore(cmd, flags)
			if err != nil {
				return err
			}
			defer cleanup()

			updated, err := store.UpdateSetting(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			printSettings(cmd, updated)
			return nil
		},
	}
}

func printSettings(cmd *cobra.Command, s settings.Settings) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "soundEnabled     %t\n", s.SoundEnabled)
	fmt.Fprintf(out, "volume           %.0f%%\n", s.Volume*100)
	fmt.Fprintf(out, "graphicsQuality  %s\n", s.GraphicsQuality)
}
