package root

import (
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/MRamiBalles/EscapeRoomGame/server/internal/domain/score"
)

func newScoresCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scores",
		Short: "Inspect or clear the local scoreboard",
	}
	cmd.AddCommand(newScoresListCmd(flags), newScoresClearCmd(flags))
	return cmd
}

func newScoresListCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Print the scoreboard, fastest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, cleanup, err := openStore(cmd, flags)
			if err != nil {
				return err
			}
			defer cleanup()

			board := store.Scoreboard(cmd.Context())
			out := cmd.OutOrStdout()
			if len(board) == 0 {
				fmt.Fprintln(out, "No runs recorded yet.")
				return nil
			}

			now := time.Now()
			for i, e := range board {
				fmt.Fprintf(out, "%-8s %s  %s  (%s)\n",
					score.RankLabel(i+1),
					score.FormatTime(e.Time),
					e.Date,
					humanize.RelTime(e.CreatedAt(), now, "ago", "from now"))
			}
			best, _ := score.Best(board)
			avg, _ := score.Average(board)
			fmt.Fprintf(out, "\nBest %s · Average %s · %d runs\n", score.FormatTime(best.Time), score.FormatTime(avg), len(board))
			return nil
		},
	}
}

func newScoresClearCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every scoreboard entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, cleanup, err := openStore(cmd, flags)
			if err != nil {
				return err
			}
			defer cleanup()

			if !store.ClearScoreboard(cmd.Context()) {
				return errors.New("scoreboard could not be cleared")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✔ Scoreboard cleared")
			return nil
		},
	}
}
