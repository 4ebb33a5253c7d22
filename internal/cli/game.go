package cli

import (
	"github.com/spf13/cobra"
)

func newPlayCmd() *cobra.Command {
	var opponent string

	cmd := &cobra.Command{
		Use:   "play <rock|paper|scissors>",
		Short: "Play a round",
		Long: `Play a round of rock-paper-scissors.

By default the server picks the opponent's move at random. Pass --opponent
to supply the opponent's move yourself.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{"move": args[0]}
			if opponent != "" {
				req["opponent_move"] = opponent
			}

			var result PlayResult
			if err := client.Post("/api/v1/game/play", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&opponent, "opponent", "", "Opponent's move (random if omitted)")

	return cmd
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show your standing",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Stats

			if err := client.Get("/api/v1/stats", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
