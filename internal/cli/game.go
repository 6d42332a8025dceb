package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kprao/rummyscore/internal/dependencies/random"
	"github.com/kprao/rummyscore/internal/model"
	"github.com/kprao/rummyscore/internal/services/roster"
)

func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Game commands",
	}

	cmd.AddCommand(newGameNewCmd())
	cmd.AddCommand(newGameGetCmd())
	cmd.AddCommand(newGameScoreCmd())
	cmd.AddCommand(newGameRenameCmd())
	cmd.AddCommand(newGameAddPlayerCmd())
	cmd.AddCommand(newGameRemovePlayerCmd())
	cmd.AddCommand(newGameSettingsCmd())
	cmd.AddCommand(newGameVerifyPinCmd())
	cmd.AddCommand(newGameStandingsCmd())
	cmd.AddCommand(newGameShareCmd())

	return cmd
}

func newGameNewCmd() *cobra.Command {
	var pointValue float64
	var gstPercent float64

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a new game and remember its id and PIN",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]float64{}
			if pointValue > 0 {
				req["pointValue"] = pointValue
			}
			if gstPercent > 0 {
				req["gstPercent"] = gstPercent
			}

			var result GameCreated

			if err := client.Post("/api/v1/games", req, &result); err != nil {
				return err
			}

			// Remember the game so later commands carry the edit PIN
			if err := cfg.SaveSession(Session{GameID: result.GameID, Pin: result.Pin}); err != nil {
				return fmt.Errorf("failed to save session: %w", err)
			}
			client.SetPin(result.Pin)

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().Float64Var(&pointValue, "point-value", 0, "Monetary value per point")
	cmd.Flags().Float64Var(&gstPercent, "gst", 0, "GST percentage applied to winnings")

	return cmd
}

func newGameGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Get the game's scoreboard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]

			var result GameState

			if err := client.Get(fmt.Sprintf("/api/v1/games/%s", id), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameScoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "score <id> <player> <round> <score>",
		Short: "Record a player's score for a round (player and round are 1-based)",
		Long: `Record a score for one player's round.

Valid scores are 0-100. Anything outside that range marks the round as
not played.`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			player, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid player: %w", err)
			}

			round, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid round: %w", err)
			}

			score, err := strconv.Atoi(args[3])
			if err != nil {
				return fmt.Errorf("invalid score: %w", err)
			}

			result, err := updateGame(args[0], func(s *model.Snapshot) error {
				if player < 1 || player > len(s.Players) {
					return fmt.Errorf("player must be 1-%d", len(s.Players))
				}
				if round < 1 || round > model.NumRounds {
					return fmt.Errorf("round must be 1-%d", model.NumRounds)
				}
				return s.SetScore(player-1, round-1, score)
			})
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <player> <name>",
		Short: "Rename a player (1-based)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			player, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid player: %w", err)
			}
			name := args[2]

			result, err := updateGame(args[0], func(s *model.Snapshot) error {
				if player < 1 || player > len(s.Players) {
					return fmt.Errorf("player must be 1-%d", len(s.Players))
				}
				return s.Rename(player-1, name)
			})
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameAddPlayerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-player <id> [name]",
		Short: "Add a player to the game",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) > 1 {
				name = args[1]
			}

			result, err := updateGame(args[0], func(s *model.Snapshot) error {
				return rosterService().AddPlayer(s, name)
			})
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameRemovePlayerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove-player <id> <position>",
		Short: "Remove a player by scoreboard position (1-based)",
		Long: `Remove the player at the given scoreboard position.

Positions count down the displayed scoreboard, which orders players by
their table numbers, not by the order they joined.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			position, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid position: %w", err)
			}

			result, err := updateGame(args[0], func(s *model.Snapshot) error {
				if err := rosterService().RemovePlayer(s, position-1); err != nil {
					if errors.Is(err, model.ErrIndexOutOfRange) {
						return fmt.Errorf("position must be 1-%d", len(s.Players))
					}
					return err
				}
				return nil
			})
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameSettingsCmd() *cobra.Command {
	var pointValue float64
	var gstPercent float64

	cmd := &cobra.Command{
		Use:   "settings <id>",
		Short: "Update the game's monetary settings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("point-value") && !cmd.Flags().Changed("gst") {
				return fmt.Errorf("nothing to change; pass --point-value and/or --gst")
			}

			result, err := updateGame(args[0], func(s *model.Snapshot) error {
				if cmd.Flags().Changed("point-value") {
					if pointValue <= 0 {
						return fmt.Errorf("point value must be positive")
					}
					s.PointValue = pointValue
				}
				if cmd.Flags().Changed("gst") {
					if gstPercent < 0 {
						return fmt.Errorf("gst percentage must not be negative")
					}
					s.GSTPercent = gstPercent
				}
				return nil
			})
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().Float64Var(&pointValue, "point-value", 0, "Monetary value per point")
	cmd.Flags().Float64Var(&gstPercent, "gst", 0, "GST percentage applied to winnings")

	return cmd
}

func newGameVerifyPinCmd() *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "verify-pin <id> <pin>",
		Short: "Check which mode a PIN grants on a game",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			pin := args[1]

			req := map[string]string{"pin": pin}
			var result PinVerification

			if err := client.Post(fmt.Sprintf("/api/v1/games/%s/pin", id), req, &result); err != nil {
				return err
			}

			if save && result.Mode == "edit" {
				if err := cfg.SaveSession(Session{GameID: id, Pin: pin}); err != nil {
					return fmt.Errorf("failed to save session: %w", err)
				}
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "Remember the game and PIN when edit access is granted")

	return cmd
}

func newGameStandingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "standings <id>",
		Short: "Show the settlement for a game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]

			var result Standings

			if err := client.Get(fmt.Sprintf("/api/v1/games/%s/standings", id), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameShareCmd() *cobra.Command {
	var round bool

	cmd := &cobra.Command{
		Use:   "share <id>",
		Short: "Print shareable result text for messaging apps",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]

			var state GameState

			if err := client.Get(fmt.Sprintf("/api/v1/games/%s", id), &state); err != nil {
				return err
			}

			if round {
				fmt.Println(formatRoundShareText(state))
			} else {
				fmt.Println(formatLeaderboardShareText(state))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&round, "round", false, "Share the last completed round instead of the leaderboard")

	return cmd
}

// rosterService builds the roster service the mutation commands delegate
// to, so add/remove and table-number rules live in one place.
func rosterService() *roster.Service {
	return roster.New(random.New(), cliLogger())
}

// updateGame reads the game, applies the mutation locally, and writes the
// whole snapshot back. The server stamps the update time and rejects the
// write unless the client's PIN matches.
func updateGame(id string, mutate func(*model.Snapshot) error) (GameState, error) {
	var current struct {
		Snapshot *model.Snapshot `json:"snapshot"`
	}
	if err := client.Get(fmt.Sprintf("/api/v1/games/%s", id), &current); err != nil {
		return GameState{}, err
	}
	if current.Snapshot == nil {
		return GameState{}, fmt.Errorf("game %s has no snapshot", id)
	}

	if err := mutate(current.Snapshot); err != nil {
		return GameState{}, err
	}

	req := map[string]any{"snapshot": current.Snapshot}
	var result GameState
	if err := client.Put(fmt.Sprintf("/api/v1/games/%s", id), req, &result); err != nil {
		return GameState{}, err
	}
	return result, nil
}
