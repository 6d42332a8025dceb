package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kprao/rummyscore/internal/dependencies/clock"
	"github.com/kprao/rummyscore/internal/dependencies/random"
	gdatastore "github.com/kprao/rummyscore/internal/localstore/gdata"
	"github.com/kprao/rummyscore/internal/model"
	"github.com/kprao/rummyscore/internal/services/session"
)

// localAppName names the per-app data directory holding the device's
// current game.
const localAppName = "rummyscore"

// newLocalCmd groups the offline commands. They run the same session
// engine the synced flows use, but against the device store only: one
// current game, persisted across invocations, no server required.
func newLocalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "local",
		Short: "Keep score offline on this device",
		Long: `Keep score without a server. The game lives in this device's data
directory and survives between commands; close it to start another.`,
	}

	cmd.AddCommand(newLocalNewCmd())
	cmd.AddCommand(newLocalShowCmd())
	cmd.AddCommand(newLocalScoreCmd())
	cmd.AddCommand(newLocalRenameCmd())
	cmd.AddCommand(newLocalAddPlayerCmd())
	cmd.AddCommand(newLocalRemovePlayerCmd())
	cmd.AddCommand(newLocalSettingsCmd())
	cmd.AddCommand(newLocalStandingsCmd())
	cmd.AddCommand(newLocalCloseCmd())

	return cmd
}

// withLocalGame builds a session controller over the device store, resumes
// the persisted game when asked, runs fn, and shuts the controller down.
func withLocalGame(resume bool, fn func(context.Context, *session.Controller) error) error {
	store, err := gdatastore.New(localAppName)
	if err != nil {
		return fmt.Errorf("opening local game store: %w", err)
	}

	c := session.NewController(store, nil, rosterService(), clock.New(), random.New(), cliLogger())
	defer c.Shutdown()

	ctx := context.Background()
	if resume {
		if _, err := c.Resume(ctx); err != nil {
			if errors.Is(err, model.ErrNoActiveGame) {
				return fmt.Errorf("no game on this device; start one with 'rummy local new'")
			}
			return err
		}
	}
	return fn(ctx, c)
}

func newLocalNewCmd() *cobra.Command {
	var pointValue float64
	var gstPercent float64

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Start a new game on this device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLocalGame(false, func(ctx context.Context, c *session.Controller) error {
				if _, err := c.NewGame(ctx); err != nil {
					return err
				}
				if cmd.Flags().Changed("point-value") {
					if err := c.SetPointValue(ctx, pointValue); err != nil {
						return fmt.Errorf("point value must be positive")
					}
				}
				if cmd.Flags().Changed("gst") {
					if err := c.SetGSTPercent(ctx, gstPercent); err != nil {
						return fmt.Errorf("gst percentage must not be negative")
					}
				}
				return printLocalState(c)
			})
		},
	}

	cmd.Flags().Float64Var(&pointValue, "point-value", 0, "Monetary value per point")
	cmd.Flags().Float64Var(&gstPercent, "gst", 0, "GST percentage applied to winnings")

	return cmd
}

func newLocalShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the device's current scoreboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLocalGame(true, func(ctx context.Context, c *session.Controller) error {
				return printLocalState(c)
			})
		},
	}
}

func newLocalScoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "score <player> <round> <score>",
		Short: "Record a player's score for a round (player and round are 1-based)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			player, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid player: %w", err)
			}
			round, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid round: %w", err)
			}
			score, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid score: %w", err)
			}

			return withLocalGame(true, func(ctx context.Context, c *session.Controller) error {
				if err := c.SetScore(ctx, player-1, round-1, score); err != nil {
					if errors.Is(err, model.ErrIndexOutOfRange) {
						return fmt.Errorf("player and round must be on the scoreboard")
					}
					return err
				}
				return printLocalState(c)
			})
		},
	}
}

func newLocalRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <player> <name>",
		Short: "Rename a player (1-based)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			player, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid player: %w", err)
			}

			return withLocalGame(true, func(ctx context.Context, c *session.Controller) error {
				if err := c.RenamePlayer(ctx, player-1, args[1]); err != nil {
					if errors.Is(err, model.ErrIndexOutOfRange) {
						return fmt.Errorf("player must be on the scoreboard")
					}
					return err
				}
				return printLocalState(c)
			})
		},
	}
}

func newLocalAddPlayerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-player [name]",
		Short: "Add a player to the game",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) > 0 {
				name = args[0]
			}

			return withLocalGame(true, func(ctx context.Context, c *session.Controller) error {
				if err := c.AddPlayer(ctx, name); err != nil {
					return err
				}
				return printLocalState(c)
			})
		},
	}
}

func newLocalRemovePlayerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove-player <position>",
		Short: "Remove a player by scoreboard position (1-based)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			position, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid position: %w", err)
			}

			return withLocalGame(true, func(ctx context.Context, c *session.Controller) error {
				if err := c.RemovePlayer(ctx, position-1); err != nil {
					if errors.Is(err, model.ErrIndexOutOfRange) {
						return fmt.Errorf("position must be on the scoreboard")
					}
					return err
				}
				return printLocalState(c)
			})
		},
	}
}

func newLocalSettingsCmd() *cobra.Command {
	var pointValue float64
	var gstPercent float64

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Update the game's monetary settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("point-value") && !cmd.Flags().Changed("gst") {
				return fmt.Errorf("nothing to change; pass --point-value and/or --gst")
			}

			return withLocalGame(true, func(ctx context.Context, c *session.Controller) error {
				if cmd.Flags().Changed("point-value") {
					if err := c.SetPointValue(ctx, pointValue); err != nil {
						return fmt.Errorf("point value must be positive")
					}
				}
				if cmd.Flags().Changed("gst") {
					if err := c.SetGSTPercent(ctx, gstPercent); err != nil {
						return fmt.Errorf("gst percentage must not be negative")
					}
				}
				return printLocalState(c)
			})
		},
	}

	cmd.Flags().Float64Var(&pointValue, "point-value", 0, "Monetary value per point")
	cmd.Flags().Float64Var(&gstPercent, "gst", 0, "GST percentage applied to winnings")

	return cmd
}

func newLocalStandingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "standings",
		Short: "Show the settlement for the device's game",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLocalGame(true, func(ctx context.Context, c *session.Controller) error {
				result, err := c.Standings()
				if err != nil {
					return err
				}
				snap, err := c.Snapshot()
				if err != nil {
					return err
				}

				standings := Standings{
					GameID:     string(c.GameID()),
					RoundLabel: snap.CurrentRoundLabel(),
					Settlement: Settlement{
						Entries:  make([]SettlementEntry, len(result.Entries)),
						TotalTax: result.TotalTax,
					},
				}
				for i, e := range result.Entries {
					standings.Settlement.Entries[i] = SettlementEntry{
						Name:          e.Name,
						DisplayNumber: e.DisplayNumber,
						Total:         e.Total,
						Gross:         e.Gross,
						Tax:           e.Tax,
						Net:           e.Net,
					}
				}

				NewOutput(cfg.Output).Print(standings)
				return nil
			})
		},
	}
}

func newLocalCloseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "close",
		Short: "End the device's game and clear its stored state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLocalGame(true, func(ctx context.Context, c *session.Controller) error {
				if err := c.Close(ctx); err != nil {
					return err
				}
				NewOutput(cfg.Output).PrintMessage("Game closed")
				return nil
			})
		},
	}
}

// printLocalState renders the controller's snapshot the way the synced
// game commands render a server response.
func printLocalState(c *session.Controller) error {
	snap, err := c.Snapshot()
	if err != nil {
		return err
	}

	players := make([]Player, len(snap.Players))
	for i, p := range snap.Players {
		scores := make([]int, len(p.Scores))
		copy(scores, p.Scores)
		players[i] = Player{Name: p.Name, Scores: scores, DisplayNumber: p.DisplayNumber}
	}

	NewOutput(cfg.Output).Print(GameState{
		GameID: string(c.GameID()),
		Snapshot: &Snapshot{
			NumPlayers: snap.NumPlayers,
			PointValue: snap.PointValue,
			GSTPercent: snap.GSTPercent,
			Players:    players,
		},
		RoundLabel: snap.CurrentRoundLabel(),
	})
	return nil
}
