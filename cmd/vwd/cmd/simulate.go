package cmd

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/leocagli/Human-vs-bots/internal/config"
	"github.com/leocagli/Human-vs-bots/internal/game"
	"github.com/leocagli/Human-vs-bots/internal/sim"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	winStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
)

func newSimulateCmd() *cobra.Command {
	var (
		turns       uint32
		strategy    string
		seed        int64
		proofPolicy string
		logLevel    string
	)

	c := &cobra.Command{
		Use:   "simulate",
		Short: "Play a full game against Clawbot locally",
		Long: `Play Vault Wars in process: a human strategy in slot 1 against Clawbot
in slot 2. Every turn goes through the session keeper and the relayer, with
sha256 commitments opened by their salt.

Human strategies:
  random          - pick uniformly each turn
  fixed:<action>  - always play attack, defend or vault

Examples:
  vwd simulate
  vwd simulate --turns 5 --human-strategy fixed:vault --seed 42`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			human, err := sim.ParseStrategy(strategy)
			if err != nil {
				return err
			}
			policy, err := game.ParseProofPolicy(proofPolicy)
			if err != nil {
				return err
			}
			if seed == 0 {
				seed = time.Now().UnixNano()
			}

			logCfg := config.Default()
			logCfg.LogLevel = logLevel
			logger, err := logCfg.NewLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			res, err := sim.Run(cmd.Context(), sim.Config{
				Turns:       turns,
				Human:       human,
				Seed:        seed,
				ProofPolicy: policy,
			}, logger)
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), human, seed, res)
			return nil
		},
	}

	c.Flags().Uint32Var(&turns, "turns", game.MaxTurns, "turns to play (at most 10)")
	c.Flags().StringVar(&strategy, "human-strategy", "random", "human strategy (random|fixed:<action>)")
	c.Flags().Int64Var(&seed, "seed", 0, "RNG seed (0 = random based on time)")
	c.Flags().StringVar(&proofPolicy, "proof-policy", string(game.ProofPolicyClear), "proof handling between turns (clear|keep)")
	c.Flags().StringVar(&logLevel, "log-level", "error", "log level for keeper and relayer output")
	return c
}

func printResult(w io.Writer, human sim.Strategy, seed int64, res sim.Result) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Turn", "Human", "Clawbot", "Δ Human", "Δ Bot", "Human", "Bot").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, tr := range res.Turns {
		t.Row(
			strconv.FormatUint(uint64(tr.Turn), 10),
			string(tr.HumanAction),
			string(tr.BotAction),
			signed(tr.HumanDelta),
			signed(tr.BotDelta),
			strconv.FormatInt(int64(tr.HumanScore), 10),
			strconv.FormatInt(int64(tr.BotScore), 10),
		)
	}

	fmt.Fprintf(w, "Vault Wars simulation  human=%s  seed=%d\n", human, seed)
	fmt.Fprintln(w, t.Render())
	fmt.Fprintf(w, "Final  human=%d  clawbot=%d  phase=%s\n", res.Final.Scores[0], res.Final.Scores[1], res.Final.Phase)
	switch res.Winner {
	case sim.HumanAddress:
		fmt.Fprintln(w, winStyle.Render("Winner: human"))
	case sim.ClawbotAddress:
		fmt.Fprintln(w, winStyle.Render("Winner: clawbot"))
	default:
		fmt.Fprintln(w, "Result: draw")
	}
}

func signed(d int32) string {
	if d > 0 {
		return "+" + strconv.FormatInt(int64(d), 10)
	}
	return strconv.FormatInt(int64(d), 10)
}
