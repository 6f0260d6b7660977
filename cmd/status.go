package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/spf13/cobra"

	"jup-swap/pkg/retry"
	"jup-swap/pkg/types"
)

var (
	watchStatus   bool
	watchInterval int
)

var statusCmd = &cobra.Command{
	Use:   "status <txid>",
	Short: "Check whether a transaction has been confirmed",
	Long: `Poll the chain for a transaction using the configured confirmation budget.

Examples:
  jup-swap status 5wHu1qwD7q4...
  jup-swap status 5wHu1qwD7q4... --watch
  jup-swap status 5wHu1qwD7q4... --watch --interval 10`,
	Args: cobra.ExactArgs(1),
	Run:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().BoolVarP(&watchStatus, "watch", "w", false, "Keep polling until the transaction is confirmed or failed")
	statusCmd.Flags().IntVar(&watchInterval, "interval", 5, "Seconds between poll rounds (when watching)")
}

func runStatus(cmd *cobra.Command, args []string) {
	txid := args[0]
	jsonOutput, _ := cmd.Flags().GetBool("json")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	verifier := newVerifier(cfg, rpc.New(cfg.RPC.URL))

	if !watchStatus {
		status := checkStatus(ctx, verifier, txid, jsonOutput)
		printStatus(status, txid, jsonOutput)
		return
	}

	if !jsonOutput {
		fmt.Fprintf(os.Stderr, "\nWatching transaction %s\n", color.CyanString(txid))
		fmt.Fprintf(os.Stderr, "Checking every %d seconds. Press Ctrl+C to stop.\n\n", watchInterval)
	}

	for {
		status := checkStatus(ctx, verifier, txid, jsonOutput)
		if status.IsTerminal() || ctx.Err() != nil {
			printStatus(status, txid, jsonOutput)
			return
		}
		if !jsonOutput {
			fmt.Fprintf(os.Stderr, "  %s still %s after %d polls\n", time.Now().Format("15:04:05"), getColoredStatus(status.State), status.Attempts)
		}
		if err := retry.Sleep(ctx, time.Duration(watchInterval)*time.Second); err != nil {
			printStatus(status, txid, jsonOutput)
			return
		}
	}
}

type statusVerifier interface {
	Verify(ctx context.Context, txid string) types.ConfirmationStatus
}

func checkStatus(ctx context.Context, v statusVerifier, txid string, jsonOutput bool) types.ConfirmationStatus {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	if !jsonOutput {
		s.Suffix = " Checking transaction status..."
		s.Start()
	}

	status := v.Verify(ctx, txid)
	if !jsonOutput {
		s.Stop()
	}
	return status
}

func printStatus(status types.ConfirmationStatus, txid string, jsonOutput bool) {
	if jsonOutput {
		printJSON(struct {
			TxID string `json:"txid"`
			types.ConfirmationStatus
		}{txid, status})
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 70))
	color.Green("                     TRANSACTION STATUS")
	fmt.Println(strings.Repeat("=", 70))

	fmt.Printf("\n  Transaction: %s\n", color.CyanString(txid))
	fmt.Printf("  Status:      %s\n", getColoredStatus(status.State))
	fmt.Printf("  Polls:       %d\n", status.Attempts)
	if status.Slot != 0 {
		fmt.Printf("  Slot:        %d\n", status.Slot)
	}
	if status.Detail != "" {
		fmt.Printf("  Error:       %s\n", color.RedString(status.Detail))
	}

	fmt.Println("\n" + strings.Repeat("=", 70) + "\n")
}

func getColoredStatus(state types.ConfirmationState) string {
	s := strings.ToUpper(string(state))

	switch state {
	case types.ConfirmationConfirmed:
		return color.GreenString(s)
	case types.ConfirmationPending, types.ConfirmationTimeout:
		return color.YellowString(s)
	case types.ConfirmationFailed:
		return color.RedString(s)
	default:
		return s
	}
}
