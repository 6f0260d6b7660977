package cmd

import (
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"

	"jup-swap/pkg/swap"
)

// narrator renders pipeline progress for humans on stderr
type narrator struct {
	s *spinner.Spinner
}

func newNarrator() *narrator {
	return &narrator{
		s: spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr)),
	}
}

func (n *narrator) spin(suffix string) {
	n.s.Suffix = suffix
	if !n.s.Active() {
		n.s.Start()
	}
}

func (n *narrator) done(c *color.Color, format string, args ...any) {
	n.s.Stop()
	c.Fprintf(os.Stderr, format+"\n", args...)
}

func (n *narrator) Emit(e swap.Event) {
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	switch e.State {
	case swap.StateQuoteRequested:
		n.spin(" Fetching quote...")
	case swap.StateQuoteReceived:
		n.done(green, "✓ Quote received: %v out, price impact %v%%", e.Fields["out_amount"], e.Fields["price_impact_pct"])
	case swap.StateNormalized:
		n.spin(" Building swap transaction...")
	case swap.StateBuilt:
		n.done(green, "✓ Transaction built")
		n.spin(" Submitting...")
	case swap.StateSubmitted:
		n.done(green, "✓ Submitted: %s", color.CyanString("%v", e.Fields["txid"]))
	case swap.StateVerifying:
		n.spin(" Waiting for confirmation...")
	case swap.StateConfirmed:
		n.done(green, "✓ Confirmed in slot %v", e.Fields["slot"])
	case swap.StateOnChainFailure, swap.StateTimeout, swap.StateFailed:
		n.done(red, "✗ %s", e.Message)
	}
}
