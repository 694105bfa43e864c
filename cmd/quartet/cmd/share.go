package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/quartetgames/quartet/internal/game"
	"github.com/quartetgames/quartet/internal/share"
)

var (
	shareDate   string
	shareQR     bool
	shareCard   string
	shareQRFile string
)

var shareCmd = &cobra.Command{
	Use:   "share <game>",
	Short: "Print the share text for a finished puzzle",
	Long: `Print the spoiler-free share text for a puzzle you have finished.

--qr adds a terminal QR code linking to the puzzle; --card and
--qr-png write PNG files for richer sharing.`,
	Args: cobra.ExactArgs(1),
	RunE: runShare,
}

func init() {
	shareCmd.Flags().StringVar(&shareDate, "date", "", "puzzle date (YYYY-MM-DD, default today)")
	shareCmd.Flags().BoolVar(&shareQR, "qr", false, "print a QR code for the puzzle link")
	shareCmd.Flags().StringVar(&shareCard, "card", "", "write a share card PNG to this path")
	shareCmd.Flags().StringVar(&shareQRFile, "qr-png", "", "write a QR code PNG to this path")
	rootCmd.AddCommand(shareCmd)
}

func runShare(cmd *cobra.Command, args []string) error {
	kind, err := game.ParseKind(args[0])
	if err != nil {
		return err
	}
	date := game.Today()
	if shareDate != "" {
		if date, err = game.ParseDate(shareDate); err != nil {
			return err
		}
	}

	deps, err := buildDeps()
	if err != nil {
		return err
	}
	defer deps.Progress.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	entry, err := deps.Progress.Load(ctx, kind, date)
	if err != nil {
		return fmt.Errorf("reading progress: %w", err)
	}
	if entry == nil || entry.Result == nil {
		return fmt.Errorf("no finished %s puzzle for %s", kind.DisplayName(), date)
	}
	res := *entry.Result

	fmt.Println(share.Format(res))

	if shareQR {
		qr, err := share.QR(kind, date)
		if err != nil {
			return fmt.Errorf("rendering QR code: %w", err)
		}
		fmt.Println(qr)
	}

	if shareQRFile != "" {
		png, err := share.QRPNG(kind, date, 256)
		if err != nil {
			return fmt.Errorf("rendering QR PNG: %w", err)
		}
		if err := os.WriteFile(shareQRFile, png, 0644); err != nil {
			return fmt.Errorf("writing QR PNG: %w", err)
		}
		fmt.Fprintf(os.Stderr, "wrote %s\n", shareQRFile)
	}

	if shareCard != "" {
		// The card draws the Mini grid silhouette when the record is at
		// hand; a missing record still yields a text-only card.
		rec, err := deps.Catalog.ByDate(ctx, kind, date)
		if err != nil {
			rec = nil
		}
		png, err := share.Card(res, rec)
		if err != nil {
			return fmt.Errorf("rendering share card: %w", err)
		}
		if err := os.WriteFile(shareCard, png, 0644); err != nil {
			return fmt.Errorf("writing share card: %w", err)
		}
		fmt.Fprintf(os.Stderr, "wrote %s\n", shareCard)
	}
	return nil
}
