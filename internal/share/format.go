// Package share turns a finished session into shareable artifacts: a
// plain-text summary, a PNG result card, and a QR code for the deep
// link. The text output is byte-for-byte stable for identical results.
package share

import (
	"fmt"
	"strings"

	"github.com/quartetgames/quartet/internal/access"
	"github.com/quartetgames/quartet/internal/game"
)

// baseURL anchors deep links in share output.
const baseURL = "https://quartet.games"

// footerToken closes every share string; clients use it to recognize
// pasted results.
const footerToken = "#quartet"

// Format renders the canonical share text for a result. Identical
// results produce identical strings on every platform; nothing in the
// output spoils the puzzle content.
func Format(res game.Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s #%d · %s\n", res.Kind.DisplayName(), res.Number, res.Date.Short())
	b.WriteString(glyphRow(res))
	b.WriteByte('\n')

	fmt.Fprintf(&b, "Time %s · Mistakes %d", FormatElapsed(res.ElapsedMs), res.Mistakes)
	if res.HintsUsed > 0 {
		fmt.Fprintf(&b, " · Hints %d", res.HintsUsed)
		if len(res.HintedAt) > 0 {
			fmt.Fprintf(&b, " (%s)", strings.Join(res.HintedAt, ", "))
		}
	}
	b.WriteByte('\n')

	b.WriteString(deepURL(res.Kind, res.Date))
	b.WriteByte('\n')
	b.WriteString(footerToken)
	return b.String()
}

// deepURL is the absolute deep link for one puzzle.
func deepURL(kind game.Kind, date game.Date) string {
	return baseURL + access.DeepLink(kind, date)
}

// FormatElapsed renders milliseconds as M:SS.
func FormatElapsed(ms int64) string {
	total := ms / 1000
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// glyphRow is the kind-specific outcome row. Results carry counts, not
// move-by-move history, so the rows encode solved counts and terminal
// state only.
func glyphRow(res game.Result) string {
	switch res.Kind {
	case game.Tandem, game.Reel:
		// One square per pair or group.
		var b strings.Builder
		for i := 0; i < 4; i++ {
			if i < res.CorrectCount {
				b.WriteString("\U0001F7E9") // green square
			} else {
				b.WriteString("⬛") // black square
			}
		}
		return b.String()
	case game.Mini:
		switch {
		case res.Won:
			return strings.Repeat("\U0001F7E9", 5)
		case res.LossMode == game.LossHardModeTimeout:
			return strings.Repeat("\U0001F7E5", 5) // red squares
		default:
			return strings.Repeat("⬛", 5)
		}
	case game.Cryptic:
		if !res.Won {
			return "⬛"
		}
		// One circle per check, capped so serial guessers stay shareable.
		checks := res.Mistakes + 1
		if checks > 8 {
			return strings.Repeat("\U0001F7E2", 8) + "+"
		}
		return strings.Repeat("\U0001F7E2", checks)
	}
	return ""
}
