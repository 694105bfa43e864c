package share

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"

	"github.com/quartetgames/quartet/internal/game"
)

const (
	cardWidth  = 600
	cardHeight = 340
)

var (
	cardBg    = color.RGBA{R: 24, G: 25, B: 38, A: 255}
	cardFg    = color.RGBA{R: 235, G: 236, B: 240, A: 255}
	cardMuted = color.RGBA{R: 148, G: 152, B: 166, A: 255}
	cellGreen = color.RGBA{R: 106, G: 176, B: 76, A: 255}
	cellRed   = color.RGBA{R: 214, G: 77, B: 77, A: 255}
	cellDark  = color.RGBA{R: 44, G: 46, B: 60, A: 255}
	cellBlack = color.RGBA{R: 12, G: 12, B: 18, A: 255}
)

var (
	faceOnce  sync.Once
	titleFace font.Face
	bodyFace  font.Face
	faceErr   error
)

func loadFaces() {
	bold, err := truetype.Parse(gobold.TTF)
	if err != nil {
		faceErr = fmt.Errorf("parsing bold font: %w", err)
		return
	}
	regular, err := truetype.Parse(goregular.TTF)
	if err != nil {
		faceErr = fmt.Errorf("parsing regular font: %w", err)
		return
	}
	titleFace = truetype.NewFace(bold, &truetype.Options{Size: 28, DPI: 72})
	bodyFace = truetype.NewFace(regular, &truetype.Options{Size: 17, DPI: 72})
}

// Card renders a PNG result card. The record supplies layout detail the
// result alone cannot, such as the Mini grid's black squares; a nil
// record falls back to the generic square row.
func Card(res game.Result, rec *game.PuzzleRecord) ([]byte, error) {
	faceOnce.Do(loadFaces)
	if faceErr != nil {
		return nil, faceErr
	}

	img := image.NewRGBA(image.Rect(0, 0, cardWidth, cardHeight))
	draw.Draw(img, img.Bounds(), &image.Uniform{cardBg}, image.Point{}, draw.Src)

	drawText(img, titleFace, 32, 56, cardFg,
		fmt.Sprintf("%s #%d", res.Kind.DisplayName(), res.Number))
	drawText(img, bodyFace, 32, 84, cardMuted, res.Date.Short())

	drawOutcome(img, res, rec)

	stats := fmt.Sprintf("Time %s   Mistakes %d", FormatElapsed(res.ElapsedMs), res.Mistakes)
	if res.HintsUsed > 0 {
		stats += fmt.Sprintf("   Hints %d", res.HintsUsed)
	}
	drawText(img, bodyFace, 32, cardHeight-56, cardFg, stats)
	drawText(img, bodyFace, 32, cardHeight-28, cardMuted, footerToken)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding card: %w", err)
	}
	return buf.Bytes(), nil
}

func drawText(dst draw.Image, face font.Face, x, y int, col color.Color, text string) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

// drawOutcome paints the kind-specific center piece.
func drawOutcome(img *image.RGBA, res game.Result, rec *game.PuzzleRecord) {
	const top = 110

	if res.Kind == game.Mini && rec != nil && rec.Mini != nil {
		drawMiniGrid(img, res, rec.Mini, 32, top)
		return
	}

	fill := cellGreen
	if !res.Won {
		fill = cellRed
	}
	cells := 4
	solved := res.CorrectCount
	if res.Kind == game.Mini || res.Kind == game.Cryptic {
		cells = 1
		if res.Won {
			solved = 1
		}
	}
	const size, gap = 44, 10
	for i := 0; i < cells; i++ {
		col := cellDark
		if i < solved {
			col = fill
		}
		x := 32 + i*(size+gap)
		fillRect(img, x, top, size, size, col)
	}
}

// drawMiniGrid mirrors the puzzle's black-square layout.
func drawMiniGrid(img *image.RGBA, res game.Result, mini *game.MiniPayload, x, y int) {
	const size, gap = 26, 4
	fill := cellGreen
	if !res.Won {
		fill = cellDark
	}
	for r := 0; r < game.MiniSize; r++ {
		for c := 0; c < game.MiniSize; c++ {
			col := fill
			if mini.IsBlack(r, c) {
				col = cellBlack
			}
			fillRect(img, x+c*(size+gap), y+r*(size+gap), size, size, col)
		}
	}
}

func fillRect(img *image.RGBA, x, y, w, h int, col color.Color) {
	draw.Draw(img, image.Rect(x, y, x+w, y+h), &image.Uniform{col}, image.Point{}, draw.Src)
}
