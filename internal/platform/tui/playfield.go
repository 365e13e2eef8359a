package tui

import (
	"fmt"
	"math"

	"github.com/vovakirdan/tui-rhythm/internal/beatmap"
	"github.com/vovakirdan/tui-rhythm/internal/core"
	"github.com/vovakirdan/tui-rhythm/internal/gameplay"
	"github.com/vovakirdan/tui-rhythm/internal/scoring"
)

// HUD rows reserved above the playfield.
const hudRows = 2

// Terminal cells are roughly twice as tall as wide; the horizontal scale
// is doubled relative to the vertical one so circles look round.
const cellAspect = 2.0

// playfieldView maps playfield coordinates onto a region of the screen.
type playfieldView struct {
	offsetX, offsetY int
	scaleX, scaleY   float64
}

func newPlayfieldView(w, h int) playfieldView {
	availW := w - 2
	availH := h - hudRows - 2
	if availW < 1 {
		availW = 1
	}
	if availH < 1 {
		availH = 1
	}

	// Fit 512x384 preserving aspect (with cell correction).
	scaleY := float64(availH) / core.PlayfieldH
	scaleX := scaleY * cellAspect
	if needed := scaleX * core.PlayfieldW; needed > float64(availW) {
		scaleX = float64(availW) / core.PlayfieldW
		scaleY = scaleX / cellAspect
	}

	usedW := int(scaleX * core.PlayfieldW)
	usedH := int(scaleY * core.PlayfieldH)
	return playfieldView{
		offsetX: 1 + (availW-usedW)/2,
		offsetY: hudRows + 1 + (availH-usedH)/2,
		scaleX:  scaleX,
		scaleY:  scaleY,
	}
}

func (v playfieldView) cell(p core.Vec) (int, int) {
	return v.offsetX + int(p.X*v.scaleX), v.offsetY + int(p.Y*v.scaleY)
}

// drawFrame renders one session frame into the screen buffer.
func drawFrame(dst *core.Screen, f gameplay.Frame, title string) {
	dst.Clear()
	view := newPlayfieldView(dst.Width(), dst.Height())

	drawHUD(dst, f, title)

	switch f.State {
	case gameplay.StateCompleted, gameplay.StateFailed:
		drawResults(dst, f)
		return
	case gameplay.StateLoading:
		dst.DrawTextCentered(dst.Height()/2, "loading audio...")
		return
	}

	// Later objects first so the next hit draws on top.
	for i := len(f.Objects) - 1; i >= 0; i-- {
		drawObject(dst, view, f.Objects[i], f.Kiai)
	}

	if f.HasJudgment {
		x, y := view.cell(f.JudgmentPos)
		dst.DrawTextColored(x-1, y-1, judgmentText(f.Judgment), judgmentColor(f.Judgment))
	}

	// Cursor on top of everything.
	cx, cy := view.cell(f.Cursor)
	dst.SetColored(cx, cy, '+', core.ColorBrightWhite)

	if f.CanSkip {
		dst.DrawTextCentered(dst.Height()-2, "press space to skip")
	}
	if f.State == gameplay.StatePaused {
		drawPauseOverlay(dst)
	}
}

func drawHUD(dst *core.Screen, f gameplay.Frame, title string) {
	dst.DrawText(1, 0, title)
	right := fmt.Sprintf("%08d  %dx  %5.2f%%", f.Score, f.Combo, f.Accuracy)
	dst.DrawText(dst.Width()-len(right)-1, 0, right)

	// Health bar across the second row.
	barW := dst.Width() - 2
	filled := int(f.Health / scoring.StartingHealth * float64(barW))
	color := core.ColorBrightGreen
	if f.Health < 50 {
		color = core.ColorBrightYellow
	}
	if f.Health < 25 {
		color = core.ColorBrightRed
	}
	for x := 0; x < barW; x++ {
		r := '─'
		c := core.ColorGray
		if x < filled {
			r = '━'
			c = color
		}
		dst.SetColored(1+x, 1, r, c)
	}
}

func drawObject(dst *core.Screen, view playfieldView, obj gameplay.ObjectFrame, kiai bool) {
	if obj.Opacity <= 0 {
		return
	}
	color := core.ComboColor(obj.ComboColor)
	if obj.Opacity < 0.4 {
		color = core.ColorGray
	}
	x, y := view.cell(obj.Pos)

	switch obj.Kind {
	case beatmap.KindSpinner:
		drawSpinner(dst, view, obj, color)
		return

	case beatmap.KindSlider:
		// Body first so the head covers it.
		for _, p := range obj.Points {
			px, py := view.cell(p)
			if dst.Get(px, py) == ' ' {
				dst.SetColored(px, py, '·', core.ColorGray)
			}
		}
		if obj.BallActive {
			bx, by := view.cell(obj.Ball)
			dst.SetColored(bx, by, '●', core.ColorBrightWhite)
		}
	}

	if obj.Approach > 0 {
		drawApproachRing(dst, view, obj, color)
	}

	head := '◉'
	if kiai {
		head = '◈'
	}
	dst.SetColored(x, y, head, color)
	if obj.ComboNumber > 0 && obj.ComboNumber < 10 && !obj.Judged {
		dst.SetColored(x+1, y, rune('0'+obj.ComboNumber), color)
	}
}

// drawApproachRing draws a shrinking ring of dots around an upcoming
// object. The ring radius runs from three circle radii down to one.
func drawApproachRing(dst *core.Screen, view playfieldView, obj gameplay.ObjectFrame, color core.Color) {
	r := obj.Radius * (1 + 2*obj.Approach)
	for i := 0; i < 8; i++ {
		angle := float64(i) / 8 * 2 * math.Pi
		p := core.Vec{
			X: obj.Pos.X + math.Cos(angle)*r,
			Y: obj.Pos.Y + math.Sin(angle)*r,
		}
		x, y := view.cell(p)
		if dst.Get(x, y) == ' ' {
			dst.SetColored(x, y, '·', color)
		}
	}
}

func drawSpinner(dst *core.Screen, view playfieldView, obj gameplay.ObjectFrame, color core.Color) {
	x, y := view.cell(obj.Pos)
	glyphs := []rune{'|', '/', '-', '\\'}
	g := glyphs[int(obj.Approach*16)%len(glyphs)]
	dst.SetColored(x, y, '◎', color)
	dst.SetColored(x-2, y, g, color)
	dst.SetColored(x+2, y, g, color)
	dst.DrawTextCentered(y+2, "spin!")
}

func judgmentText(j scoring.Judgment) string {
	if j == scoring.JudgmentMiss {
		return "X"
	}
	return j.String()
}

func judgmentColor(j scoring.Judgment) core.Color {
	switch j {
	case scoring.JudgmentPerfect:
		return core.ColorBrightCyan
	case scoring.JudgmentGreat:
		return core.ColorBrightGreen
	case scoring.JudgmentGood:
		return core.ColorBrightYellow
	default:
		return core.ColorBrightRed
	}
}

func drawPauseOverlay(dst *core.Screen) {
	mid := dst.Height() / 2
	dst.DrawTextCentered(mid-1, "── paused ──")
	dst.DrawTextCentered(mid, "p resume · r retry · q quit")
}

// drawResults renders the end-of-run screen. Failed runs show no grade.
func drawResults(dst *core.Screen, f gameplay.Frame) {
	mid := dst.Height() / 2

	if f.State == gameplay.StateFailed {
		dst.DrawTextCentered(mid-3, "FAILED")
	} else {
		dst.DrawTextCentered(mid-3, fmt.Sprintf("grade  %s", f.Grade))
	}

	dst.DrawTextCentered(mid-1, fmt.Sprintf("score     %d", f.Score))
	dst.DrawTextCentered(mid, fmt.Sprintf("accuracy  %.2f%%", f.Accuracy))
	dst.DrawTextCentered(mid+1, fmt.Sprintf("max combo %dx", f.MaxCombo))
	dst.DrawTextCentered(mid+2, fmt.Sprintf("300:%d  100:%d  50:%d  miss:%d",
		f.Counts.Perfect, f.Counts.Great, f.Counts.Good, f.Counts.Miss))
	dst.DrawTextCentered(mid+4, "r retry · q quit")
}
