package triathlon

import (
	"fmt"
	"math"
	"strings"

	"github.com/vovakirdan/tri-runner/internal/core"
	"github.com/vovakirdan/tri-runner/internal/runner"
)

// Layout rows
const (
	hudRows    = 2 // status line + sky
	footerRows = 1
)

// glyph is how an obstacle kind is drawn.
type glyph struct {
	r rune
	c core.Color
}

var obstacleGlyphs = map[runner.ObstacleKind]glyph{
	runner.KindBarge:              {'▓', core.ColorGray},
	runner.KindDebris:             {'*', core.ColorYellow},
	runner.KindCar:                {'█', core.ColorRed},
	runner.KindParkedCar:          {'█', core.ColorMagenta},
	runner.KindPedestrian:         {'☺', core.ColorYellow},
	runner.KindOncomingPedestrian: {'☻', core.ColorOrange},
	runner.KindBin:                {'▪', core.ColorGreen},
	runner.KindManhole:            {'o', core.ColorGray},
	runner.KindCrossingPedestrian: {'☺', core.ColorCyan},
}

// Player frames per discipline, indexed by Snapshot.Frame.
var playerFrames = map[runner.Discipline][]rune{
	runner.DisciplineSwim: {'≈', '~'},
	runner.DisciplineBike: {'◎', '○'},
	runner.DisciplineRun:  {'▲', '△', '▲', '▽'},
}

var groundPatterns = map[runner.Discipline]string{
	runner.DisciplineSwim: "~  ~ ~   ",
	runner.DisciplineBike: "-  -  -  ",
	runner.DisciplineRun:  ".   .  . ",
}

var groundColors = map[runner.Discipline]core.Color{
	runner.DisciplineSwim: core.ColorBlue,
	runner.DisciplineBike: core.ColorGray,
	runner.DisciplineRun:  core.ColorGray,
}

const skyline = "   ▁▂  ▃▁    ▂▅▂   ▁    ▃▃▁  "

// viewport maps world units to screen cells.
type viewport struct {
	top    int
	rows   int
	cols   int
	worldW float64
	worldH float64
}

func (v viewport) x(wx float64) int {
	return int(math.Floor(wx / v.worldW * float64(v.cols)))
}

func (v viewport) y(wy float64) int {
	return v.top + int(math.Floor(wy/v.worldH*float64(v.rows)))
}

// rect converts a world box to cells, keeping at least one cell each way.
func (v viewport) rect(b core.Box) core.Rect {
	x0, y0 := v.x(b.Left()), v.y(b.Top())
	x1, y1 := v.x(b.Right()), v.y(b.Bottom())
	return core.NewRect(x0, y0, core.Max(1, x1-x0), core.Max(1, y1-y0))
}

// Render draws the current run to the screen.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()
	if g.engine == nil {
		dst.DrawTextCentered(dst.Height()/2, "loading...", core.ColorGray)
		return
	}

	s := g.snap
	disc := s.Phase.Discipline
	vp := viewport{
		top:    hudRows,
		rows:   core.Max(1, dst.Height()-hudRows-footerRows),
		cols:   dst.Width(),
		worldW: g.cfg.Area.Width,
		worldH: g.cfg.Area.Height,
	}

	g.drawSky(dst, s)
	g.drawLanes(dst, vp, s, disc)

	for _, o := range s.Obstacles {
		g.drawObstacle(dst, vp, o)
	}
	g.drawPlayer(dst, vp, s, disc)
	g.drawHUD(dst, s)

	help := " ↑/↓ lane  → faster  ← brake  p pause  q quit "
	dst.DrawTextColored(0, dst.Height()-1, help, core.ColorGray)

	if s.Elapsed < g.bannerUntil && g.banner != "" && s.Running() {
		dst.DrawTextCentered(vp.top+1, fmt.Sprintf("== %s ==", strings.ToUpper(g.banner)), core.ColorBrightGreen)
	}
	if g.showStartHint(s) {
		dst.DrawTextCentered(vp.top+vp.rows/2, "Press → to speed up!", core.ColorYellow)
	}

	switch {
	case s.Status == runner.StatusGameOver:
		drawCenteredMessage(dst, "CRASHED",
			fmt.Sprintf("%.2f km in %s  |  Press R to restart", s.Distance/1000, runner.FormatTime(s.DisplaySeconds)))
	case s.Status == runner.StatusWon:
		drawCenteredMessage(dst, "FINISHED!",
			fmt.Sprintf("Time %s  |  Press R to restart", runner.FormatTime(s.DisplaySeconds)))
	case g.paused:
		drawCenteredMessage(dst, "PAUSED", "Press P to resume")
	}
}

// showStartHint reports whether the "speed up" hint is due: the player is
// still crawling in the first five seconds.
func (g *Game) showStartHint(s runner.Snapshot) bool {
	if !s.Running() || s.Elapsed >= 5 {
		return false
	}
	base := g.cfg.Phases[s.PhaseIndex].BaseSpeed
	return s.Speed < base*0.2
}

func (g *Game) drawSky(dst *core.Screen, s runner.Snapshot) {
	runes := []rune(skyline)
	n := len(runes)
	shift := int(math.Floor(-s.BackgroundOffset / 8))
	for x := 0; x < dst.Width(); x++ {
		r := runes[((x+shift)%n+n)%n]
		dst.SetColored(x, 1, r, core.ColorGray)
	}
}

func (g *Game) drawLanes(dst *core.Screen, vp viewport, s runner.Snapshot, disc runner.Discipline) {
	pattern := []rune(groundPatterns[disc])
	if len(pattern) == 0 {
		return
	}
	color := groundColors[disc]
	shift := int(math.Floor(-s.GroundOffset))
	n := len(pattern)
	for _, pct := range g.cfg.Lanes {
		y := vp.y(g.cfg.Area.Height * (1 - pct/100))
		for x := 0; x < dst.Width(); x++ {
			dst.SetColored(x, y, pattern[((x+shift)%n+n)%n], color)
		}
	}
}

func (g *Game) drawObstacle(dst *core.Screen, vp viewport, o runner.Obstacle) {
	gl, ok := obstacleGlyphs[o.Kind]
	if !ok {
		gl = glyph{'#', core.ColorWhite}
	}
	r := vp.rect(o.Box())
	for y := r.Y; y < r.Bottom(); y++ {
		if y < vp.top || y >= vp.top+vp.rows {
			continue
		}
		for x := r.X; x < r.Right(); x++ {
			dst.SetColored(x, y, gl.r, gl.c)
		}
	}
}

func (g *Game) drawPlayer(dst *core.Screen, vp viewport, s runner.Snapshot, disc runner.Discipline) {
	frames := playerFrames[disc]
	ch := '@'
	if len(frames) > 0 {
		ch = frames[s.Frame%len(frames)]
	}
	color := core.ColorBrightGreen
	if s.Status == runner.StatusGameOver {
		color = core.ColorRed
	}
	r := vp.rect(s.Hitbox)
	for y := r.Y; y < r.Bottom(); y++ {
		for x := r.X; x < r.Right(); x++ {
			dst.SetColored(x, y, ch, color)
		}
	}
}

func (g *Game) drawHUD(dst *core.Screen, s runner.Snapshot) {
	left := fmt.Sprintf(" %s  %.1f km left  %s ",
		strings.ToUpper(s.Phase.Name), s.Remaining/1000, runner.FormatTime(s.DisplaySeconds))
	dst.DrawTextColored(0, 0, left, core.ColorWhite)

	right := fmt.Sprintf(" %s %3.0f ", speedBar(s.SpeedStep, s.SpeedSteps), s.Speed)
	dst.DrawTextColored(dst.Width()-len([]rune(right)), 0, right, core.ColorCyan)

	if len(s.Diagnostics) > 0 {
		dst.DrawTextColored(len([]rune(left)), 0, "!", core.ColorOrange)
	}
}

// speedBar renders the speed step as filled and empty cells.
func speedBar(step, steps int) string {
	if steps <= 1 {
		return ""
	}
	var sb strings.Builder
	for i := 1; i < steps; i++ {
		if i <= step {
			sb.WriteRune('▮')
		} else {
			sb.WriteRune('▯')
		}
	}
	return sb.String()
}

// drawCenteredMessage draws a message box in the center of the screen.
func drawCenteredMessage(dst *core.Screen, title, subtitle string) {
	w := dst.Width()
	h := dst.Height()

	// Calculate box dimensions
	boxW := core.Max(len([]rune(title)), len([]rune(subtitle))) + 4
	boxH := 5
	boxX := (w - boxW) / 2
	boxY := (h - boxH) / 2

	// Draw box
	dst.DrawRect(core.NewRect(boxX, boxY, boxW, boxH), ' ', core.ColorDefault)
	dst.DrawBox(core.NewRect(boxX, boxY, boxW, boxH), core.ColorWhite)

	// Draw text
	dst.DrawTextColored(boxX+(boxW-len([]rune(title)))/2, boxY+1, title, core.ColorBrightGreen)
	dst.DrawTextColored(boxX+(boxW-len([]rune(subtitle)))/2, boxY+3, subtitle, core.ColorWhite)
}
