package term

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/oracle/camera"
	"github.com/pthm-cable/oracle/capture"
	"github.com/pthm-cable/oracle/components"
	"github.com/pthm-cable/oracle/driver"
)

// Viewer runs the frame loop against a terminal screen. Tab cycles modes,
// typing fills the question in FUTURE and PAST, Enter submits, Esc quits.
// In EVOCA the mouse is the hand and a held button is a fist.
type Viewer struct {
	screen  tcell.Screen
	driver  *driver.Driver
	pointer *capture.PointerDevice
	cam     *camera.Camera
	raster  *Rasterizer
	fps     int

	input      []rune
	cols, rows int
}

// NewViewer wraps an initialized screen. pointer may be nil when the hand
// comes from a replay.
func NewViewer(screen tcell.Screen, d *driver.Driver, pointer *capture.PointerDevice, cam *camera.Camera, fps int) *Viewer {
	if fps <= 0 {
		fps = 30
	}
	v := &Viewer{
		screen:  screen,
		driver:  d,
		pointer: pointer,
		cam:     cam,
		raster:  NewRasterizer(),
		fps:     fps,
	}
	v.resize()
	return v
}

// Run steps and draws until ctx is done, the user quits, or maxFrames
// frames have run (0 = unlimited).
func (v *Viewer) Run(ctx context.Context, maxFrames uint64) error {
	v.screen.EnableMouse()
	defer v.screen.DisableMouse()

	events := make(chan tcell.Event, 100)
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	ticker := time.NewTicker(time.Second / time.Duration(v.fps))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-events:
			if !v.HandleEvent(ev) {
				return nil
			}
		case <-ticker.C:
			v.driver.Step()
			v.cam.Update(1/float32(v.fps), v.driver.Mode().Morphing())
			v.Draw()
			if maxFrames > 0 && v.driver.Frame() >= maxFrames {
				return nil
			}
		}
	}
}

// HandleEvent applies one input event. It returns false when the user quit.
func (v *Viewer) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return v.handleKey(ev)
	case *tcell.EventMouse:
		v.handleMouse(ev)
	case *tcell.EventResize:
		v.screen.Sync()
		v.resize()
	}
	return true
}

func (v *Viewer) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyTab:
		v.driver.SetMode(nextMode(v.driver.Mode()))
		v.input = v.input[:0]
	case tcell.KeyEnter:
		if v.driver.Submit(string(v.input)) {
			v.input = v.input[:0]
		}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(v.input) > 0 {
			v.input = v.input[:len(v.input)-1]
		}
	case tcell.KeyLeft:
		v.cam.Orbit(-0.1, 0)
	case tcell.KeyRight:
		v.cam.Orbit(0.1, 0)
	case tcell.KeyUp:
		v.cam.ZoomBy(1.1)
	case tcell.KeyDown:
		v.cam.ZoomBy(1 / 1.1)
	case tcell.KeyRune:
		if v.driver.Mode().Morphing() && !v.driver.Loading() {
			v.input = append(v.input, ev.Rune())
		}
	}
	return true
}

func (v *Viewer) handleMouse(ev *tcell.EventMouse) {
	if v.pointer == nil || v.cols == 0 || v.rows < 2 {
		return
	}
	x, y := ev.Position()
	nx := (float64(x) + 0.5) / float64(v.cols)
	ny := (float64(y) + 0.5) / float64(v.rows-1)
	pressed := ev.Buttons()&tcell.Button1 != 0
	inView := x >= 0 && x < v.cols && y >= 0 && y < v.rows-1
	v.pointer.Update(nx, ny, pressed, inView)
}

// resize fits the camera to the screen. Terminal cells are about twice as
// tall as wide.
func (v *Viewer) resize() {
	v.cols, v.rows = v.screen.Size()
	v.cam.Resize(float32(v.cols), float32(v.rows*2))
}

// Draw renders the field and the status line.
func (v *Viewer) Draw() {
	v.screen.Clear()

	f := v.driver.Field()
	for _, c := range v.raster.Rasterize(f.Positions(), f.Colors(), f.Rotation(), v.cam, v.cols, v.rows-1) {
		v.screen.SetContent(c.X, c.Y, c.Glyph, nil, tcell.StyleDefault.Foreground(c.Color))
	}

	hand := v.driver.Hand()
	if hand.Detected {
		hx := int(hand.X * float64(v.cols))
		hy := int(hand.Y * float64(v.rows-1))
		glyph := 'o'
		if hand.Gesture == components.GestureClosedFist {
			glyph = '@'
		}
		v.screen.SetContent(hx, hy, glyph, nil, tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true))
	}

	v.drawText(0, v.rows-1, v.status(), tcell.StyleDefault.Reverse(true))
	v.screen.Show()
}

func (v *Viewer) status() string {
	mode := v.driver.Mode()
	line := fmt.Sprintf(" %s ", mode)
	switch {
	case !mode.Morphing():
		line += fmt.Sprintf("| camera %s | charge %3.0f%% | hold the button to charge, release to explode",
			v.driver.CameraStatus(), v.driver.Charge()*100)
	case v.driver.Loading():
		line += "| l'oracolo ascolta..."
	default:
		if msg, ok := v.driver.Message(); ok {
			line += fmt.Sprintf("| %s: %s ", msg.Keyword, msg.Message)
		}
		line += "| > " + string(v.input)
	}
	return line
}

func (v *Viewer) drawText(x, y int, text string, style tcell.Style) {
	for _, r := range text {
		if x >= v.cols {
			return
		}
		v.screen.SetContent(x, y, r, nil, style)
		x++
	}
	for ; x < v.cols; x++ {
		v.screen.SetContent(x, y, ' ', nil, style)
	}
}

func nextMode(m components.Mode) components.Mode {
	for i, mode := range components.Modes {
		if mode == m {
			return components.Modes[(i+1)%len(components.Modes)]
		}
	}
	return components.ModeFuture
}
