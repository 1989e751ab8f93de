package ui

import (
	"fmt"
	"strings"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/tanema/gween/ease"

	"github.com/pthm-cable/oracle/capture"
	"github.com/pthm-cable/oracle/components"
)

const maxQuestionLen = 120

// HUD is the immediate-mode overlay. It keeps only input and animation
// state; everything shown comes from State.
type HUD struct {
	renderer *Renderer
	width    int32
	height   int32

	input   string
	editing bool

	meter   *Easer // charge bar
	fade    *Easer // answer opacity
	keyword string // answer currently fading in
}

// NewHUD creates a HUD for the given screen size.
func NewHUD(width, height int32) *HUD {
	return &HUD{
		renderer: NewRenderer(),
		width:    width,
		height:   height,
		meter:    NewEaser(0, 0.15, ease.OutQuad),
		fade:     NewEaser(0, 1.2, ease.InOutSine),
	}
}

// Resize updates the screen size.
func (h *HUD) Resize(width, height int32) {
	h.width, h.height = width, height
}

// ClearInput empties the question box.
func (h *HUD) ClearInput() {
	h.input = ""
	h.editing = false
}

// Editing reports whether the question box has keyboard focus.
func (h *HUD) Editing() bool { return h.editing }

// Draw renders the HUD and returns what the user asked for this frame.
// dt is the frame time in seconds.
func (h *HUD) Draw(s State, dt float32) Actions {
	var act Actions

	act.Mode = h.drawModeButtons(s.Mode)
	h.drawCameraStatus(s)

	if s.Mode.Morphing() {
		h.drawAnswer(s, dt)
		if q := h.drawQuestion(s.Loading); q != "" {
			act.Submit = q
		}
	} else {
		h.drawEvoca(s, dt)
	}
	return act
}

func (h *HUD) drawModeButtons(active components.Mode) *components.Mode {
	const bw, bh, gap = 110, 32, 8
	x := float32(h.width)/2 - float32(len(components.Modes)*(bw+gap)-gap)/2
	y := float32(20)

	var picked *components.Mode
	for _, m := range components.Modes {
		label := m.String()
		if m == active {
			label = "[" + label + "]"
		}
		if gui.Button(rl.Rectangle{X: x, Y: y, Width: bw, Height: bh}, label) && m != active {
			mode := m
			picked = &mode
		}
		x += bw + gap
	}
	return picked
}

func (h *HUD) drawCameraStatus(s State) {
	if s.Mode != components.ModeEvoca {
		return
	}
	t := h.renderer.Theme
	x, y := t.Padding, h.height-t.LineHeight-t.Padding

	color := t.ValueColor
	text := s.Camera.String()
	switch s.Camera {
	case capture.StatusLoading:
		text = "loading hand tracker..."
	case capture.StatusError:
		color = t.ErrorColor
		text = "camera unavailable"
		if s.CameraErr != nil {
			text = fmt.Sprintf("camera unavailable: %v", s.CameraErr)
		}
	}
	h.renderer.DrawLabelValue(x, y, "camera", text, color)
}

// drawQuestion draws the question box and submit button. It returns the
// question when one was submitted.
func (h *HUD) drawQuestion(loading bool) string {
	const bw, bh = 420, 36
	x := float32(h.width)/2 - bw/2
	y := float32(h.height) - 90

	if loading {
		gui.Disable()
		h.editing = false
	}

	box := rl.Rectangle{X: x, Y: y, Width: bw - 110, Height: bh}
	submit := false
	if gui.TextBox(box, &h.input, maxQuestionLen, h.editing) {
		h.editing = !h.editing
		if !h.editing && rl.IsKeyPressed(rl.KeyEnter) {
			submit = true
		}
	}

	label := "CHIEDI"
	if loading {
		label = "..."
	}
	if gui.Button(rl.Rectangle{X: x + bw - 100, Y: y, Width: 100, Height: bh}, label) {
		submit = true
	}

	if loading {
		gui.Enable()
		return ""
	}
	if !submit {
		return ""
	}
	q := strings.TrimSpace(h.input)
	if q == "" {
		return ""
	}
	h.ClearInput()
	return q
}

func (h *HUD) drawAnswer(s State, dt float32) {
	t := h.renderer.Theme
	cx := h.width / 2

	if s.Loading {
		h.keyword = ""
		h.fade.Jump(0)
		h.renderer.DrawCentered("L'oracolo ascolta...", cx, h.height/2-20, t.HeaderFontSize, t.LabelColor, 0.8)
		return
	}
	if s.Keyword == "" {
		h.keyword = ""
		h.fade.Jump(0)
		return
	}
	if s.Keyword != h.keyword {
		h.keyword = s.Keyword
		h.fade.Jump(0)
		h.fade.Set(1)
	}
	alpha := h.fade.Update(dt)

	y := int32(80)
	h.renderer.DrawCentered(s.Keyword, cx, y, t.TitleFontSize, t.SectionHeader, alpha)
	h.renderer.DrawCentered(s.Message, cx, y+t.TitleFontSize+8, t.HeaderFontSize, t.ValueColor, alpha)
}

func (h *HUD) drawEvoca(s State, dt float32) {
	t := h.renderer.Theme
	h.meter.Set(float32(s.Charge))
	charge := h.meter.Update(dt)

	const w, ph = 300, 78
	x, y := h.width-w-t.Padding, h.height-ph-t.Padding
	h.renderer.DrawPanel(x, y, w, ph)

	ty := y + t.Padding
	ty = h.renderer.DrawChargeBar(x+t.Padding, ty, "carica", charge, w-2*t.Padding)
	rl.DrawText("Chiudi il pugno per caricare,", x+t.Padding, ty, t.FontSize-2, t.LabelColor)
	ty += t.LineHeight - 2
	rl.DrawText("apri la mano per liberare.", x+t.Padding, ty, t.FontSize-2, t.LabelColor)
}
