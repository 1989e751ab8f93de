// Package ui draws the oracle HUD: mode buttons, the question box, the
// answer, the charge meter and the camera status.
package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/oracle/capture"
	"github.com/pthm-cable/oracle/components"
)

// State is what the HUD shows for one frame.
type State struct {
	Mode    components.Mode
	Loading bool

	// Answer, empty Keyword when there is none
	Keyword string
	Message string

	Charge float64
	Hand   components.HandSample

	Camera    capture.Status
	CameraErr error
}

// Actions are the user's requests from one frame of HUD input.
type Actions struct {
	Mode   *components.Mode // non-nil when a mode button was pressed
	Submit string           // non-empty when a question was submitted
}

// Theme holds UI styling constants.
type Theme struct {
	PanelBg        rl.Color
	PanelBorder    rl.Color
	SectionHeader  rl.Color
	LabelColor     rl.Color
	ValueColor     rl.Color
	BarBg          rl.Color
	BarFillLow     rl.Color
	BarFillHigh    rl.Color
	ErrorColor     rl.Color
	Padding        int32
	LineHeight     int32
	LabelWidth     int32
	BarHeight      int32
	FontSize       int32
	HeaderFontSize int32
	TitleFontSize  int32
}

// DefaultTheme returns the default UI theme.
func DefaultTheme() Theme {
	return Theme{
		PanelBg:        rl.Color{R: 10, G: 10, B: 14, A: 200},
		PanelBorder:    rl.Color{R: 60, G: 60, B: 80, A: 255},
		SectionHeader:  rl.Color{R: 220, G: 200, B: 140, A: 255},
		LabelColor:     rl.LightGray,
		ValueColor:     rl.RayWhite,
		BarBg:          rl.Color{R: 40, G: 40, B: 40, A: 255},
		BarFillLow:     rl.Color{R: 80, G: 120, B: 255, A: 255},
		BarFillHigh:    rl.Color{R: 255, G: 90, B: 200, A: 255},
		ErrorColor:     rl.Color{R: 230, G: 90, B: 90, A: 255},
		Padding:        10,
		LineHeight:     18,
		LabelWidth:     70,
		BarHeight:      12,
		FontSize:       14,
		HeaderFontSize: 16,
		TitleFontSize:  32,
	}
}
