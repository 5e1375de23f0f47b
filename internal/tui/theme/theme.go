// Package theme defines the color themes of the subtrack TUI.
package theme

import (
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme assigns colors to the roles used by the TUI.
type Theme struct {
	Name string

	Background lipgloss.Color
	Surface    lipgloss.Color
	// SurfaceHover marks the selected list row and active tab.
	SurfaceHover lipgloss.Color
	Border       lipgloss.Color
	BorderAccent lipgloss.Color

	TextDim     lipgloss.Color
	TextMuted   lipgloss.Color
	TextPrimary lipgloss.Color

	Accent       lipgloss.Color
	AccentBright lipgloss.Color

	Green  lipgloss.Color
	Orange lipgloss.Color
	Red    lipgloss.Color
	Blue   lipgloss.Color
	Yellow lipgloss.Color
	Cyan   lipgloss.Color
}

// Default is the theme used when none is configured.
const Default = "flexoki-dark"

// Active is the currently selected theme.
var Active = registry[Default]

var registry = map[string]Theme{
	"flexoki-dark": {
		Name:         "flexoki-dark",
		Background:   lipgloss.Color("#100F0F"),
		Surface:      lipgloss.Color("#1C1B1A"),
		SurfaceHover: lipgloss.Color("#282726"),
		Border:       lipgloss.Color("#403E3C"),
		BorderAccent: lipgloss.Color("#3AA99F"),
		TextDim:      lipgloss.Color("#575653"),
		TextMuted:    lipgloss.Color("#878580"),
		TextPrimary:  lipgloss.Color("#FFFCF0"),
		Accent:       lipgloss.Color("#3AA99F"),
		AccentBright: lipgloss.Color("#5BC8BE"),
		Green:        lipgloss.Color("#879A39"),
		Orange:       lipgloss.Color("#DA702C"),
		Red:          lipgloss.Color("#D14D41"),
		Blue:         lipgloss.Color("#4385BE"),
		Yellow:       lipgloss.Color("#D0A215"),
		Cyan:         lipgloss.Color("#24837B"),
	},
	"catppuccin-mocha": {
		Name:         "catppuccin-mocha",
		Background:   lipgloss.Color("#1E1E2E"),
		Surface:      lipgloss.Color("#313244"),
		SurfaceHover: lipgloss.Color("#45475A"),
		Border:       lipgloss.Color("#585B70"),
		BorderAccent: lipgloss.Color("#89B4FA"),
		TextDim:      lipgloss.Color("#6C7086"),
		TextMuted:    lipgloss.Color("#A6ADC8"),
		TextPrimary:  lipgloss.Color("#CDD6F4"),
		Accent:       lipgloss.Color("#89B4FA"),
		AccentBright: lipgloss.Color("#B4D0FB"),
		Green:        lipgloss.Color("#A6E3A1"),
		Orange:       lipgloss.Color("#FAB387"),
		Red:          lipgloss.Color("#F38BA8"),
		Blue:         lipgloss.Color("#89B4FA"),
		Yellow:       lipgloss.Color("#F9E2AF"),
		Cyan:         lipgloss.Color("#94E2D5"),
	},
	"tokyo-night": {
		Name:         "tokyo-night",
		Background:   lipgloss.Color("#1A1B26"),
		Surface:      lipgloss.Color("#24283B"),
		SurfaceHover: lipgloss.Color("#343A52"),
		Border:       lipgloss.Color("#565F89"),
		BorderAccent: lipgloss.Color("#7AA2F7"),
		TextDim:      lipgloss.Color("#565F89"),
		TextMuted:    lipgloss.Color("#A9B1D6"),
		TextPrimary:  lipgloss.Color("#C0CAF5"),
		Accent:       lipgloss.Color("#7AA2F7"),
		AccentBright: lipgloss.Color("#A9C1FF"),
		Green:        lipgloss.Color("#9ECE6A"),
		Orange:       lipgloss.Color("#FF9E64"),
		Red:          lipgloss.Color("#F7768E"),
		Blue:         lipgloss.Color("#7AA2F7"),
		Yellow:       lipgloss.Color("#E0AF68"),
		Cyan:         lipgloss.Color("#7DCFFF"),
	},
	"terminal": {
		Name:         "terminal",
		Background:   lipgloss.Color("0"),
		Surface:      lipgloss.Color("0"),
		SurfaceHover: lipgloss.Color("8"),
		Border:       lipgloss.Color("8"),
		BorderAccent: lipgloss.Color("6"),
		TextDim:      lipgloss.Color("8"),
		TextMuted:    lipgloss.Color("7"),
		TextPrimary:  lipgloss.Color("15"),
		Accent:       lipgloss.Color("6"),
		AccentBright: lipgloss.Color("14"),
		Green:        lipgloss.Color("2"),
		Orange:       lipgloss.Color("3"),
		Red:          lipgloss.Color("1"),
		Blue:         lipgloss.Color("4"),
		Yellow:       lipgloss.Color("3"),
		Cyan:         lipgloss.Color("6"),
	},
}

// Names returns the registered theme names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the theme called name, ignoring case.
func Lookup(name string) (Theme, bool) {
	t, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	return t, ok
}

// SetActive switches to the theme called name. Unknown names select the
// default theme and report false.
func SetActive(name string) bool {
	t, ok := Lookup(name)
	if !ok {
		t = registry[Default]
	}
	Active = t
	return ok
}
