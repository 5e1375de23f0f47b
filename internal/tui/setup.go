package tui

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/text/language"

	"github.com/theirongolddev/subtrack/internal/config"
	"github.com/theirongolddev/subtrack/internal/tui/theme"
)

// SetupValues holds the answers of the setup wizard.
type SetupValues struct {
	ServerURL string
	Token     string
	Theme     string
	Locale    string
	Budget    string
}

// SetupValuesFrom pre-fills the wizard from cfg.
func SetupValuesFrom(cfg config.Config) SetupValues {
	v := SetupValues{
		ServerURL: cfg.General.ServerURL,
		Token:     cfg.General.Token,
		Theme:     cfg.Appearance.Theme,
		Locale:    cfg.Display.Locale,
	}
	if cfg.Budget.Monthly != nil {
		v.Budget = fmt.Sprintf("%.2f", *cfg.Budget.Monthly)
	}
	return v
}

// Apply writes the answers into cfg.
func (v SetupValues) Apply(cfg *config.Config) error {
	cfg.General.ServerURL = strings.TrimSpace(v.ServerURL)
	cfg.General.Token = strings.TrimSpace(v.Token)
	cfg.Appearance.Theme = v.Theme
	cfg.Display.Locale = strings.TrimSpace(v.Locale)

	cfg.Budget.Monthly = nil
	if b := strings.TrimSpace(v.Budget); b != "" {
		f, err := strconv.ParseFloat(b, 64)
		if err != nil || f <= 0 {
			return fmt.Errorf("budget %q must be a positive number", b)
		}
		cfg.Budget.Monthly = &f
	}
	return cfg.Validate()
}

// NewSetupForm builds the first-run wizard bound to vals.
func NewSetupForm(vals *SetupValues) *huh.Form {
	themeOpts := make([]huh.Option[string], 0)
	for _, name := range theme.Names() {
		themeOpts = append(themeOpts, huh.NewOption(name, name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to subtrack").
				Description("Track recurring subscriptions and sync them\nacross devices with a share token."),
			huh.NewInput().
				Title("Token server").
				Description("Where lists are stored and fetched").
				Value(&vals.ServerURL).
				Validate(validateServerURL),
			huh.NewInput().
				Title("Token").
				Description("Leave empty to create one later with n").
				Value(&vals.Token),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&vals.Theme),
			huh.NewInput().
				Title("Number locale").
				Description("e.g. en, de, zh-CN").
				Value(&vals.Locale).
				Validate(validateLocale),
			huh.NewInput().
				Title("Monthly budget").
				Description("Optional, in your budget currency").
				Value(&vals.Budget),
		),
	).WithTheme(huh.ThemeBase16())
}

func validateServerURL(s string) error {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("enter an http(s) URL")
	}
	return nil
}

func validateLocale(s string) error {
	if _, err := language.Parse(strings.ReplaceAll(strings.TrimSpace(s), "_", "-")); err != nil {
		return fmt.Errorf("unknown locale")
	}
	return nil
}
