package tui

import (
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/subtrack/internal/catalog"
	"github.com/theirongolddev/subtrack/internal/model"
)

const customPreset = ""

// subForm holds the bound values of the add/edit form. It lives behind a
// pointer so huh keeps writing to the same fields while App is copied.
type subForm struct {
	editID int // 0 when adding

	Preset   string
	Name     string
	Price    string
	Currency string
	Period   string
	Date     string
	Icon     string
}

func newSubForm() *subForm {
	return &subForm{
		Currency: string(model.USD),
		Period:   string(model.Monthly),
		Date:     time.Now().Format(model.DateLayout),
	}
}

// formFromSubscription pre-fills the form for editing s.
func formFromSubscription(s model.Subscription) *subForm {
	return &subForm{
		editID:   s.ID,
		Name:     s.Name,
		Price:    s.Price.String(),
		Currency: string(s.Currency),
		Period:   string(s.Period),
		Date:     s.FirstBillDate.Format(model.DateLayout),
		Icon:     catalog.KeyFromURL(s.Icon),
	}
}

// applyPreset copies the chosen preset's defaults into the form.
func (f *subForm) applyPreset() {
	if f.Preset == customPreset {
		return
	}
	p, ok := catalog.FindPreset(f.Preset)
	if !ok {
		return
	}
	f.Name = p.Name
	f.Price = p.Price
	f.Currency = strings.ToUpper(p.Currency)
	f.Period = strings.ToLower(p.Period)
	f.Date = p.FirstBillDate
	f.Icon = p.Icon
}

// record converts the form into a validated record.
func (f *subForm) record() (model.Record, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(f.Price))
	if err != nil {
		return model.Record{}, &model.ValidationError{Field: "price", Message: "Price must be a number"}
	}
	date, err := model.ParseDate(f.Date)
	if err != nil {
		return model.Record{}, err
	}
	r := model.Record{
		Name:          strings.TrimSpace(f.Name),
		Price:         price,
		Currency:      model.Currency(f.Currency),
		Period:        model.Period(f.Period),
		FirstBillDate: date,
	}
	if f.Icon != "" {
		r.Icon = catalog.ResolveIconURL(f.Icon, r.Name)
	}
	return r, model.Validate(r)
}

// presetForm asks which preset to start from.
func presetForm(f *subForm) *huh.Form {
	opts := []huh.Option[string]{huh.NewOption("Custom", customPreset)}
	for _, p := range catalog.Presets() {
		opts = append(opts, huh.NewOption(p.Name, p.Name))
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Start from").
				Options(opts...).
				Value(&f.Preset),
		),
	).WithTheme(huh.ThemeBase16())
}

// detailsForm edits every field of a subscription.
func detailsForm(f *subForm) *huh.Form {
	title := "Add subscription"
	if f.editID != 0 {
		title = "Edit subscription"
	}

	iconOpts := []huh.Option[string]{huh.NewOption("(none)", "")}
	for _, key := range catalog.IconKeys() {
		iconOpts = append(iconOpts, huh.NewOption(catalog.LookupIcon(key, "").Title, key))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(title).
				Prompt("Name: ").
				Value(&f.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("Name cannot be empty")
					}
					return nil
				}),
			huh.NewInput().
				Prompt("Price: ").
				Value(&f.Price).
				Validate(func(s string) error {
					d, err := decimal.NewFromString(strings.TrimSpace(s))
					if err != nil {
						return errors.New("Price must be a number")
					}
					if !d.IsPositive() {
						return errors.New("Price must be greater than 0")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Currency").
				Options(huh.NewOptions(string(model.USD), string(model.CNY))...).
				Value(&f.Currency),
			huh.NewSelect[string]().
				Title("Billing period").
				Options(huh.NewOptions(string(model.Monthly), string(model.Yearly))...).
				Value(&f.Period),
			huh.NewInput().
				Prompt("First bill date (YYYY-MM-DD): ").
				Value(&f.Date).
				Validate(func(s string) error {
					_, err := model.ParseDate(s)
					return err
				}),
			huh.NewSelect[string]().
				Title("Icon").
				Options(iconOpts...).
				Height(8).
				Value(&f.Icon),
		),
	).WithTheme(huh.ThemeBase16())
}
