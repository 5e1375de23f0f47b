// Package catalog provides the built-in subscription presets and the icon
// table used to render subscription icons.
package catalog

import (
	_ "embed"
	"fmt"
	"net/url"
	"path"
	"sort"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/theirongolddev/subtrack/internal/model"
)

const (
	iconBaseURL    = "https://simpleicons.org/icons/"
	placeholderURL = "https://via.placeholder.com/40?text="
	fallbackColor  = "#6F6E69"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Icon is what a renderer needs to draw a subscription icon.
type Icon struct {
	Key   string `yaml:"key"`
	Title string `yaml:"title"`
	Color string `yaml:"color"`
	URL   string `yaml:"-"`
	Glyph string `yaml:"-"`
	Known bool   `yaml:"-"`
}

// Preset is a ready-made subscription users can start from.
type Preset struct {
	Name          string `yaml:"name"`
	Price         string `yaml:"price"`
	Currency      string `yaml:"currency"`
	Period        string `yaml:"period"`
	FirstBillDate string `yaml:"first_bill_date"`
	Icon          string `yaml:"icon"`
}

type file struct {
	Icons   []Icon   `yaml:"icons"`
	Presets []Preset `yaml:"presets"`
}

var (
	loadOnce sync.Once
	icons    map[string]Icon
	presets  []Preset
	loadErr  error
)

func load() {
	loadOnce.Do(func() {
		var f file
		if err := yaml.Unmarshal(catalogYAML, &f); err != nil {
			loadErr = fmt.Errorf("catalog: parsing embedded catalog: %w", err)
			return
		}
		icons = make(map[string]Icon, len(f.Icons))
		for _, ic := range f.Icons {
			ic.Key = strings.ToLower(ic.Key)
			ic.URL = iconBaseURL + ic.Key + ".svg"
			ic.Glyph = initial(ic.Title)
			ic.Known = true
			icons[ic.Key] = ic
		}
		presets = f.Presets
	})
}

// Err reports a problem loading the embedded catalog.
func Err() error {
	load()
	return loadErr
}

// LookupIcon returns the icon for key. Unknown keys get a placeholder icon
// built from fallbackName's first letter, or "X" when that is empty.
func LookupIcon(key, fallbackName string) Icon {
	load()
	key = strings.ToLower(strings.TrimSpace(key))
	if ic, ok := icons[key]; ok {
		return ic
	}
	g := initial(fallbackName)
	if g == "" {
		g = "X"
	}
	return Icon{
		Key:   key,
		Title: fallbackName,
		Color: fallbackColor,
		URL:   placeholderURL + url.QueryEscape(g),
		Glyph: g,
	}
}

// ResolveIconURL returns the stored icon reference for a subscription named
// name with icon key.
func ResolveIconURL(key, name string) string {
	return LookupIcon(key, name).URL
}

// KeyFromURL extracts the icon key from a stored icon reference: the last
// path segment without its .svg suffix. Placeholder URLs have no key.
func KeyFromURL(ref string) string {
	if ref == "" || strings.HasPrefix(ref, placeholderURL) {
		return ""
	}
	if u, err := url.Parse(ref); err == nil && u.Path != "" {
		ref = u.Path
	}
	return strings.TrimSuffix(path.Base(ref), ".svg")
}

// IconForRecord resolves the icon stored on r.
func IconForRecord(r model.Record) Icon {
	return LookupIcon(KeyFromURL(r.Icon), r.Name)
}

// IconKeys returns every known icon key, sorted.
func IconKeys() []string {
	load()
	keys := make([]string, 0, len(icons))
	for k := range icons {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Presets returns the built-in presets in catalog order.
func Presets() []Preset {
	load()
	out := make([]Preset, len(presets))
	copy(out, presets)
	return out
}

// FindPreset returns the preset whose name matches, ignoring case.
func FindPreset(name string) (Preset, bool) {
	for _, p := range Presets() {
		if strings.EqualFold(p.Name, strings.TrimSpace(name)) {
			return p, true
		}
	}
	return Preset{}, false
}

// SearchPresets returns presets whose name contains term, ignoring case.
func SearchPresets(term string) []Preset {
	term = strings.ToLower(strings.TrimSpace(term))
	var out []Preset
	for _, p := range Presets() {
		if strings.Contains(strings.ToLower(p.Name), term) {
			out = append(out, p)
		}
	}
	return out
}

// Record converts a preset into a validated record.
func (p Preset) Record() (model.Record, error) {
	price, err := decimal.NewFromString(p.Price)
	if err != nil {
		return model.Record{}, &model.ValidationError{Field: "price", Message: "Price must be greater than 0"}
	}
	cur, err := model.ParseCurrency(p.Currency)
	if err != nil {
		return model.Record{}, err
	}
	period, err := model.ParsePeriod(p.Period)
	if err != nil {
		return model.Record{}, err
	}
	date, err := model.ParseDate(p.FirstBillDate)
	if err != nil {
		return model.Record{}, err
	}
	r := model.Record{
		Name:          p.Name,
		Price:         price,
		Currency:      cur,
		Period:        period,
		FirstBillDate: date,
		Icon:          ResolveIconURL(p.Icon, p.Name),
	}
	return r, model.Validate(r)
}

func initial(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	r, _ := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r))
}
