package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/subtrack/internal/catalog"
	"github.com/theirongolddev/subtrack/internal/cli"
	"github.com/theirongolddev/subtrack/internal/model"
)

// recordFlags are the subscription fields shared by add and edit.
type recordFlags struct {
	name     string
	price    string
	currency string
	period   string
	date     string
	icon     string
}

func (f *recordFlags) register(c *cobra.Command) {
	c.Flags().StringVar(&f.name, "name", "", "Subscription name")
	c.Flags().StringVar(&f.price, "price", "", "Price per billing period, e.g. 9.99")
	c.Flags().StringVar(&f.currency, "currency", "USD", "Currency: USD or CNY")
	c.Flags().StringVar(&f.period, "period", "monthly", "Billing period: monthly or yearly")
	c.Flags().StringVar(&f.date, "date", "", "First bill date, YYYY-MM-DD")
	c.Flags().StringVar(&f.icon, "icon", "", "Icon key, see `subtrack presets --icons`")
}

// apply overwrites the fields of r whose flags were given on the command line.
func (f *recordFlags) apply(c *cobra.Command, r *model.Record) error {
	changed := c.Flags().Changed
	if changed("name") {
		r.Name = strings.TrimSpace(f.name)
	}
	if changed("price") {
		p, err := decimal.NewFromString(strings.TrimSpace(f.price))
		if err != nil {
			return &model.ValidationError{Field: "price", Message: "Price must be a number"}
		}
		r.Price = p
	}
	if changed("currency") || r.Currency == "" {
		cur, err := model.ParseCurrency(f.currency)
		if err != nil {
			return err
		}
		r.Currency = cur
	}
	if changed("period") || r.Period == "" {
		p, err := model.ParsePeriod(f.period)
		if err != nil {
			return err
		}
		r.Period = p
	}
	if changed("date") {
		d, err := model.ParseDate(f.date)
		if err != nil {
			return err
		}
		r.FirstBillDate = d
	}
	if changed("icon") || changed("name") {
		key := f.icon
		if !changed("icon") {
			key = catalog.KeyFromURL(r.Icon)
		}
		if key != "" || r.Icon == "" {
			r.Icon = catalog.ResolveIconURL(key, r.Name)
		}
	}
	return nil
}

var (
	addFlags   recordFlags
	flagPreset string
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a subscription",
	Example: `  subtrack add --preset Netflix
  subtrack add --name Gym --price 30 --date 2024-01-05
  subtrack add --preset Spotify --price 10.99`,
	Args: cobra.NoArgs,
	RunE: runAdd,
}

func init() {
	addFlags.register(addCmd)
	addCmd.Flags().StringVar(&flagPreset, "preset", "", "Start from a preset, see `subtrack presets`")
	rootCmd.AddCommand(addCmd)
}

func runAdd(c *cobra.Command, _ []string) error {
	var r model.Record
	if flagPreset != "" {
		p, ok := catalog.FindPreset(flagPreset)
		if !ok {
			return fmt.Errorf("unknown preset %q", flagPreset)
		}
		pr, err := p.Record()
		if err != nil {
			return fmt.Errorf("preset %s: %w", p.Name, err)
		}
		r = pr
	} else if !c.Flags().Changed("name") || !c.Flags().Changed("price") || !c.Flags().Changed("date") {
		return errors.New("either --preset or all of --name, --price and --date are required")
	}

	if err := addFlags.apply(c, &r); err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	ws, err := openLoadedWorkspace(ctx)
	if err != nil {
		return err
	}
	defer ws.Close()

	s, err := ws.Store.Add(r)
	if err != nil {
		return err
	}
	if err := ws.Save(); err != nil {
		return err
	}

	m := cli.NewMoney(cfg.Display.Locale)
	fmt.Printf("  Added #%d %s (%s)\n", s.ID, s.Name, cli.FormatPrice(m, s.Record))
	fmt.Println("  Run `subtrack sync` to store it on the server.")
	return nil
}
