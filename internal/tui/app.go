// Package tui provides the interactive Bubble Tea interface for subtrack.
package tui

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/subtrack/internal/cli"
	"github.com/theirongolddev/subtrack/internal/config"
	"github.com/theirongolddev/subtrack/internal/model"
	"github.com/theirongolddev/subtrack/internal/pipeline"
	"github.com/theirongolddev/subtrack/internal/tui/components"
	"github.com/theirongolddev/subtrack/internal/tui/theme"
	"github.com/theirongolddev/subtrack/internal/workspace"
)

const (
	minTerminalWidth = 80
	maxContentWidth  = 160
	minContentHeight = 5
)

const (
	tabSubscriptions = iota
	tabAnalysis
)

type formStage int

const (
	formNone formStage = iota
	formPreset
	formDetails
	formSetup
)

type confirmKind int

const (
	confirmNone confirmKind = iota
	confirmDelete
	confirmNewToken
	confirmLoad
)

// Options configures NewApp.
type Options struct {
	Workspace *workspace.Workspace
	Config    config.Config
	// NeedSetup opens the setup wizard before anything else.
	NeedSetup bool
	Logger    *slog.Logger
	// Now defaults to time.Now; the spending series runs up to it.
	Now func() time.Time
}

// App is the root Bubble Tea model.
type App struct {
	ws    *workspace.Workspace
	cfg   config.Config
	money cli.Money
	log   *slog.Logger
	now   func() time.Time

	// Derived from the store by refresh.
	subs       []model.Subscription
	stats      model.SummaryStats
	byCurrency []model.CurrencyTotals
	series     []model.MonthlyDataPoint
	shares     []pipeline.Share
	budget     *model.BudgetStats
	chartCur   int // index into stats.Currencies for the analysis chart

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	cursor    int

	stage     formStage
	form      *huh.Form
	formVals  *subForm
	setupVals *SetupValues

	tokenInput    textinput.Model
	enteringToken bool

	confirm      confirmKind
	confirmToken string

	spinner   spinner.Model
	busy      bool
	startLoad bool
	status    string
	statusErr bool
}

// NewApp creates the TUI model over an opened workspace.
func NewApp(opts Options) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	ti := textinput.New()
	ti.Placeholder = "ABCDEF"
	ti.CharLimit = 64
	ti.Width = 40

	a := App{
		ws:         opts.Workspace,
		cfg:        opts.Config,
		money:      cli.NewMoney(opts.Config.Display.Locale),
		log:        opts.Logger,
		now:        opts.Now,
		spinner:    sp,
		tokenInput: ti,
	}
	if a.log == nil {
		a.log = slog.Default()
	}
	if a.now == nil {
		a.now = time.Now
	}
	a.refresh()

	if opts.NeedSetup {
		vals := SetupValuesFrom(opts.Config)
		a.setupVals = &vals
		a.stage = formSetup
		a.form = NewSetupForm(a.setupVals)
		return a
	}

	// A token without a cached snapshot has never been loaded here. Local
	// edits made before that are kept until the user reloads with r.
	rec := a.ws.Reconciler
	if rec.Token() != "" && !rec.Loaded() && a.ws.Store.Len() == 0 {
		a.busy = true
		a.startLoad = true
	}
	return a
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{tea.EnableMouseCellMotion}
	if a.form != nil {
		cmds = append(cmds, a.form.Init())
	}
	if a.startLoad {
		cmds = append(cmds, loadCmd(a.ws.Reconciler, a.ws.Reconciler.Token()), a.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

// refresh recomputes everything derived from the store.
func (a *App) refresh() {
	a.subs = a.ws.Store.List()
	records := model.Strip(a.subs)

	a.stats = pipeline.Summarize(records)
	a.byCurrency = pipeline.SummarizeByCurrency(records)
	a.shares = pipeline.AggregateShares(records)

	if a.chartCur >= len(a.stats.Currencies) {
		a.chartCur = 0
	}
	chartRecords := records
	if a.stats.Mixed {
		chartRecords = pipeline.FilterByCurrency(records, a.stats.Currencies[a.chartCur])
	}
	a.series = pipeline.BuildSeries(chartRecords, a.now())

	a.budget = nil
	if a.cfg.Budget.Monthly != nil {
		cur := model.Currency(a.cfg.Budget.Currency)
		if !cur.Valid() {
			cur = model.USD
		}
		b := pipeline.Budget(records, cur, decimal.NewFromFloat(*a.cfg.Budget.Monthly))
		a.budget = &b
	}

	a.cursor = min(a.cursor, max(len(a.subs)-1, 0))
}

// chartCurrency is the currency of the analysis chart.
func (a App) chartCurrency() model.Currency {
	if len(a.stats.Currencies) == 0 {
		return model.USD
	}
	return a.stats.Currencies[a.chartCur]
}

func (a *App) setStatus(msg string, isErr bool) {
	a.status = msg
	a.statusErr = isErr
}

func (a *App) save() {
	if err := a.ws.Save(); err != nil {
		a.log.Error("saving workspace", "err", err)
		a.setStatus("Could not save workspace: "+err.Error(), true)
	}
}

func (a App) startOp(cmd tea.Cmd) (tea.Model, tea.Cmd) {
	a.busy = true
	a.status = ""
	return a, tea.Batch(cmd, a.spinner.Tick)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.form != nil {
			a.form = a.form.WithWidth(min(msg.Width, 72)).WithHeight(msg.Height - 4)
		}
		return a, nil

	case spinner.TickMsg:
		if !a.busy {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case opDoneMsg:
		a.busy = false
		text, isErr := msg.describe()
		a.setStatus(text, isErr)
		a.refresh()
		a.save()
		return a, nil

	case tea.MouseMsg:
		return a.updateMouse(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		switch {
		case a.form != nil:
			if msg.String() == "esc" && a.stage != formSetup {
				a.closeForm()
				return a, nil
			}
			return a.updateForm(msg)
		case a.enteringToken:
			return a.updateTokenInput(msg)
		case a.confirm != confirmNone:
			return a.updateConfirm(msg)
		}
		return a.updateKeys(msg)
	}

	// Cursor blinks and other internal messages.
	if a.form != nil {
		return a.updateForm(msg)
	}
	if a.enteringToken {
		var cmd tea.Cmd
		a.tokenInput, cmd = a.tokenInput.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a App) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "?":
		a.showHelp = true
		return a, nil
	case "tab", "right":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		return a, nil
	case "shift+tab", "left":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		return a, nil
	case "1", "2":
		a.activeTab = components.TabIdxByKey(rune(key[0]))
		return a, nil
	case "j", "down":
		if a.cursor < len(a.subs)-1 {
			a.cursor++
		}
		return a, nil
	case "k", "up":
		if a.cursor > 0 {
			a.cursor--
		}
		return a, nil
	case "c":
		if n := len(a.stats.Currencies); n > 1 {
			a.chartCur = (a.chartCur + 1) % n
			a.refresh()
		}
		return a, nil
	}

	if a.busy {
		switch key {
		case "a", "e", "d", "s", "n", "t", "r":
			a.setStatus("Please wait for the current operation", true)
		}
		return a, nil
	}

	rec := a.ws.Reconciler
	switch key {
	case "a":
		a.formVals = newSubForm()
		return a.openForm(formPreset, presetForm(a.formVals))
	case "e":
		if sel, ok := a.selected(); ok {
			a.formVals = formFromSubscription(sel)
			return a.openForm(formDetails, detailsForm(a.formVals))
		}
	case "d":
		if _, ok := a.selected(); ok {
			a.confirm = confirmDelete
		}
	case "s":
		return a.startOp(syncCmd(rec))
	case "n":
		if rec.Pending() {
			a.confirm = confirmNewToken
			return a, nil
		}
		return a.startOp(newTokenCmd(rec))
	case "t":
		a.enteringToken = true
		a.tokenInput.SetValue("")
		return a, a.tokenInput.Focus()
	case "r":
		if rec.Token() == "" {
			a.setStatus("No token to reload", true)
			return a, nil
		}
		return a.requestLoad(rec.Token())
	}
	return a, nil
}

// requestLoad loads token, asking first when local changes would be lost.
func (a App) requestLoad(token string) (tea.Model, tea.Cmd) {
	if a.ws.Reconciler.Pending() {
		a.confirm = confirmLoad
		a.confirmToken = token
		return a, nil
	}
	return a.startOp(loadCmd(a.ws.Reconciler, token))
}

func (a App) selected() (model.Subscription, bool) {
	if a.activeTab != tabSubscriptions || a.cursor >= len(a.subs) {
		return model.Subscription{}, false
	}
	return a.subs[a.cursor], true
}

func (a App) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	kind := a.confirm
	a.confirm = confirmNone
	if key := msg.String(); key != "y" && key != "enter" {
		return a, nil
	}

	switch kind {
	case confirmDelete:
		if sel, ok := a.selected(); ok && a.ws.Store.Remove(sel.ID) {
			a.refresh()
			a.setStatus("Removed "+sel.Name, false)
			a.save()
		}
	case confirmNewToken:
		return a.startOp(newTokenCmd(a.ws.Reconciler))
	case confirmLoad:
		return a.startOp(loadCmd(a.ws.Reconciler, a.confirmToken))
	}
	return a, nil
}

func (a App) updateTokenInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.enteringToken = false
		a.tokenInput.Blur()
		return a, nil
	case "enter":
		a.enteringToken = false
		a.tokenInput.Blur()
		token := strings.TrimSpace(a.tokenInput.Value())
		if token == "" {
			return a, nil
		}
		return a.requestLoad(token)
	}
	var cmd tea.Cmd
	a.tokenInput, cmd = a.tokenInput.Update(msg)
	return a, cmd
}

func (a App) openForm(stage formStage, f *huh.Form) (tea.Model, tea.Cmd) {
	a.stage = stage
	a.form = f
	if a.width > 0 {
		a.form = a.form.WithWidth(min(a.width, 72)).WithHeight(a.height - 4)
	}
	return a, a.form.Init()
}

func (a *App) closeForm() {
	a.stage = formNone
	a.form = nil
	a.formVals = nil
	a.setupVals = nil
}

func (a App) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.form = f
	}

	switch a.form.State {
	case huh.StateCompleted:
		return a.finishForm()
	case huh.StateAborted:
		a.closeForm()
		return a, nil
	}
	return a, cmd
}

func (a App) finishForm() (tea.Model, tea.Cmd) {
	switch a.stage {
	case formPreset:
		a.formVals.applyPreset()
		return a.openForm(formDetails, detailsForm(a.formVals))

	case formDetails:
		vals := a.formVals
		a.closeForm()
		r, err := vals.record()
		if err != nil {
			a.setStatus(err.Error(), true)
			return a, nil
		}
		if vals.editID == 0 {
			_, err = a.ws.Store.Add(r)
		} else {
			_, err = a.ws.Store.Edit(vals.editID, r)
		}
		if err != nil {
			a.setStatus(err.Error(), true)
			return a, nil
		}
		a.refresh()
		if vals.editID == 0 {
			a.cursor = len(a.subs) - 1
			a.setStatus("Added "+r.Name, false)
		} else {
			a.setStatus("Updated "+r.Name, false)
		}
		a.save()
		return a, nil

	case formSetup:
		vals := *a.setupVals
		a.closeForm()
		if err := vals.Apply(&a.cfg); err != nil {
			a.setStatus(err.Error(), true)
			return a, nil
		}
		if err := config.Save(a.cfg); err != nil {
			a.setStatus("Could not save config: "+err.Error(), true)
		} else {
			a.setStatus("Saved "+config.ConfigPath(), false)
		}
		theme.SetActive(a.cfg.Appearance.Theme)
		a.money = cli.NewMoney(a.cfg.Display.Locale)
		a.refresh()
		if tok := a.cfg.General.Token; tok != "" && tok != a.ws.Reconciler.Token() {
			return a.startOp(loadCmd(a.ws.Reconciler, tok))
		}
		return a, nil
	}
	a.closeForm()
	return a, nil
}

func (a App) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if a.form != nil || a.showHelp || a.enteringToken || a.confirm != confirmNone {
		return a, nil
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		if a.cursor > 0 {
			a.cursor--
		}
	case tea.MouseButtonWheelDown:
		if a.cursor < len(a.subs)-1 {
			a.cursor++
		}
	case tea.MouseButtonLeft:
		if msg.Action == tea.MouseActionPress && msg.Y == 0 {
			if tab := a.tabAtX(msg.X - a.leftMargin()); tab >= 0 {
				a.activeTab = tab
			}
		}
	}
	return a, nil
}

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes follow the widths used by RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		w := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+w {
			return i
		}
		pos += w + 1 // separator
	}
	return -1
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

// leftMargin is the offset of the centered content column.
func (a App) leftMargin() int {
	return (a.width - a.contentWidth()) / 2
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	t := theme.Active

	if a.width < minTerminalWidth {
		msg := fmt.Sprintf("\n  Terminal too narrow (%d cols)\n\n  subtrack needs at least %d columns.\n",
			a.width, minTerminalWidth)
		return padHeight(truncateHeight(msg, max(a.height, 5)), max(a.height, 5))
	}

	if a.form != nil {
		return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, a.form.View(),
			lipgloss.WithWhitespaceBackground(t.Background))
	}
	if a.showHelp {
		return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, a.viewHelp(),
			lipgloss.WithWhitespaceBackground(t.Background))
	}
	return a.viewMain()
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()

	header := components.RenderTabBar(a.activeTab, cw)
	statusBar := components.RenderStatusBar(w, a.statusLine())
	contentH := max(a.height-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	var content string
	switch {
	case a.enteringToken:
		content = a.viewTokenDialog(cw, contentH)
	case a.confirm != confirmNone:
		content = a.viewConfirmDialog(cw, contentH)
	case a.activeTab == tabAnalysis:
		content = a.renderAnalysisTab(cw)
	default:
		content = a.renderSubscriptionsTab(cw, contentH)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	body := lipgloss.JoinVertical(lipgloss.Left, header, content)
	body = lipgloss.Place(w, lipgloss.Height(body), lipgloss.Center, lipgloss.Top, body,
		lipgloss.WithWhitespaceBackground(t.Background))

	return lipgloss.Place(w, a.height, lipgloss.Left, lipgloss.Top,
		lipgloss.JoinVertical(lipgloss.Left, body, statusBar),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) statusLine() components.Status {
	rec := a.ws.Reconciler
	s := components.Status{
		Token:   rec.Token(),
		State:   rec.State().String(),
		Pending: rec.Pending(),
		Message: a.status,
		IsError: a.statusErr,
	}
	if a.busy {
		s.Busy = a.spinner.View()
	}
	return s
}

func (a App) viewTokenDialog(cw, h int) string {
	t := theme.Active
	hint := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).
		Render("Enter to load, Esc to cancel")
	card := components.AccentCard("Load token", a.tokenInput.View()+"\n\n"+hint, 56)
	return lipgloss.Place(cw, h, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewConfirmDialog(cw, h int) string {
	t := theme.Active
	var title, body string
	switch a.confirm {
	case confirmDelete:
		sel, _ := a.selected()
		title, body = "Remove subscription", fmt.Sprintf("Remove %s?", sel.Name)
	case confirmNewToken:
		title, body = "New token", "Unsynced changes will be discarded."
	case confirmLoad:
		title, body = "Load token", fmt.Sprintf("Load %s? Unsynced changes will be discarded.", a.confirmToken)
	}
	hint := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).Render("y to confirm, any other key to cancel")
	text := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Render(body)
	card := components.AccentCard(title, text+"\n\n"+hint, 56)
	return lipgloss.Place(cw, h, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	section := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	desc := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	groups := []struct {
		name     string
		bindings [][2]string
	}{
		{"Navigation", [][2]string{
			{"1 2 tab", "Switch tab"},
			{"j k", "Move selection"},
			{"c", "Cycle chart currency"},
		}},
		{"Subscriptions", [][2]string{
			{"a", "Add (from a preset)"},
			{"e", "Edit selected"},
			{"d", "Delete selected"},
		}},
		{"Sync", [][2]string{
			{"s", "Sync with server"},
			{"r", "Reload from server"},
			{"t", "Enter a token"},
			{"n", "Create a new token"},
		}},
		{"", [][2]string{
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}

	var b strings.Builder
	for _, g := range groups {
		if g.name != "" {
			b.WriteString(section.Render(g.name))
			b.WriteString("\n")
		}
		for _, kb := range g.bindings {
			fmt.Fprintf(&b, "  %s  %s\n", keyStyle.Render(fmt.Sprintf("%-8s", kb[0])), desc.Render(kb[1]))
		}
		b.WriteString("\n")
	}
	b.WriteString(dim.Render("Press any key to close"))
	return components.AccentCard("◈ Keyboard Shortcuts", b.String(), 48)
}

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with the background
// color so gaps between cards are not left unstyled.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = lipgloss.PlaceHorizontal(w, lipgloss.Left, line, lipgloss.WithWhitespaceBackground(bg))
	}
	return strings.Join(lines, "\n")
}
