package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/theirongolddev/subtrack/internal/config"
	"github.com/theirongolddev/subtrack/internal/events"
	xlog "github.com/theirongolddev/subtrack/internal/log"
	"github.com/theirongolddev/subtrack/internal/server"
	"github.com/theirongolddev/subtrack/internal/store"
)

type serverRuntimeState struct {
	PID       int       `json:"pid"`
	Addr      string    `json:"addr"`
	Backend   string    `json:"backend"`
	StartedAt time.Time `json:"started_at"`
}

var (
	flagServeAddr     string
	flagServeBackend  string
	flagServeDB       string
	flagServeAMQP     string
	flagServeExchange string
	flagServeNoSeed   bool
	flagServeEvents   int
	flagServeReport   time.Duration
	flagServeDetach   bool
	flagServePIDFile  string
	flagServeLogFile  string
	flagServeChild    bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the token server",
	Long: `Serves GET /sub?token=, GET /sub/{token}, POST /sub/new_token and
POST /sub/sync, plus /healthz, /v1/status, /v1/events and the /v1/stream
event stream. Flags override the [server] section of the config file.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var serveStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show server process and API status",
	RunE:  runServeStatus,
}

var serveStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the detached server",
	RunE:  runServeStop,
}

func init() {
	defaultPID := filepath.Join(config.DataDir(), "subtrackd.pid")
	defaultLog := filepath.Join(config.DataDir(), "subtrackd.log")

	serveCmd.PersistentFlags().StringVar(&flagServeAddr, "addr", "", "HTTP listen address (default from config, :8082)")
	serveCmd.PersistentFlags().StringVar(&flagServePIDFile, "pid-file", defaultPID, "PID file path")

	serveCmd.Flags().StringVar(&flagServeBackend, "backend", "", "Storage backend: memory or sqlite")
	serveCmd.Flags().StringVar(&flagServeDB, "db", "", "SQLite database path for the sqlite backend")
	serveCmd.Flags().StringVar(&flagServeAMQP, "amqp", "", "Publish events to this AMQP broker URL")
	serveCmd.Flags().StringVar(&flagServeExchange, "exchange", "", "AMQP topic exchange")
	serveCmd.Flags().BoolVar(&flagServeNoSeed, "no-seed", false, "Do not create the demo tokens")
	serveCmd.Flags().IntVar(&flagServeEvents, "events-buffer", 0, "Max in-memory events retained")
	serveCmd.Flags().DurationVar(&flagServeReport, "report", time.Minute, "Log a status line at this interval (0 disables)")
	serveCmd.Flags().StringVar(&flagServeLogFile, "log-file", defaultLog, "Log file path (detached: all output; foreground: JSON copy of the log when set)")
	serveCmd.Flags().BoolVar(&flagServeDetach, "detach", false, "Run the server as a background process")
	serveCmd.Flags().BoolVar(&flagServeChild, "child", false, "Internal: mark detached child process")
	_ = serveCmd.Flags().MarkHidden("child")

	serveCmd.AddCommand(serveStatusCmd, serveStopCmd)
	rootCmd.AddCommand(serveCmd)
}

// serverConfig merges flags over cfg.Server.
func serverConfig(c *cobra.Command) config.ServerConfig {
	sc := cfg.Server
	if flagServeAddr != "" {
		sc.Addr = flagServeAddr
	}
	if flagServeBackend != "" {
		sc.Backend = flagServeBackend
	}
	if flagServeDB != "" {
		sc.DBPath = flagServeDB
	}
	if flagServeAMQP != "" {
		sc.AMQPURL = flagServeAMQP
	} else {
		sc.AMQPURL = config.AMQPURL(cfg)
	}
	if flagServeExchange != "" {
		sc.AMQPExchange = flagServeExchange
	}
	if flagServeNoSeed {
		sc.SeedDemo = false
	}
	if c.Flags().Changed("events-buffer") {
		sc.EventsBuffer = flagServeEvents
	}
	return sc
}

func runServe(c *cobra.Command, _ []string) error {
	if flagServeDetach && flagServeChild {
		return errors.New("invalid server launch mode")
	}
	if flagServeDetach {
		return startServerDetached()
	}
	return runServeForeground(c)
}

func startServerDetached() error {
	if err := ensureServerNotRunning(flagServePIDFile); err != nil {
		return err
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}

	args := filterDetachArg(os.Args[1:])
	args = append(args, "--child")

	if err := os.MkdirAll(filepath.Dir(flagServePIDFile), 0o750); err != nil {
		return fmt.Errorf("create server directory: %w", err)
	}
	logf, err := openServerLog(flagServeLogFile)
	if err != nil {
		return err
	}
	defer func() { _ = logf.Close() }()

	child := exec.Command(exe, args...) //nolint:gosec // exe/args come from current process invocation
	child.Stdout = logf
	child.Stderr = logf
	child.Env = os.Environ()

	if err := child.Start(); err != nil {
		return fmt.Errorf("start detached server: %w", err)
	}

	fmt.Printf("  Started server (pid %d)\n", child.Process.Pid)
	fmt.Printf("  PID file: %s\n", flagServePIDFile)
	fmt.Printf("  Log: %s\n", flagServeLogFile)
	return nil
}

// openServerLog opens path for appending, creating its directory.
func openServerLog(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create server log directory: %w", err)
	}
	//nolint:gosec // log path is configured by the local user
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open server log file: %w", err)
	}
	return f, nil
}

func runServeForeground(c *cobra.Command) error {
	sc := serverConfig(c)
	probe := cfg
	probe.Server = sc
	if err := probe.Validate(); err != nil {
		return err
	}

	level, err := xlog.ParseLevel(sc.LogLevel)
	if err != nil {
		return err
	}
	logCfg := xlog.Config{Level: level, Format: sc.LogFormat}
	if !flagServeChild && c.Flags().Changed("log-file") {
		logf, err := openServerLog(flagServeLogFile)
		if err != nil {
			return err
		}
		defer func() { _ = logf.Close() }()
		logCfg.Extra = []slog.Handler{slog.NewJSONHandler(logf, &slog.HandlerOptions{Level: level})}
	}
	logger := xlog.New(logCfg)
	xlog.SetDefault(logger)
	log := xlog.WithComponent(logger, xlog.ComponentServer)

	if err := ensureServerNotRunning(flagServePIDFile); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(flagServePIDFile), 0o750); err != nil {
		return fmt.Errorf("create server directory: %w", err)
	}
	pid := os.Getpid()
	if err := writePID(flagServePIDFile, pid); err != nil {
		return err
	}
	defer func() { _ = os.Remove(flagServePIDFile) }()

	_ = writeState(statePath(flagServePIDFile), serverRuntimeState{
		PID:       pid,
		Addr:      sc.Addr,
		Backend:   sc.Backend,
		StartedAt: time.Now(),
	})
	defer func() { _ = os.Remove(statePath(flagServePIDFile)) }()

	repo, err := openRepository(sc, logger)
	if err != nil {
		return err
	}
	defer repo.Close()

	ctx, cancel := commandContext()
	defer cancel()

	if sc.SeedDemo {
		if err := server.SeedDemo(ctx, repo); err != nil {
			return err
		}
	}

	opts := []server.Option{server.WithLogger(log)}
	if sc.AMQPURL != "" {
		pub, err := events.DialAMQP(sc.AMQPURL, sc.AMQPExchange, xlog.WithComponent(logger, xlog.ComponentEvents))
		if err != nil {
			return err
		}
		defer pub.Close()
		opts = append(opts, server.WithPublisher(pub))
		log.Info("publishing events", "exchange", sc.AMQPExchange)
	}

	svc := server.New(server.Config{
		Addr:         sc.Addr,
		Backend:      sc.Backend,
		EventsBuffer: sc.EventsBuffer,
	}, repo, opts...)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return svc.Run(gctx) })
	if flagServeReport > 0 {
		g.Go(func() error { return reportStatus(gctx, svc, log, flagServeReport) })
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func openRepository(sc config.ServerConfig, logger *slog.Logger) (server.Repository, error) {
	if sc.Backend != config.BackendSQLite {
		return server.NewMemoryRepository(), nil
	}
	path := sc.DBPath
	if path == "" {
		path = config.ServerDBPath(cfg)
	}
	repo, err := store.OpenTokenRepository(path)
	if err != nil {
		return nil, err
	}
	xlog.WithComponent(logger, xlog.ComponentStorage).Info("opened token database", "path", path, "schema", repo.SchemaVersion())
	return repo, nil
}

// reportStatus logs the server counters every interval until ctx is done.
func reportStatus(ctx context.Context, svc *server.Service, log *slog.Logger, every time.Duration) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			st := svc.Status(ctx)
			log.Info("status",
				"tokens", st.Tokens,
				"issued", st.TokensIssued,
				"syncs", st.Syncs,
				"fetches", st.Fetches,
				"subscribers", st.SubscriberCount)
		}
	}
}

func runServeStatus(c *cobra.Command, _ []string) error {
	pid, err := readPID(flagServePIDFile)
	if err != nil {
		fmt.Printf("  Server: not running (pid file not found)\n")
		return nil
	}
	if !processAlive(pid) {
		fmt.Printf("  Server: stale pid file (pid %d not alive)\n", pid)
		return nil
	}

	addr := serverConfig(c).Addr
	if st, err := readState(statePath(flagServePIDFile)); err == nil && st.Addr != "" {
		addr = st.Addr
	}
	base := "http://" + localAddr(addr)

	fmt.Printf("  Server PID: %d\n", pid)
	fmt.Printf("  Address: %s\n", base)

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(base + "/v1/status") //nolint:noctx // short status probe
	if err != nil {
		fmt.Printf("  API status: unreachable (%v)\n", err)
		return nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		fmt.Printf("  API status: HTTP %d\n", resp.StatusCode)
		return nil
	}

	var st server.Status
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		fmt.Printf("  API status: malformed response (%v)\n", err)
		return nil
	}

	fmt.Printf("  Backend: %s\n", st.Backend)
	fmt.Printf("  Up since: %s\n", st.StartedAt.Local().Format(time.RFC3339))
	fmt.Printf("  Tokens: %d (%d issued since start)\n", st.Tokens, st.TokensIssued)
	fmt.Printf("  Syncs: %d, fetches: %d\n", st.Syncs, st.Fetches)
	if !st.LastSyncAt.IsZero() {
		fmt.Printf("  Last sync: %s\n", st.LastSyncAt.Local().Format(time.RFC3339))
	}
	if st.LastError != "" {
		fmt.Printf("  Last error: %s\n", st.LastError)
	}
	return nil
}

func runServeStop(_ *cobra.Command, _ []string) error {
	pid, err := readPID(flagServePIDFile)
	if err != nil {
		return errors.New("server is not running")
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("find server process: %w", err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("signal server process: %w", err)
	}

	deadline := time.Now().Add(8 * time.Second)
	for time.Now().Before(deadline) {
		if !processAlive(pid) {
			_ = os.Remove(flagServePIDFile)
			_ = os.Remove(statePath(flagServePIDFile))
			fmt.Printf("  Stopped server (pid %d)\n", pid)
			return nil
		}
		time.Sleep(150 * time.Millisecond)
	}

	return fmt.Errorf("server (pid %d) did not exit in time", pid)
}

// localAddr turns a listen address such as ":8082" into a dialable one.
func localAddr(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "127.0.0.1" + addr
	}
	return addr
}

func filterDetachArg(args []string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if a == "--detach" || strings.HasPrefix(a, "--detach=") {
			continue
		}
		out = append(out, a)
	}
	return out
}

func ensureServerNotRunning(pidFile string) error {
	pid, err := readPID(pidFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if processAlive(pid) {
		return fmt.Errorf("server already running (pid %d)", pid)
	}
	_ = os.Remove(pidFile)
	_ = os.Remove(statePath(pidFile))
	return nil
}

func writePID(path string, pid int) error {
	return os.WriteFile(path, []byte(strconv.Itoa(pid)+"\n"), 0o600)
}

func readPID(path string) (int, error) {
	//nolint:gosec // pid path is configured by the local user
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid pid in %s", path)
	}
	return pid, nil
}

func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}

func statePath(pidFile string) string {
	return pidFile + ".json"
}

func writeState(path string, st serverRuntimeState) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}

func readState(path string) (serverRuntimeState, error) {
	var st serverRuntimeState
	//nolint:gosec // state path is configured by the local user
	data, err := os.ReadFile(path)
	if err != nil {
		return st, err
	}
	if err := json.Unmarshal(data, &st); err != nil {
		return st, err
	}
	return st, nil
}
