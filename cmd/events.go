package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/subtrack/internal/config"
	"github.com/theirongolddev/subtrack/internal/events"
)

var (
	flagEventsAMQP     string
	flagEventsExchange string
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Follow server events as they happen",
	Long: `Prints token.created and subscriptions.replaced events. By default the
server's /v1/stream endpoint is followed; with --amqp the events are read
from the broker the server publishes to.`,
	Args: cobra.NoArgs,
	RunE: runEvents,
}

func init() {
	eventsCmd.Flags().StringVar(&flagEventsAMQP, "amqp", "", "Read from this AMQP broker URL instead of the server")
	eventsCmd.Flags().StringVar(&flagEventsExchange, "exchange", "", "AMQP topic exchange (default from config)")
	rootCmd.AddCommand(eventsCmd)
}

func runEvents(_ *cobra.Command, _ []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	if amqpURL := flagEventsAMQP; amqpURL != "" {
		exchange := flagEventsExchange
		if exchange == "" {
			exchange = cfg.Server.AMQPExchange
		}
		progress("Following %s on the broker (Ctrl-C to stop)", exchange)
		return events.Tail(ctx, amqpURL, exchange, printEvent)
	}

	base := strings.TrimRight(config.ServerURL(cfg), "/")
	progress("Following %s/v1/stream (Ctrl-C to stop)", base)
	return followStream(ctx, base+"/v1/stream", printEvent)
}

// followStream reads server-sent events from url until ctx is done or the
// server closes the stream.
func followStream(ctx context.Context, url string, fn func(events.Event)) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("connecting to event stream: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("event stream: HTTP %d", resp.StatusCode)
	}
	return readSSE(resp.Body, fn)
}

// readSSE decodes the data lines of an event stream. Event names are
// carried in the payload too, so the event: lines are skipped.
func readSSE(r io.Reader, fn func(events.Event)) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		data, ok := strings.CutPrefix(sc.Text(), "data: ")
		if !ok {
			continue
		}
		var ev events.Event
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			continue
		}
		fn(ev)
	}
	if err := sc.Err(); err != nil && !strings.Contains(err.Error(), "context canceled") {
		return err
	}
	return nil
}

func printEvent(ev events.Event) {
	ts := ev.Timestamp.Local().Format(time.TimeOnly)
	switch ev.Type {
	case events.TypeSnapshot:
		fmt.Printf("  %s  connected, %d tokens stored\n", ts, ev.Count)
	case events.TypeTokenCreated:
		fmt.Printf("  %s  #%-4d token.created           %s\n", ts, ev.Seq, ev.Token)
	default:
		fmt.Printf("  %s  #%-4d %-22s %s (%d subscriptions)\n", ts, ev.Seq, ev.Type, ev.Token, ev.Count)
	}
}
