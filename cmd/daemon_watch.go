package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/cbudget/internal/budget"
	"github.com/theirongolddev/cbudget/internal/cli"
	"github.com/theirongolddev/cbudget/internal/daemon"
)

var daemonWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow live budget changes from the running daemon",
	RunE:  runDaemonWatch,
}

func init() {
	daemonCmd.AddCommand(daemonWatchCmd)
}

func runDaemonWatch(cmd *cobra.Command, _ []string) error {
	resolveDaemonFlags()
	addr := flagDaemonAddr
	if st, err := readState(statePath(flagDaemonPIDFile)); err == nil && st.Addr != "" {
		addr = st.Addr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+addr+"/v1/stream", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("connecting to daemon at %s: %w", addr, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("daemon stream: HTTP %d", resp.StatusCode)
	}

	info("Watching http://%s (Ctrl+C to stop)", addr)
	err = readSSE(resp.Body, func(ev daemon.Event) error {
		printWatchEvent(ev)
		return nil
	})
	if errors.Is(err, context.Canceled) || ctx.Err() != nil {
		return nil
	}
	return err
}

// readSSE decodes "data:" payloads of a server-sent event stream into
// daemon events. Multi-line data fields are joined with newlines.
func readSSE(r io.Reader, fn func(daemon.Event) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var data []string
	flush := func() error {
		if len(data) == 0 {
			return nil
		}
		payload := strings.Join(data, "\n")
		data = data[:0]
		var ev daemon.Event
		if err := json.Unmarshal([]byte(payload), &ev); err != nil {
			return fmt.Errorf("decoding stream event: %w", err)
		}
		return fn(ev)
	}

	for sc.Scan() {
		line := sc.Text()
		switch {
		case line == "":
			if err := flush(); err != nil {
				return err
			}
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}
	return flush()
}

func printWatchEvent(ev daemon.Event) {
	ov := ev.Snapshot.Overview
	fmt.Printf("  %s  %-8s spent %s  remaining %s  alerts %d\n",
		ev.Timestamp.Local().Format(time.TimeOnly),
		ev.Type,
		cli.FormatMoney(ov.TotalSpent),
		cli.FormatMoney(ov.Remaining),
		ov.AlertCount,
	)
	if ev.Type == "snapshot" || ev.Delta.AlertsChanged {
		for _, a := range budget.Visible(ev.Snapshot.Alerts) {
			fmt.Println("    " + cli.RenderAlert(a))
		}
	}
}
