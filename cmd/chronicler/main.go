// Command chronicler runs the archival pipeline (spec.md §4.3): it reads
// line-delimited video/chat events from stdin, threads them through the
// Chronicler's tier buffers, and on EOF finalizes the stream and prints
// the resulting root CID.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alxayo/chronicle/internal/cas"
	"github.com/alxayo/chronicle/internal/chronicle"
	"github.com/alxayo/chronicle/internal/dag"
	"github.com/alxayo/chronicle/internal/hooks"
	"github.com/alxayo/chronicle/internal/logger"
)

func main() {
	cliCfg, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}
	if cliCfg.showVersion {
		fmt.Println(version)
		return
	}

	logger.Init()
	if err := logger.SetLevel(cliCfg.logLevel); err != nil {
		fmt.Printf("Warning: invalid log level %q, using default\n", cliCfg.logLevel)
	}
	log := logger.Logger().With("component", "cli")

	client, err := buildCAS(cliCfg)
	if err != nil {
		log.Error("failed to construct CAS client", "error", err)
		os.Exit(1)
	}

	hm := buildHooks(cliCfg, log)
	defer hm.Close()

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(cliCfg.metricsAddr, mux); err != nil {
			log.Warn("metrics server stopped", "error", err)
		}
	}()

	chron := chronicle.New(client, chronicle.Config{
		VideoSegmentDuration: cliCfg.segmentDur,
		PinStream:            cliCfg.pinStream,
	}, hm)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	events := make(chan chronicle.Event, 64)
	go readStdinEvents(ctx, log, events)

	log.Info("chronicler started", "version", version, "segment_duration", cliCfg.segmentDur)

	runCtx, runCancel := context.WithCancel(ctx)
	defer runCancel()
	done := make(chan struct{})
	var rootCID cas.CID
	var runErr error
	go func() {
		rootCID, runErr = chron.Run(runCtx, events)
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		log.Info("shutdown signal received")
		runCancel()

		select {
		case <-done:
		case <-time.After(5 * time.Second):
			log.Error("forced exit after timeout waiting for chronicler to finalize")
			os.Exit(1)
		}
	}

	if runErr != nil {
		log.Error("chronicler run failed", "error", runErr)
		os.Exit(1)
	}
	fmt.Println(rootCID.String())
}

// readStdinEvents decodes one JSON object per line from stdin into
// chronicle.Event values and forwards them on events, closing it at EOF
// or ctx cancellation. It always terminates with a FinalizeEvent so the
// Chronicler drains its buffers and returns a root CID.
func readStdinEvents(ctx context.Context, log interface {
	Error(string, ...any)
	Warn(string, ...any)
}, events chan<- chronicle.Event) {
	defer close(events)
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return
		default:
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		ev, err := decodeLine(line)
		if err != nil {
			log.Warn("skipping malformed input line", "error", err)
			continue
		}
		select {
		case events <- ev:
		case <-ctx.Done():
			return
		}
	}
	if err := scanner.Err(); err != nil {
		log.Error("stdin read error", "error", err)
	}
	select {
	case events <- chronicle.FinalizeEvent{}:
	case <-ctx.Done():
	}
}

// wireEvent is the envelope decodeLine expects on each input line: exactly
// one of video or chat is populated.
type wireEvent struct {
	Timestamp int64                `json:"timestamp"`
	Video     *cas.Link            `json:"video,omitempty"`
	Chat      *dag.UnsignedMessage `json:"chat,omitempty"`
}

func decodeLine(line string) (chronicle.Event, error) {
	var we wireEvent
	if err := json.Unmarshal([]byte(line), &we); err != nil {
		return nil, err
	}
	switch {
	case we.Video != nil:
		return chronicle.VideoEvent{Timestamp: we.Timestamp, Video: *we.Video}, nil
	case we.Chat != nil:
		return chronicle.ChatEvent{Msg: *we.Chat}, nil
	default:
		return nil, fmt.Errorf("input line has neither video nor chat field")
	}
}

func buildCAS(cfg *cliConfig) (cas.Client, error) {
	switch cfg.casBackend {
	case "azureblob":
		return cas.NewAzureBlobCAS(context.Background(), cfg.azureURL, cfg.azureContainer, logger.Logger())
	default:
		return cas.NewMemCAS(), nil
	}
}

func buildHooks(cfg *cliConfig, log interface {
	Warn(string, ...any)
}) *hooks.HookManager {
	hm := hooks.NewHookManager(hooks.HookConfig{
		Timeout:     cfg.hookTimeout,
		Concurrency: cfg.hookConcurrency,
		StdioFormat: cfg.hookStdioFormat,
	}, nil)

	timeout, err := time.ParseDuration(cfg.hookTimeout)
	if err != nil || timeout <= 0 {
		timeout = 30 * time.Second
	}

	for _, a := range cfg.hookScripts {
		parts := strings.SplitN(a, "=", 2)
		id := parts[0] + "-script-" + uuid.NewString()
		if err := hm.RegisterHook(hooks.EventType(parts[0]), hooks.NewShellHook(id, parts[1], timeout)); err != nil {
			log.Warn("failed to register hook script", "spec", a, "error", err)
		}
	}
	for _, a := range cfg.hookWebhooks {
		parts := strings.SplitN(a, "=", 2)
		id := parts[0] + "-webhook-" + uuid.NewString()
		if err := hm.RegisterHook(hooks.EventType(parts[0]), hooks.NewWebhookHook(id, parts[1], timeout)); err != nil {
			log.Warn("failed to register hook webhook", "spec", a, "error", err)
		}
	}
	return hm
}
