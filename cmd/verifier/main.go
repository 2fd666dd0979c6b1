// Command verifier runs the Chat Verifier (spec.md §4.5): it subscribes
// to a transport carrying chat/identity frames, resolves senders through
// the identity cache against the configured CAS, and serves the bounded,
// verified display queue — printed to stdout as each message emits.
package main

import (
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
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alxayo/chronicle/internal/cas"
	"github.com/alxayo/chronicle/internal/hooks"
	"github.com/alxayo/chronicle/internal/logger"
	"github.com/alxayo/chronicle/internal/transport"
	"github.com/alxayo/chronicle/internal/verifier"
	"github.com/alxayo/chronicle/internal/verify"
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

	sub, closeSub, err := buildTransport(cliCfg)
	if err != nil {
		log.Error("failed to construct transport", "error", err)
		os.Exit(1)
	}
	if closeSub != nil {
		defer closeSub()
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

	v := verifier.New(client, sub, verify.NewAddrVerify(), nil, verifier.Config{
		Topic:            cliCfg.topic,
		DisplayQueueSize: cliCfg.displayQueue,
	}, hm)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("verifier started", "version", version, "topic", cliCfg.topic)

	go printDisplayLoop(ctx, v)

	runErr := v.Run(ctx)
	if runErr != nil && runErr != context.Canceled {
		log.Error("verifier run ended", "error", runErr)
		os.Exit(1)
	}
	log.Info("verifier stopped")
}

// printDisplayLoop polls the bounded display queue and prints newly
// emitted lines to stdout, one JSON object per line, so a downstream
// renderer can tail the process's output.
func printDisplayLoop(ctx context.Context, v *verifier.Verifier) {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	printed := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap := v.Display().Snapshot()
			if len(snap) < printed {
				printed = 0 // queue rotated past what we'd printed; resync
			}
			for _, d := range snap[printed:] {
				line, err := json.Marshal(d)
				if err == nil {
					fmt.Println(string(line))
				}
			}
			printed = len(snap)
		}
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

// buildTransport returns a Subscriber for the configured source: a
// websocket relay client when ws-url is set, otherwise an ndjson reader
// over stdin. The returned close func (nil for stdin) must be called on
// shutdown.
func buildTransport(cfg *cliConfig) (transport.Subscriber, func(), error) {
	if cfg.wsURL == "" {
		return transport.NewNDJSON(os.Stdin, os.Stdout), nil, nil
	}
	conn, _, err := websocket.DefaultDialer.Dial(cfg.wsURL, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("dial websocket relay %s: %w", cfg.wsURL, err)
	}
	relay := transport.NewWSRelay(conn)
	return relay, func() { relay.Close() }, nil
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
