package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

// version is injected at build time with -ldflags "-X main.version=...".
var version = "dev"

// cliConfig holds user supplied flag values prior to translation into
// chronicle.Config so main.go can validate and map, following the
// rtmp-server CLI's cliConfig/parseFlags split.
type cliConfig struct {
	configFile   string
	segmentDur   int
	pinStream    bool
	topic        string
	streamerPeer string
	casEndpoint  string
	casBackend   string
	azureURL     string
	azureContainer string
	inputNDJSON  bool
	logLevel     string
	metricsAddr  string
	showVersion  bool

	hookScripts     []string
	hookWebhooks    []string
	hookStdioFormat string
	hookTimeout     string
	hookConcurrency int
}

type stringSliceFlag []string

func (s *stringSliceFlag) String() string { return strings.Join(*s, ", ") }
func (s *stringSliceFlag) Set(value string) error {
	*s = append(*s, value)
	return nil
}

func parseFlags(args []string) (*cliConfig, error) {
	fs := flag.NewFlagSet("chronicler", flag.ContinueOnError)
	fs.SetOutput(os.Stdout)

	cfg := &cliConfig{}
	var hookScripts stringSliceFlag
	var hookWebhooks stringSliceFlag

	fs.StringVar(&cfg.configFile, "config", "", "Path to a YAML config file (optional; accepted but not read by this command)")
	fs.IntVar(&cfg.segmentDur, "video-segment-duration", 4, "Seconds archived per video segment")
	fs.BoolVar(&cfg.pinStream, "pin-stream", false, "Recursively pin the final stream root")
	fs.StringVar(&cfg.topic, "gossipsub-topic", "live_like_video", "Transport topic carrying video/chat events")
	fs.StringVar(&cfg.streamerPeer, "streamer-peer-id", "", "Expected publisher peer id (optional)")
	fs.StringVar(&cfg.casEndpoint, "cas-endpoint", "http://localhost:5001/api/v0/", "CAS HTTP endpoint (not read by the memory or azureblob backends)")
	fs.StringVar(&cfg.casBackend, "cas-backend", "memory", "CAS backend: memory|azureblob")
	fs.StringVar(&cfg.azureURL, "azure-url", "", "Azure Blob Storage service URL (azureblob backend)")
	fs.StringVar(&cfg.azureContainer, "azure-container", "chronicle", "Azure Blob Storage container name")
	fs.BoolVar(&cfg.inputNDJSON, "stdin", true, "Read line-delimited JSON events from stdin (stdin is the only input source; the value is not consulted)")
	fs.StringVar(&cfg.logLevel, "log-level", "info", "Log level: debug|info|warn|error")
	fs.StringVar(&cfg.metricsAddr, "metrics-addr", ":9090", "Listen address for the /metrics endpoint")
	fs.BoolVar(&cfg.showVersion, "version", false, "Print version and exit")

	fs.Var(&hookScripts, "hook-script", "Hook script in format event_type=script_path (can be specified multiple times)")
	fs.Var(&hookWebhooks, "hook-webhook", "Hook webhook in format event_type=webhook_url (can be specified multiple times)")
	fs.StringVar(&cfg.hookStdioFormat, "hook-stdio-format", "", "Enable structured stdio output: json|env (empty=disabled)")
	fs.StringVar(&cfg.hookTimeout, "hook-timeout", "30s", "Timeout for hook execution")
	fs.IntVar(&cfg.hookConcurrency, "hook-concurrency", 10, "Maximum concurrent hook executions")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg.hookScripts = hookScripts
	cfg.hookWebhooks = hookWebhooks

	if cfg.segmentDur < 1 {
		return nil, fmt.Errorf("video-segment-duration must be >= 1")
	}
	switch cfg.logLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log-level %q", cfg.logLevel)
	}
	switch cfg.casBackend {
	case "memory", "azureblob":
	default:
		return nil, fmt.Errorf("invalid cas-backend %q", cfg.casBackend)
	}
	if cfg.casBackend == "azureblob" && cfg.azureURL == "" {
		return nil, fmt.Errorf("azure-url is required when cas-backend=azureblob")
	}
	if cfg.hookStdioFormat != "" && cfg.hookStdioFormat != "json" && cfg.hookStdioFormat != "env" {
		return nil, fmt.Errorf("invalid hook-stdio-format %q", cfg.hookStdioFormat)
	}
	for _, a := range cfg.hookScripts {
		if err := validateAssignment("hook-script", a); err != nil {
			return nil, err
		}
	}
	for _, a := range cfg.hookWebhooks {
		if err := validateAssignment("hook-webhook", a); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func validateAssignment(flagName, assignment string) error {
	parts := strings.SplitN(assignment, "=", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return fmt.Errorf("invalid %s format %q, expected event_type=value", flagName, assignment)
	}
	return nil
}
