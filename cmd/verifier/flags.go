package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

var version = "dev"

type cliConfig struct {
	configFile    string
	topic         string
	streamerPeer  string
	casEndpoint   string
	casBackend    string
	azureURL      string
	azureContainer string
	wsURL         string // when set, connect as a websocket client instead of reading stdin
	displayQueue  int
	logLevel      string
	metricsAddr   string
	showVersion   bool

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
	fs := flag.NewFlagSet("verifier", flag.ContinueOnError)
	fs.SetOutput(os.Stdout)

	cfg := &cliConfig{}
	var hookScripts stringSliceFlag
	var hookWebhooks stringSliceFlag

	fs.StringVar(&cfg.configFile, "config", "", "Path to a YAML config file (optional; accepted but not read by this command)")
	fs.StringVar(&cfg.topic, "gossipsub-topic", "live_like_video", "Transport topic to subscribe to")
	fs.StringVar(&cfg.streamerPeer, "streamer-peer-id", "", "Expected publisher peer id (optional, for future policy use)")
	fs.StringVar(&cfg.casEndpoint, "cas-endpoint", "http://localhost:5001/api/v0/", "CAS HTTP endpoint (not read by the memory or azureblob backends)")
	fs.StringVar(&cfg.casBackend, "cas-backend", "memory", "CAS backend: memory|azureblob")
	fs.StringVar(&cfg.azureURL, "azure-url", "", "Azure Blob Storage service URL (azureblob backend)")
	fs.StringVar(&cfg.azureContainer, "azure-container", "chronicle", "Azure Blob Storage container name")
	fs.StringVar(&cfg.wsURL, "ws-url", "", "Websocket relay URL to subscribe through (empty = read ndjson frames from stdin)")
	fs.IntVar(&cfg.displayQueue, "display-queue-size", 10, "Bound on the emitted chat history")
	fs.StringVar(&cfg.logLevel, "log-level", "info", "Log level: debug|info|warn|error")
	fs.StringVar(&cfg.metricsAddr, "metrics-addr", ":9091", "Listen address for the /metrics endpoint")
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

	if cfg.displayQueue < 1 {
		return nil, fmt.Errorf("display-queue-size must be >= 1")
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
