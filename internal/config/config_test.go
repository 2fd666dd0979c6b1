package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestDefaultPassesValidate(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default() invalid: %v", err)
	}
}

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Fatalf("Load(missing) = %+v, want Default()", cfg)
	}
}

func TestLoadEmptyPathReturnsDefault(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Fatalf("Load(\"\") = %+v, want Default()", cfg)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chronicle.yaml")
	content := "video_segment_duration: 2\ngossipsub_topic: my_topic\npin_stream: true\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.VideoSegmentDuration != 2 || cfg.GossipsubTopic != "my_topic" || !cfg.PinStream {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.DefaultCASEndpoint != defaultCASEndpoint {
		t.Fatalf("unset field should keep its default, got %q", cfg.DefaultCASEndpoint)
	}
}

func TestValidateRejectsBadSegmentDuration(t *testing.T) {
	cfg := Default()
	cfg.VideoSegmentDuration = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero segment duration")
	}
}

func TestValidateRejectsUnknownBackend(t *testing.T) {
	cfg := Default()
	cfg.CASBackend = "s3"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unsupported cas_backend")
	}
}

func TestValidateRejectsEmptyTopic(t *testing.T) {
	cfg := Default()
	cfg.GossipsubTopic = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for empty gossipsub_topic")
	}
}
