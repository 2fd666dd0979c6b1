// Hook system tests
package hooks

import (
	"context"
	"testing"
	"time"
)

// TestEvent tests basic event creation and functionality
func TestEvent(t *testing.T) {
	event := NewEvent(EventSecondFlushed).
		WithCID("bafybeigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi").
		WithTier("second").
		WithData("slot", 42).
		WithData("peer_count", 3)

	if event.Type != EventSecondFlushed {
		t.Errorf("Expected event type %s, got %s", EventSecondFlushed, event.Type)
	}

	if event.CID != "bafybeigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi" {
		t.Errorf("Expected CID to be set, got %s", event.CID)
	}

	if event.Tier != "second" {
		t.Errorf("Expected tier 'second', got %s", event.Tier)
	}

	if event.Data["slot"] != 42 {
		t.Errorf("Expected slot 42, got %v", event.Data["slot"])
	}

	if event.Data["peer_count"] != 3 {
		t.Errorf("Expected peer_count 3, got %v", event.Data["peer_count"])
	}

	// Tier takes precedence over CID in the string representation.
	str := event.String()
	if str != "second_flushed:second" {
		t.Errorf("Expected string 'second_flushed:second', got %s", str)
	}

	bare := NewEvent(EventMessageDropped)
	if bare.String() != "message_dropped" {
		t.Errorf("Expected bare string 'message_dropped', got %s", bare.String())
	}

	cidOnly := NewEvent(EventIdentityVerified).WithCID("bafyidentity")
	if cidOnly.String() != "identity_verified:bafyidentity" {
		t.Errorf("Expected CID-qualified string, got %s", cidOnly.String())
	}
}

// TestShellHook tests shell hook creation and basic functionality
func TestShellHook(t *testing.T) {
	hook := NewShellHook("test-hook", "/bin/echo", 10*time.Second)

	if hook.Type() != "shell" {
		t.Errorf("Expected hook type 'shell', got %s", hook.Type())
	}

	if hook.ID() != "test-hook" {
		t.Errorf("Expected hook ID 'test-hook', got %s", hook.ID())
	}

	// Test with custom command
	customHook := NewShellHookWithCommand("custom", "/bin/true", []string{}, 5*time.Second)
	if customHook.command != "/bin/true" {
		t.Errorf("Expected command '/bin/true', got %s", customHook.command)
	}
}

// TestHookManager tests hook manager registration and basic functionality
func TestHookManager(t *testing.T) {
	config := DefaultHookConfig()
	manager := NewHookManager(config, nil)

	// Test hook registration
	hook := NewShellHook("test", "/bin/true", 10*time.Second)
	err := manager.RegisterHook(EventSecondFlushed, hook)
	if err != nil {
		t.Errorf("Failed to register hook: %v", err)
	}

	// Test stats
	stats := manager.GetStats()
	if stats["total_hooks"] != 1 {
		t.Errorf("Expected 1 total hook, got %v", stats["total_hooks"])
	}

	// Test unregistration
	success := manager.UnregisterHook(EventSecondFlushed, "test")
	if !success {
		t.Error("Failed to unregister hook")
	}

	// Test event triggering (should not crash with no hooks)
	event := NewEvent(EventSecondFlushed)
	manager.TriggerEvent(context.Background(), *event)

	// Clean up
	manager.Close()
}

// TestStdioHook tests stdio hook creation and basic functionality
func TestStdioHook(t *testing.T) {
	hook := NewStdioHook("stdio-test", "json")

	if hook.Type() != "stdio" {
		t.Errorf("Expected hook type 'stdio', got %s", hook.Type())
	}

	if hook.ID() != "stdio-test" {
		t.Errorf("Expected hook ID 'stdio-test', got %s", hook.ID())
	}

	if hook.format != "json" {
		t.Errorf("Expected format 'json', got %s", hook.format)
	}
}

// TestWebhookHook tests webhook hook creation and basic functionality
func TestWebhookHook(t *testing.T) {
	hook := NewWebhookHook("webhook-test", "https://example.com/webhook", 30*time.Second)

	if hook.Type() != "webhook" {
		t.Errorf("Expected hook type 'webhook', got %s", hook.Type())
	}

	if hook.ID() != "webhook-test" {
		t.Errorf("Expected hook ID 'webhook-test', got %s", hook.ID())
	}

	if hook.url != "https://example.com/webhook" {
		t.Errorf("Expected URL 'https://example.com/webhook', got %s", hook.url)
	}

	// Test adding headers
	hook.AddHeader("Authorization", "Bearer token")
	if hook.headers["Authorization"] != "Bearer token" {
		t.Errorf("Expected Authorization header 'Bearer token', got %s", hook.headers["Authorization"])
	}
}
