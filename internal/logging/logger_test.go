package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestHelpersWriteToGlobalLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core).Sugar())
	defer SetLogger(nil)

	Info("hello", "host", "koomy.app")
	Warn("careful")
	Debug("details")

	if logs.Len() != 3 {
		t.Fatalf("Expected 3 entries, got %d", logs.Len())
	}
	entry := logs.All()[0]
	if entry.Message != "hello" {
		t.Errorf("Unexpected message %q", entry.Message)
	}
	if entry.ContextMap()["host"] != "koomy.app" {
		t.Errorf("Expected host field, got %v", entry.ContextMap())
	}
}

func TestGetLogger_FallbackWithoutInit(t *testing.T) {
	SetLogger(nil)
	if GetLogger() == nil {
		t.Fatal("Expected fallback logger")
	}
	SetLogger(nil)
}

func TestInit(t *testing.T) {
	if err := Init("development", true); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer SetLogger(nil)
	if !GetLogger().Desugar().Core().Enabled(zapcore.DebugLevel) {
		t.Error("Expected debug level enabled")
	}
}
