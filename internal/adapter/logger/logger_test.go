package logger

import (
	"errors"
	"testing"

	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewWithCore("api", core)

	l.Info("order_created", "Order created", "req-1", map[string]interface{}{"order_id": int64(7)})
	l.Error("db_failed", "Query failed", "req-2", nil, errors.New("boom"))

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}

	info := entries[0].ContextMap()
	if info["service"] != "api" {
		t.Errorf("service = %v, want api", info["service"])
	}
	if info["action"] != "order_created" || info["request_id"] != "req-1" {
		t.Errorf("fields = %v", info)
	}
	details, ok := info["details"].(map[string]interface{})
	if !ok || details["order_id"] != int64(7) {
		t.Errorf("details = %v", info["details"])
	}
	if entries[0].Message != "Order created" {
		t.Errorf("Message = %q", entries[0].Message)
	}

	if entries[1].Level != zapcore.ErrorLevel {
		t.Errorf("Level = %v, want error", entries[1].Level)
	}
	if entries[1].ContextMap()["error"] != "boom" {
		t.Errorf("error field = %v", entries[1].ContextMap()["error"])
	}
	if _, ok := entries[1].ContextMap()["details"]; ok {
		t.Error("empty details should be omitted")
	}
}

func TestLoggerLevel(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := NewWithCore("api", core)

	l.Debug("noise", "dropped", "", nil)
	if logs.Len() != 0 {
		t.Errorf("debug entry logged at info level")
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, _, err := New("api", Options{Level: "loud"}); err == nil {
		t.Error("New() should reject unknown level")
	}
}
