package app

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"

	"github.com/dshills/linkedit/internal/engine"
	"github.com/dshills/linkedit/internal/filestore"
	"github.com/dshills/linkedit/internal/vfs"
)

func TestLogLevel_String(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LogLevelDebug, "DEBUG"},
		{LogLevelInfo, "INFO"},
		{LogLevelWarn, "WARN"},
		{LogLevelError, "ERROR"},
		{LogLevel(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.expected {
			t.Errorf("LogLevel(%d).String() = %q, expected %q", tt.level, got, tt.expected)
		}
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
	}{
		{"debug", LogLevelDebug},
		{"DEBUG", LogLevelDebug},
		{"info", LogLevelInfo},
		{"warn", LogLevelWarn},
		{"Warning", LogLevelWarn},
		{"error", LogLevelError},
		{"unknown", LogLevelInfo},
		{"", LogLevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLogLevel(tt.input); got != tt.expected {
			t.Errorf("ParseLogLevel(%q) = %d, expected %d", tt.input, got, tt.expected)
		}
	}
}

func TestLogger_Log(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{Level: LogLevelInfo, Output: &buf, Prefix: "test"})

	logger.Debug("hidden")
	logger.Info("hello %s", "world")
	logger.Error("failed")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("debug message should be filtered")
	}
	if !strings.Contains(out, "[INFO] test: hello world") {
		t.Errorf("missing info line in %q", out)
	}
	if !strings.Contains(out, "[ERROR] test: failed") {
		t.Errorf("missing error line in %q", out)
	}
	if n := strings.Count(out, "\n"); n != 2 {
		t.Errorf("got %d lines, want 2", n)
	}
}

func TestLogger_Fields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{Level: LogLevelDebug, Output: &buf})

	child := logger.WithField("session", "abc").WithComponent("config")
	child.Warn("reloaded")
	logger.Warn("plain")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines", len(lines))
	}
	if !strings.HasSuffix(lines[0], "reloaded {component=config, session=abc}") {
		t.Errorf("fields line = %q", lines[0])
	}
	if strings.Contains(lines[1], "{") {
		t.Errorf("parent logger gained fields: %q", lines[1])
	}
}

func TestLogger_SharedLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{Level: LogLevelError, Output: &buf})
	child := logger.WithComponent("x")

	child.Info("before")
	logger.SetLevel(LogLevelInfo)
	child.Info("after")

	if strings.Contains(buf.String(), "before") || !strings.Contains(buf.String(), "after") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestNullLogger(t *testing.T) {
	logger := NewNullLogger()
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	logger.Error("nothing")
	if buf.Len() != 0 {
		t.Errorf("null logger wrote %q", buf.String())
	}
}

func TestMessage(t *testing.T) {
	notFound := &filestore.PathError{Op: "load", Path: "f", Err: fs.ErrNotExist}
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"usage", usage("Usage: %s", "x"), "Usage: x"},
		{"nothing to delete", engine.ErrNothingToDelete, "Error: Nothing to delete"},
		{"nothing deleted", engine.ErrNothingDeleted, "Error: Could not delete any characters"},
		{"undo", engine.ErrNothingToUndo, "Nothing to undo"},
		{"redo", fmt.Errorf("wrapped: %w", engine.ErrNothingToRedo), "Nothing to redo"},
		{"not found", NewOperationError("load", "f", notFound), "Error: File 'f' not found"},
		{"permission", NewOperationError("load", "f", fs.ErrPermission), "Error: No permission to read 'f'"},
		{"decode", NewOperationError("load", "f", vfs.ErrDecode), "Error: Could not decode file 'f' (try different encoding)"},
		{"too large", NewOperationError("load", "f", &filestore.PathError{Op: "load", Path: "f", Err: filestore.ErrFileTooLarge}), "Error loading file: file too large"},
		{"save", NewOperationError("save", "f", &filestore.PathError{Op: "save", Path: "f", Err: errors.New("disk full")}), "Error saving file: disk full"},
		{"lua", NewOperationError("lua", "", errors.New("bad")), "Lua error: bad"},
		{"other", errors.New("odd"), "Error: odd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Message(tt.err); got != tt.want {
				t.Errorf("Message() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOperationError(t *testing.T) {
	base := errors.New("boom")
	err := NewOperationError("save", "a.txt", base)
	if err.Error() != "save a.txt: boom" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, base) {
		t.Error("Unwrap lost the cause")
	}
	if got := NewOperationError("lua", "", base).Error(); got != "lua: boom" {
		t.Errorf("Error() = %q", got)
	}
}
