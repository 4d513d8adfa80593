package shared

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	if a == b {
		t.Fatalf("expected unique IDs, got %s twice", a)
	}
	if _, err := uuid.Parse(a); err != nil {
		t.Errorf("GenerateID() = %q is not a UUID: %v", a, err)
	}
}

func TestMarshalJSON(t *testing.T) {
	tc := []struct {
		name   string
		pretty bool
		want   string
	}{
		{name: "compact", pretty: false, want: `{"a":1}`},
		{name: "pretty", pretty: true, want: "{\n  \"a\": 1\n}"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MarshalJSON(map[string]int{"a": 1}, tt.pretty)
			if err != nil {
				t.Fatalf("MarshalJSON() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("MarshalJSON() = %q, want %q", got, tt.want)
			}
		})
	}

	t.Run("keeps HTML characters", func(t *testing.T) {
		got, err := MarshalJSON(map[string]string{"name": "Zoë & <Ana>"}, false)
		if err != nil {
			t.Fatalf("MarshalJSON() error = %v", err)
		}
		if want := `{"name":"Zoë & <Ana>"}`; string(got) != want {
			t.Errorf("MarshalJSON() = %q, want %q", got, want)
		}
	})

	t.Run("unsupported value", func(t *testing.T) {
		if _, err := MarshalJSON(make(chan int), false); err == nil {
			t.Error("expected error for channel value")
		}
	})
}

func TestNewFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "staffdir.log")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}
	logger.Info("hello from test")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "hello from test") {
		t.Errorf("log file missing entry, got %q", data)
	}
}

func TestVerifyAndReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.json")
	if err := os.WriteFile(path, []byte(`{}`), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	t.Run("reads file", func(t *testing.T) {
		data, err := VerifyAndReadFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(data) != "{}" {
			t.Errorf("unexpected content %q", data)
		}
	})

	t.Run("empty path", func(t *testing.T) {
		if _, err := VerifyAndReadFile(""); !errors.Is(err, ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("directory", func(t *testing.T) {
		if _, err := VerifyAndReadFile(dir); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("missing", func(t *testing.T) {
		if _, err := VerifyAndReadFile(filepath.Join(dir, "nope.json")); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}
