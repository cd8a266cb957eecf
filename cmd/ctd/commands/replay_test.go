package commands

import (
	"bytes"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/agiangrant/toolkit"
)

func TestParseScript(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"defaults", "[[step]]\naction = \"select_all\"\n", ""},
		{"unknown action", "[[step]]\naction = \"swipe\"\n", "unknown action"},
		{"unknown key", "[[step]]\naction = \"key\"\nkey = \"f13\"\n", "unknown key"},
		{"unknown button", "[[step]]\naction = \"popup\"\nbutton = \"share\"\n", "unknown popup button"},
		{"unknown pan state", "[[step]]\naction = \"pan\"\nstate = \"flung\"\n", "unknown pan state"},
		{"malformed", "[[step]\n", "failed to parse script"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			script, err := ParseScript([]byte(tt.input))
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("ParseScript: %v", err)
				}
				if script.Field.Width != 200 || script.Field.Height != 20 {
					t.Errorf("field = %+v", script.Field)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestRunScript(t *testing.T) {
	script, err := ParseScript([]byte(`
[field]
focus = true

[[step]]
action = "text"
text = "hello"

[[step]]
action = "key"
key = "backspace"

[[step]]
action = "select_all"
`))
	if err != nil {
		t.Fatalf("ParseScript: %v", err)
	}
	tk, err := toolkit.New(toolkit.DefaultConfig(), toolkit.WithLogger(zap.NewNop()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var out bytes.Buffer
	if err := RunScript(&out, tk, script); err != nil {
		t.Fatalf("RunScript: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines:\n%s", len(lines), out.String())
	}
	if !strings.Contains(lines[0], `text="hello" cursor=5`) {
		t.Errorf("step 1: %s", lines[0])
	}
	if !strings.Contains(lines[1], `text="hell" cursor=4`) {
		t.Errorf("step 2: %s", lines[1])
	}
	if !strings.Contains(lines[2], `selected="hell"`) {
		t.Errorf("step 3: %s", lines[2])
	}
}
