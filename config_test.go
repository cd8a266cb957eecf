package toolkit

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/agiangrant/toolkit/text"
	"github.com/agiangrant/toolkit/text/controller"
	"github.com/agiangrant/toolkit/text/decorator"
	"github.com/agiangrant/toolkit/visual"
)

func TestLoadConfigMissingFile(t *testing.T) {
	config, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if config != DefaultConfig() {
		t.Errorf("config = %+v, want defaults", config)
	}
}

func TestConfigSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "toolkit.toml")
	want := DefaultConfig()
	want.Log.Level = "debug"
	want.Text.LineWrap = true
	want.Text.Alignment = "center"
	want.Text.MaxCharacters = 12
	want.Visual.DebugWireframe = true
	want.Visual.DesiredWidth = 64

	if err := want.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got != want {
		t.Errorf("round trip:\n got %+v\nwant %+v", got, want)
	}
}

func TestParseConfig(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
		check   func(t *testing.T, c Config)
	}{
		{
			name:  "empty takes defaults",
			input: "",
			check: func(t *testing.T, c Config) {
				if c != DefaultConfig() {
					t.Errorf("config = %+v", c)
				}
			},
		},
		{
			name: "zero numbers take defaults",
			input: `
[text]
cursor_blink_interval_ms = 0
scroll_speed = 0
`,
			check: func(t *testing.T, c Config) {
				d := DefaultConfig()
				if c.Text.CursorBlinkIntervalMS != d.Text.CursorBlinkIntervalMS {
					t.Errorf("blink interval = %d", c.Text.CursorBlinkIntervalMS)
				}
				if c.Text.ScrollSpeed != d.Text.ScrollSpeed {
					t.Errorf("scroll speed = %v", c.Text.ScrollSpeed)
				}
			},
		},
		{
			name: "unset booleans keep defaults",
			input: `
[text]
ligatures = true
`,
			check: func(t *testing.T, c Config) {
				if !c.Text.Ligatures || !c.Text.HorizontalScroll || !c.Text.SelectionEnabled {
					t.Errorf("text = %+v", c.Text)
				}
			},
		},
		{
			name:    "bad alignment",
			input:   "[text]\nalignment = \"justify\"\n",
			wantErr: "text.alignment",
		},
		{
			name:    "bad vertical alignment",
			input:   "[text]\nvertical_alignment = \"middle\"\n",
			wantErr: "text.vertical_alignment",
		},
		{
			name:    "bad log format",
			input:   "[log]\nformat = \"xml\"\n",
			wantErr: "log.format",
		},
		{
			name:    "negative loads",
			input:   "[visual]\nmax_concurrent_loads = -1\n",
			wantErr: "max_concurrent_loads",
		},
		{
			name:    "malformed",
			input:   "[text\n",
			wantErr: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ParseConfig([]byte(tt.input))
			if tt.check == nil {
				if err == nil {
					t.Fatal("expected an error")
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("error = %v, want it to mention %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseConfig: %v", err)
			}
			tt.check(t, c)
		})
	}
}

func TestConfigConversions(t *testing.T) {
	c := DefaultConfig()
	c.Text.LineWrap = true
	c.Text.Alignment = "end"
	c.Text.VerticalAlignment = "bottom"
	c.Text.CursorBlinkDurationMS = 3000
	c.Text.MaxCharacters = 8
	c.Visual.MaxConcurrentLoads = 2
	c.Visual.HTTPTimeoutMS = 1500
	c.Loop.TickMS = 5

	cc := c.Text.Controller()
	if cc.Layout != text.MultiLineBox {
		t.Errorf("layout = %v, want multi-line", cc.Layout)
	}
	if cc.HorizontalAlignment != text.AlignEnd || cc.VerticalAlignment != text.AlignBottom {
		t.Errorf("alignment = %v/%v", cc.HorizontalAlignment, cc.VerticalAlignment)
	}
	if cc.MaximumNumberOfCharacters != 8 {
		t.Errorf("max characters = %d", cc.MaximumNumberOfCharacters)
	}

	dc := c.Text.Decorator()
	if dc.BlinkDuration != 3*time.Second {
		t.Errorf("blink duration = %v", dc.BlinkDuration)
	}
	if dc.BlinkInterval != 500*time.Millisecond {
		t.Errorf("blink interval = %v", dc.BlinkInterval)
	}

	lc := c.Visual.Loader()
	if lc.MaxConcurrent != 2 || lc.HTTPTimeout != 1500*time.Millisecond {
		t.Errorf("loader = %+v", lc)
	}
	if got := c.Loop.Loop().TickInterval; got != 5*time.Millisecond {
		t.Errorf("tick = %v", got)
	}
}

func TestNewToolkit(t *testing.T) {
	config := DefaultConfig()
	config.Text.MaxCharacters = 4
	tk, err := New(config, WithLogger(zap.NewNop()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer tk.Shutdown()

	v := tk.CreateVisual(visual.PropertyMap{visual.KeyVisualType: "COLOR", visual.KeyMixColor: "#ff0000"})
	if v == nil || v.Type() != visual.Color {
		t.Fatalf("CreateVisual = %v", v)
	}

	tf := tk.NewTextField("name")
	tf.SetSize(text.Vector2{X: 200, Y: 20})
	tf.FocusGained()
	tf.KeyEvent(controller.KeyEvent{Text: "hello"})
	tk.Loop().RunOnce(time.Now())
	if got := tf.Text(); got != "hell" {
		t.Errorf("text = %q, want %q", got, "hell")
	}

	tf.SelectAll()
	tk.Loop().RunOnce(time.Now())
	tf.PopupButtonTouched(decorator.ButtonCopy)
	if tk.Clipboard().NumberOfItems() != 1 {
		t.Errorf("clipboard items = %d, want 1", tk.Clipboard().NumberOfItems())
	}

	c := tk.NewControl("plain", nil)
	c.SetBackgroundColor("#00ff00")
	c.OnSceneConnection()
	if !c.IsResourceReady() {
		t.Error("background not ready")
	}

	config.Log.Format = "yaml"
	if _, err := New(config); err == nil {
		t.Error("expected an invalid config to fail")
	}
}
