package commands

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"

	"github.com/agiangrant/toolkit"
	"github.com/agiangrant/toolkit/text"
	"github.com/agiangrant/toolkit/text/controller"
	"github.com/agiangrant/toolkit/text/decorator"
	"github.com/agiangrant/toolkit/textfield"
)

// Script is a replay script: the field to create and the steps to run on it.
type Script struct {
	Field FieldScript `toml:"field"`
	Steps []Step      `toml:"step"`
}

// FieldScript sets up the text field before the first step.
type FieldScript struct {
	Width     float32 `toml:"width"`
	Height    float32 `toml:"height"`
	Text      string  `toml:"text"`
	MaxLength int     `toml:"max_length"`
	MultiLine bool    `toml:"multi_line"`
	Focus     bool    `toml:"focus"`
}

// Step is one scripted input event.
type Step struct {
	Action string  `toml:"action"` // text, tap, key, select_all, select, long_press, pan, popup
	Text   string  `toml:"text"`
	Key    string  `toml:"key"`
	Count  int     `toml:"count"`
	X      float32 `toml:"x"`
	Y      float32 `toml:"y"`
	State  string  `toml:"state"` // started, continuing, finished or cancelled
	Button string  `toml:"button"`
}

var panStates = map[string]decorator.PanState{
	"started":    decorator.PanStarted,
	"continuing": decorator.PanContinuing,
	"finished":   decorator.PanFinished,
	"cancelled":  decorator.PanCancelled,
}

var popupButtons = map[string]decorator.Buttons{
	"cut":        decorator.ButtonCut,
	"copy":       decorator.ButtonCopy,
	"paste":      decorator.ButtonPaste,
	"select":     decorator.ButtonSelect,
	"select_all": decorator.ButtonSelectAll,
	"clipboard":  decorator.ButtonClipboard,
}

// Replay implements the 'ctd replay' command
func Replay(args []string) error {
	fs := flag.NewFlagSet("replay", flag.ExitOnError)
	scriptPath := fs.String("script", "", "Script to replay (TOML)")
	configPath := fs.String("config", DefaultConfigFile, "Toolkit configuration")
	fs.Parse(args)

	if *scriptPath == "" {
		return fmt.Errorf("-script is required")
	}
	data, err := os.ReadFile(*scriptPath)
	if err != nil {
		return fmt.Errorf("failed to read script: %w", err)
	}
	script, err := ParseScript(data)
	if err != nil {
		return err
	}

	tk, err := loadToolkit(*configPath)
	if err != nil {
		return err
	}
	defer tk.Shutdown()

	return RunScript(os.Stdout, tk, script)
}

// ParseScript decodes and checks a replay script.
func ParseScript(data []byte) (Script, error) {
	var script Script
	if err := toml.Unmarshal(data, &script); err != nil {
		return Script{}, fmt.Errorf("failed to parse script: %w", err)
	}
	if script.Field.Width <= 0 {
		script.Field.Width = 200
	}
	if script.Field.Height <= 0 {
		script.Field.Height = 20
	}
	for i, step := range script.Steps {
		if err := step.check(); err != nil {
			return Script{}, fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return script, nil
}

func (s Step) check() error {
	switch s.Action {
	case "text", "tap", "select_all", "select":
	case "key":
		if _, ok := controller.ParseKey(s.Key); !ok {
			return fmt.Errorf("unknown key %q", s.Key)
		}
	case "long_press", "pan":
		if _, ok := panStates[s.State]; s.State != "" && !ok {
			return fmt.Errorf("unknown pan state %q", s.State)
		}
	case "popup":
		if _, ok := popupButtons[s.Button]; !ok {
			return fmt.Errorf("unknown popup button %q", s.Button)
		}
	default:
		return fmt.Errorf("unknown action %q", s.Action)
	}
	return nil
}

// RunScript creates a text field on tk, runs every step and writes the
// field after each one to w.
func RunScript(w io.Writer, tk *toolkit.Toolkit, script Script) error {
	tf := tk.NewTextField("replay")
	tf.SetSize(text.Vector2{X: script.Field.Width, Y: script.Field.Height})
	tf.SetMultiLine(script.Field.MultiLine)
	if script.Field.MaxLength > 0 {
		tf.SetMaxLength(script.Field.MaxLength)
	}
	if script.Field.Text != "" {
		tf.SetText(script.Field.Text)
	}
	tf.OnSceneConnection()
	if script.Field.Focus {
		tf.FocusGained()
	}
	settle(tk)

	for i, step := range script.Steps {
		apply(tf, step)
		settle(tk)
		tk.Logger().Debug("step replayed", zap.Int("step", i+1), zap.String("action", step.Action))
		if err := report(w, i+1, step, tf); err != nil {
			return err
		}
	}
	return nil
}

func apply(tf *textfield.TextField, step Step) {
	switch step.Action {
	case "text":
		tf.KeyEvent(controller.KeyEvent{Text: step.Text})
	case "key":
		key, _ := controller.ParseKey(step.Key)
		tf.KeyEvent(controller.KeyEvent{Key: key})
	case "tap":
		count := step.Count
		if count == 0 {
			count = 1
		}
		tf.Tap(count, step.X, step.Y)
	case "select_all":
		tf.SelectAll()
	case "select":
		tf.Select(step.X, step.Y)
	case "long_press":
		tf.LongPress(panState(step.State, decorator.PanStarted), step.X, step.Y)
	case "pan":
		tf.Pan(panState(step.State, decorator.PanContinuing), text.Vector2{X: step.X, Y: step.Y})
	case "popup":
		tf.PopupButtonTouched(popupButtons[step.Button])
	}
}

func panState(name string, fallback decorator.PanState) decorator.PanState {
	if s, ok := panStates[name]; ok {
		return s
	}
	return fallback
}

// settle runs the loop until relayouts and ready notifications are done.
func settle(tk *toolkit.Toolkit) {
	tk.Loop().Drain(time.Now(), 16)
}

func report(w io.Writer, n int, step Step, tf *textfield.TextField) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%3d %-10s text=%q cursor=%d state=%s",
		n, step.Action, tf.Text(), tf.Controller().CursorIndex(), tf.Controller().State())
	if selected := tf.Controller().SelectedText(); selected != "" {
		fmt.Fprintf(&b, " selected=%q", selected)
	}
	d := tf.Decorator()
	if d.IsHighlightActive() {
		for _, h := range d.Highlights() {
			fmt.Fprintf(&b, " highlight=[%g,%g %g,%g]", h.X1, h.Y1, h.X2, h.Y2)
		}
		pos, size := d.HighlightBox()
		fmt.Fprintf(&b, " box=[%g,%g %gx%g]", pos.X, pos.Y, size.X, size.Y)
	}
	if d.IsPopupActive() {
		fmt.Fprintf(&b, " popup=%s", d.EnabledPopupButtons())
	}
	b.WriteByte('\n')
	_, err := io.WriteString(w, b.String())
	return err
}
