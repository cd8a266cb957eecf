package commands

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/agiangrant/toolkit/control"
	"github.com/agiangrant/toolkit/visual"
)

// Visual implements the 'ctd visual' command
func Visual(args []string) error {
	fs := flag.NewFlagSet("visual", flag.ExitOnError)
	propsPath := fs.String("props", "", "Visual property map (TOML)")
	configPath := fs.String("config", DefaultConfigFile, "Toolkit configuration")
	timeout := fs.Duration("timeout", 5*time.Second, "How long to wait for the visual")
	fs.Parse(args)

	if *propsPath == "" {
		return fmt.Errorf("-props is required")
	}
	data, err := os.ReadFile(*propsPath)
	if err != nil {
		return fmt.Errorf("failed to read properties: %w", err)
	}
	props, err := visual.ParsePropertyMap(data)
	if err != nil {
		return err
	}

	tk, err := loadToolkit(*configPath)
	if err != nil {
		return err
	}
	defer tk.Shutdown()

	v := tk.CreateVisual(props)
	if v == nil {
		return fmt.Errorf("%s does not describe a known visual", *propsPath)
	}
	fmt.Printf("Loading %s visual...\n", v.Type())

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	ready := false
	c := tk.NewControl("visual", nil)
	c.ResourceReadySignal().Connect(func(*control.Control) {
		ready = true
		cancel()
	})
	c.RegisterVisual(control.PropertyUserStart, v)
	c.OnSceneConnection()
	if !ready {
		_ = tk.Run(ctx)
	}

	status := c.GetVisualResourceStatus(control.PropertyUserStart)
	if !ready {
		return fmt.Errorf("visual not ready after %s (status %s)", *timeout, status)
	}
	size := v.NaturalSize()
	fmt.Printf("  ✓ %s %gx%g\n", status, size.X, size.Y)
	if status == visual.Failed {
		return fmt.Errorf("visual failed to load")
	}
	return nil
}
