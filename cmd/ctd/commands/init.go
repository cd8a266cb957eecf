package commands

import (
	"flag"
	"fmt"
	"os"

	"github.com/agiangrant/toolkit"
)

// DefaultConfigFile is read by every command that takes -config.
const DefaultConfigFile = "toolkit.toml"

// Init implements the 'ctd init' command
func Init(args []string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	out := fs.String("o", DefaultConfigFile, "Output path")
	force := fs.Bool("force", false, "Overwrite an existing file")
	fs.Parse(args)

	if _, err := os.Stat(*out); err == nil && !*force {
		return fmt.Errorf("%s already exists (use -force to overwrite)", *out)
	}

	if err := toolkit.DefaultConfig().Save(*out); err != nil {
		return err
	}
	fmt.Printf("  ✓ Created %s\n", *out)
	return nil
}

func loadToolkit(path string) (*toolkit.Toolkit, error) {
	config, err := toolkit.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return toolkit.New(config)
}
