// Package commands implements the capctl subcommands.
package commands

import (
	"github.com/tolaworks/caps/config"
	"github.com/tolaworks/caps/errors"
	"github.com/tolaworks/caps/manifest"
)

// Shared state populated by the root command before any subcommand runs.
var (
	Config      *config.Config
	JSONOutput  bool
	PlainOutput bool
)

// loadProject resolves the manifest path (argument or configured
// default) and applies it to a fresh engine.
func loadProject(args []string) (*manifest.Project, error) {
	path := ""
	if len(args) > 0 {
		path = args[0]
	} else if Config != nil {
		path = Config.Manifest
	}
	if path == "" {
		return nil, errors.New("no manifest given and no default configured")
	}

	m, err := manifest.Load(path)
	if err != nil {
		return nil, err
	}
	return m.Apply()
}
