package commands

import (
	"coderops/internal/config"
	"coderops/internal/output"
	"coderops/internal/ui"
)

// RunConfigInit writes the resolved configuration to its file so defaults can
// be inspected and edited.
func RunConfigInit() {
	ui.ShowHeader("Config Init")

	cfg, err := config.Load()
	if err != nil {
		output.Fatal(err)
	}
	if err := config.Save(cfg); err != nil {
		output.Fatal(err)
	}
	output.Print(map[string]interface{}{
		"path":   config.Path(),
		"config": cfg,
	}, func() {
		ui.ShowSuccess("wrote %s", config.Path())
	})
}
