package ui

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/forest-guardian/lakewatch/internal/config"
	"github.com/forest-guardian/lakewatch/internal/properties"
)

// DefaultConfigPath is where the menu and `config init` write the defaults.
func DefaultConfigPath() string {
	return filepath.Join(properties.RootPath(), "data", "config", "lakewatch.yaml")
}

// InitConfig handles the UI for writing the default configuration
func InitConfig(path string) {
	if path == "" {
		path = DefaultConfigPath()
	}
	if _, err := os.Stat(path); err == nil {
		if !ReadYesNo(fmt.Sprintf("%s already exists. Overwrite?", path)) {
			return
		}
	}
	if err := config.WriteDefault(path); err != nil {
		PrintError(fmt.Sprintf("Error writing config: %s", err.Error()))
		return
	}
	PrintSuccess(fmt.Sprintf("Default configuration written to %s", path))
}
