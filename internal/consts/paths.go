package consts

import (
	"os"
	"path/filepath"
)

const (
	HeraldDirName  = ".herald"
	ConfigFileName = "config.yaml"
)

func HeraldHomeDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, HeraldDirName)
}

func DefaultConfigPath() string {
	return filepath.Join(HeraldHomeDir(), ConfigFileName)
}
