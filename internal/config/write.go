// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/google/renameio/v2"
)

// ErrFileExists is returned by WriteFile when path exists and overwrite is off.
var ErrFileExists = errors.New("config file already exists")

// WriteFile atomically writes cfg to path in the format its extension names.
// The file is created 0600 since it may hold the token.
func WriteFile(path string, cfg AppConfig, overwrite bool) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrFileExists, path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("stat %s: %w", path, err)
		}
	}
	data, err := Marshal(format, cfg)
	if err != nil {
		return err
	}
	if err := renameio.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}
