// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package config loads retux configuration with the precedence
// ENV > file > defaults. Files are YAML or TOML, parsed strictly: unknown
// keys are errors. A Holder watches the file and hot-reloads it.
package config
