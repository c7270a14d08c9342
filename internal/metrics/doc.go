// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package metrics owns every Prometheus collector exported by retux.
// Collectors register on the default registry through promauto; helpers keep
// label values bounded.
package metrics
