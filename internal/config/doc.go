// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package config loads drmplay configuration.
//
// Precedence is ENV > file > defaults. The YAML file is parsed strictly:
// unknown keys fail the load. Identity has no defaults and must be provided
// through either source.
package config
