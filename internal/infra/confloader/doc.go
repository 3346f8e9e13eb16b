// Package confloader provides configuration loading mechanism.
//
// This package implements a configuration loader on top of koanf.
//
// Priority (highest to lowest):
//
//  1. Command-line flags (passed as overrides)
//  2. Environment variables (MESHNODE_ prefix, "__" between sections)
//  3. YAML configuration file
//  4. Default values already present in the target struct
//
// Watcher reports writes to the configuration file so callers can reload
// the settings that may change at run time.
package confloader
