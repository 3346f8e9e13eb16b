// Package config provides node configuration for meshnode.
//
// This package defines the configuration structure and validation:
//
//   - spec.go: NodeConfig struct definition
//   - default.go: Default configuration values
//   - verify.go: Value validation
//
// Configuration is loaded via internal/infra/confloader and supports
// multiple sources: files, environment variables, and flags.
package config
