// Package buildinfo provides build information for meshnode.
//
// Values are injected at build time via ldflags:
//
//	go build -ldflags "-X github.com/yndnr/meshnode/internal/infra/buildinfo.Version=v1.0.0"
//
// The version is reported by --version and exported as the
// meshnode_build_info metric.
package buildinfo
