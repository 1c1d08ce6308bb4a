// Package version provides version information for the binary.
package version

import "fmt"

// Service is the name reported by the status endpoint and the CLI.
const Service = "llm-server"

// Version is the current version of the application.
// This is set at build time using -ldflags.
var Version = "1.0.0"

// BuildTime is when the binary was built.
// This is set at build time using -ldflags.
var BuildTime = "unknown"

// String returns the formatted version information.
func String() string {
	return fmt.Sprintf("%s version %s (built %s)", Service, Version, BuildTime)
}
