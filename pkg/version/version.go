// Package version carries build identification.
package version

// Current defines the application version.
// It defaults to "dev" and is overwritten at build time using -ldflags.
var Current = "dev"

// AppName is the service name reported in traces and help output.
const AppName = "texgraph"

// WireVersion is the container version this build writes.
const WireVersion = 1
