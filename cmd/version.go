// File: cmd/version.go
package cmd

// Version is the application version.
// Intended to be set at build time via ldflags, for example:
// go build -ldflags "-X github.com/sbenkov/aviator/cmd.Version=1.0.0"
var Version = "0.1.0"
