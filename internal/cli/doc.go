// Package cli provides command-line interface setup and configuration
// for the telephone application. It handles flag parsing, command
// creation, configuration management using cobra and viper, and builds
// the collaborators a run needs from the resolved flags.
package cli
