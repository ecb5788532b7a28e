// Package app wires application dependencies for the CLI.
//
// It validates Config, then builds the logger, relay client and verification
// service, exposing them via the Wire struct for commands to use.
package app
