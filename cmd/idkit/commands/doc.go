// Package commands defines the idkit CLI and wires dependencies for subcommands.
//
// Commands
//
//   - verify           Request a proof of personhood from a wallet
//   - verify-category  Request a credential-category proof from a wallet
//   - hash-signal      Print the field element a signal hashes to
//   - wallet respond   Answer a connector URL as a wallet would (local relays)
//
// # Implementation
//
// The root command validates flags and builds the dependency graph (logger,
// relay client, verification service) before any subcommand runs. The bridge
// URL is checked there, so a bad --bridge fails before any network I/O.
package commands
