// Package cli provides the interactive credvault command-line client.
//
// It dials the gRPC endpoint, keeps the session tokens in memory and runs a
// REPL over the vault operations: register, login, save, update, verify,
// list, delete, audit and logout. An expired access token is refreshed once
// transparently.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
