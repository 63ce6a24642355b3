// Package cli provides the interactive ConsultBook command-line client.
//
// It wires configuration, the local metadata store, the backend client and
// the auth services into a REPL. A typical session: "login" with an email,
// then a password or an emailed code, and on first sign-in the three-step
// profile setup. An interrupted setup continues with "resume".
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
