// Package cli implements the launcherd command line.
//
// Files:
// - cli.go         (Config, MainWithArgs, Main)
// - cobra_root.go  (command tree)
// - actions.go     (indirection for tests)
// - serve.go       (daemon: config, logger, launcher service, HTTP server)
// - client.go      (enqueue, queue, library, watch against a running daemon)
// - logging.go     (zerolog setup)
package cli
