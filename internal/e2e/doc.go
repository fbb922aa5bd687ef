// Package e2e holds end-to-end tests: a launcher service with its real
// capabilities behind the HTTP API, fed by a local upstream server.
package e2e
