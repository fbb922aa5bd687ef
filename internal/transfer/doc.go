// Package transfer downloads archives over HTTP and unpacks them, exposing
// byte progress that can be polled from another goroutine.
//
// Files:
//   - counter.go: Counter, the shared current/total pair
//   - download.go: Download, a single HTTP GET into a writer
//   - unpack.go: Unpack for .tar.gz, .tar.xz and .zip archives
//   - transfer.go: Transfer, the download-then-unpack task
package transfer
