// Package jobkinds adapts the installation capabilities (game updates,
// component downloads, prefix creation) to tasks.Job.
//
// Each adapter maps its capability's own stage vocabulary onto tasks.Status in
// order and reports progress in one real unit: archive bytes for game updates
// and component downloads, completed steps for prefixes.
package jobkinds
