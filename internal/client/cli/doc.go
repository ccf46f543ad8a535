// Package cli is the interactive perfumekeeper shell: it reads commands
// from stdin, prompts for their fields and prints results.
package cli
