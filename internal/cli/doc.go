// Package cli is responsible for parsing command-line arguments, validating
// user input, and handling process-level concerns like exit codes. It maps
// the validate, resolve, export and serve commands onto package app, with
// flags taking precedence over DASHGRID_* environment settings.
package cli
