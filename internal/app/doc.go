// Package app wires a dashboard declaration into a running resolution
// engine. It loads the declaration through a config.Loader, registers the
// renderer and source modules, builds and validates the component and
// dataset registries, and exposes resolution passes, data export and an HTTP
// surface, decoupled from any specific entrypoint like a CLI.
package app
