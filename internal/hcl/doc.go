// Package hcl provides the concrete HCL implementation of the config.Loader
// interface. It is responsible for file discovery, parsing, decoding the
// dashboard blocks and converting cty values into plain Go values.
package hcl
