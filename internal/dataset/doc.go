// Package dataset maps dataset names to loaders and memoizes loads within a
// single resolution pass.
//
// A Registry is populated once at build time and is read-only afterwards, so
// it can be shared by concurrent passes. Each pass creates its own Pass, which
// collapses concurrent loads of the same name and parameters into one call.
package dataset
