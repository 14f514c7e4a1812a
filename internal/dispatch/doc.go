// Package dispatch implements the resolution pass: for every requested
// target it selects the applicable triggers, merges parameters, loads and
// narrows the dataset, and invokes the target's renderer.
//
// Targets are resolved independently and concurrently. A failing target
// yields an error marker in place of its artifact and never aborts its
// siblings. The Dispatcher holds no state between passes; dataset loads are
// memoized for the duration of a single pass only.
package dispatch
