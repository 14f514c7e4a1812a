// Package model defines the in-memory representation of a declared dashboard
// as the resolution engine sees it: components and controls with their
// declared actions, the trigger records supplied for a resolution pass, the
// sentinel control values, the rendering capability interfaces that visual
// component kinds implement, and the error taxonomy of a pass.
//
// Components are created once at build time and are read-only afterwards.
// In particular a component's Config is never mutated; every pass derives a
// fresh copy before applying parameters.
package model
