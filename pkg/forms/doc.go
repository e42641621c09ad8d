// Package forms binds one registered screen to an object type and turns it
// into rendered output or saved values.
//
// A Form is stateless: View, Render and Save re-resolve the screen, its
// sections and their controls from the registry on every call, so entities
// registered later are picked up immediately. Containers and controls the
// principal may not see are skipped together with their children.
package forms
