// Package api exposes read-side item views in a transport-friendly format.
// It is the one place caller-supplied stage strings are normalized before
// they reach the core packages.
package api
