// Package testsupport provides shared helpers for package tests: temp-dir
// configs, store construction with cleanup, and item factories.
package testsupport
