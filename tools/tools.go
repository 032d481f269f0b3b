//go:build tools
// +build tools

// Package tools documents development tool dependencies.
// These tools are invoked via `go run` or installed globally; the versions
// here should track the ones pinned in go:generate directives.
package tools

// Development tools:
//
// mockgen - Mock generation for port interfaces (internal/mocks)
//   Invoked: go run go.uber.org/mock/mockgen@v0.6.0 (see internal/mocks/generate.go)
//   Version: v0.6.0 (matches go.uber.org/mock in go.mod)
//   Docs: https://github.com/uber-go/mock
