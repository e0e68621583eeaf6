// Package cli wires the puzzle commands into a Cobra command tree. The
// Dispatcher picks the command named by the first positional argument,
// binds its option table as pflags and runs it. Command implementations
// delegate to internal packages for business logic and only handle option
// parsing and user-facing output.
package cli
