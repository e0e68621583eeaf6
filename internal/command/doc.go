// Package command defines the contract every CLI command implements and the
// per-command option table the argument parser is configured from.
//
// Commands are collected into an explicit Registry at startup. Option
// declarations are tolerant: unknown type tags fall back to TypeAsIs and a
// short alias that is already taken is dropped instead of reported.
package command
