// Package runtime detects the Node.js toolchain a scaffolded project needs.
package runtime
