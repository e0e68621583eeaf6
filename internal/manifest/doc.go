// Package manifest patches the package.json of a freshly scaffolded project.
// The file is checked against an embedded JSON schema, its name and author
// fields are rewritten in place without reordering keys, and it is written
// back with two-space indentation.
package manifest
