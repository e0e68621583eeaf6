// Package scaffold creates a new Puzzle project from a published sample
// release. A run validates the request, fetches the release metadata,
// extracts the release archive into a private staging directory, promotes
// it to the destination and rewrites the project's package.json.
//
// Every failure is reported as a *StepError carrying the state that failed
// and one of the sentinel kinds, so callers can branch with errors.Is.
package scaffold
