// Package release resolves sample-project releases on GitHub. It builds the
// releases API URL for the standard or lite sample repository, at the latest
// release or at a specific tag, and decodes the archive links from the
// response.
package release
