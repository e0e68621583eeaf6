// Package archive downloads a release archive and unpacks it into a
// directory, dropping a number of leading path components from every entry.
// GitHub source archives wrap their content in a single "<repo>-<sha>/"
// directory, which a strip of 1 removes. Zip and gzip-compressed tar
// archives are detected by their magic bytes.
package archive
