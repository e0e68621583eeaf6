package release

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// NormalizeVersion validates a user supplied --version value.
// "" and "latest" are returned as Latest. Anything else must parse as a
// semantic version; a leading "v" is stripped so the tag is not doubled.
// The remaining text is returned unchanged, so "2.3" stays "2.3".
func NormalizeVersion(version string) (string, error) {
	version = strings.TrimSpace(version)
	if version == "" || version == Latest {
		return Latest, nil
	}
	version = strings.TrimPrefix(version, "v")
	if _, err := semver.NewVersion(version); err != nil {
		return "", fmt.Errorf("invalid version %q: %w", version, err)
	}
	return version, nil
}
