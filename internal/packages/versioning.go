package packages

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
)

const (
	versionTokenNotFoundTemplateConstant = "no version token for package %s in tool output"
	localVersionSuffixTemplateConstant   = "%s-local.%d"
	localVersionMarkerConstant           = "-local."
	firstLocalVersionOrdinalConstant     = 1
)

// ParseVersionToken extracts the version column for the named package from
// listing tool output. Lines are expected as "<package id> <version>"; the
// first matching line wins, package id comparison is case-insensitive.
func ParseVersionToken(toolOutput string, packageID string) (string, error) {
	lineScanner := bufio.NewScanner(strings.NewReader(toolOutput))
	for lineScanner.Scan() {
		fields := strings.Fields(lineScanner.Text())
		if len(fields) < 2 {
			continue
		}
		if strings.EqualFold(fields[0], packageID) {
			return fields[1], nil
		}
	}

	return "", fmt.Errorf(versionTokenNotFoundTemplateConstant, packageID)
}

// NextLocalVersion derives the next locally-scoped version for integration
// testing. Existing local versions of the same base version advance the
// ordinal; otherwise the ordinal starts at one.
func NextLocalVersion(baseVersion string, existingVersions []string) string {
	localPrefix := baseVersion + localVersionMarkerConstant

	highestOrdinal := 0
	for _, existingVersion := range existingVersions {
		if !strings.HasPrefix(existingVersion, localPrefix) {
			continue
		}
		ordinal, parseError := strconv.Atoi(strings.TrimPrefix(existingVersion, localPrefix))
		if parseError != nil {
			continue
		}
		if ordinal > highestOrdinal {
			highestOrdinal = ordinal
		}
	}

	if highestOrdinal == 0 {
		return fmt.Sprintf(localVersionSuffixTemplateConstant, baseVersion, firstLocalVersionOrdinalConstant)
	}
	return fmt.Sprintf(localVersionSuffixTemplateConstant, baseVersion, highestOrdinal+1)
}
