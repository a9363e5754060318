package utils

import "regexp"

// 8-4-4-4-12 hex groups with v4 version and variant nibbles. Anything that
// does not match is treated as an arbitrary external token, not one of ours.
var canonicalIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-4[0-9a-fA-F]{3}-[89abAB][0-9a-fA-F]{3}-[0-9a-fA-F]{12}$`)

func IsCanonicalID(value string) bool {
	return canonicalIDPattern.MatchString(value)
}
