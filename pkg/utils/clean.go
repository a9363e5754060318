package utils

import "strings"

// CleanString normalizes noisy client strings. Browsers happily serialize
// undefined/null into the literal strings, those must become NULL in storage.
func CleanString(value *string) *string {
	if value == nil {
		return nil
	}

	trimmed := strings.TrimSpace(*value)
	switch trimmed {
	case "", "undefined", "null":
		return nil
	}

	return &trimmed
}

func CleanStringValue(value string) *string {
	return CleanString(&value)
}
