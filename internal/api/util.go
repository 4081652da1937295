package api

import "strconv"

// parseUint parses a decimal resource ID path parameter.
func parseUint(s string) (uint64, error) {
	return strconv.ParseUint(s, 10, 64)
}
