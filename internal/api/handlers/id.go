package handlers

import "strconv"

// parseID converts a path parameter into a task/pool identifier.
func parseID(raw string) (int, error) {
	return strconv.Atoi(raw)
}
