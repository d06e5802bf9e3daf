package query

// PlaceholderOffsets returns the byte offset of every "?" placeholder in stmt.
// A "?" inside a single-quoted literal is text, not a placeholder.
func PlaceholderOffsets(stmt string) []int {
	var offsets []int
	inQuote := false
	for i := 0; i < len(stmt); i++ {
		switch stmt[i] {
		case '\'':
			inQuote = !inQuote
		case '?':
			if !inQuote {
				offsets = append(offsets, i)
			}
		}
	}
	return offsets
}

// CountPlaceholders returns the number of arguments stmt binds.
func CountPlaceholders(stmt string) int {
	return len(PlaceholderOffsets(stmt))
}
