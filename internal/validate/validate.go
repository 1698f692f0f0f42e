package validate

// VideoIDLength is the fixed length of a YouTube video ID.
const VideoIDLength = 11

// IsValidVideoID reports whether id is a syntactically valid video ID:
// exactly 11 characters from [0-9A-Za-z_-].
func IsValidVideoID(id string) bool {
	if len(id) != VideoIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'A' && c <= 'Z':
		case c >= 'a' && c <= 'z':
		case c == '_' || c == '-':
		default:
			return false
		}
	}
	return true
}
