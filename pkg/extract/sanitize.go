package extract

import "strings"

// sanitizeName strips a leading "/" unless absolute paths are allowed,
// and rejects ".." path components when the no-absolute-paths policy is
// in force (the same policy that also gates the delayed-symlink
// protocol).
func sanitizeName(name string, allowAbsolute bool) (sanitized string, rejected bool) {
	if !allowAbsolute {
		name = strings.TrimLeft(name, "/")
		for _, part := range strings.Split(name, "/") {
			if part == ".." {
				return name, true
			}
		}
	}
	return name, false
}
