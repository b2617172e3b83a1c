package structured

import (
	"strconv"
	"strings"
)

// Resolve walks a generic value tree (maps, arrays, scalars) following the
// dot-separated segments of path. Numeric segments index into arrays. The
// second return value reports whether the full path exists; a missing
// intermediate segment yields (nil, false), never a panic.
func Resolve(doc map[string]any, path string) (any, bool) {
	if path == "" {
		return nil, false
	}

	return descend(doc, strings.Split(path, "."))
}

func descend(node any, segments []string) (any, bool) {
	if len(segments) == 0 {
		return node, true
	}

	segment := segments[0]

	switch value := node.(type) {
	case map[string]any:
		child, ok := value[segment]
		if !ok {
			return nil, false
		}

		return descend(child, segments[1:])
	case []any:
		index, err := strconv.Atoi(segment)
		if err != nil || index < 0 || index >= len(value) {
			return nil, false
		}

		return descend(value[index], segments[1:])
	default:
		// Scalars have no children; any remaining segment is unresolvable.
		return nil, false
	}
}
