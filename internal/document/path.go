package document

import (
	"fmt"
	"strconv"
)

// Path is an ordered list of keys and array indices identifying one
// field inside the document tree. Array indices are decimal strings
// ("faqs", "2", "question").
type Path []string

// String renders the path in dotted form for error messages and logs.
func (p Path) String() string {
	out := ""
	for i, seg := range p {
		if i > 0 {
			out += "."
		}
		out += seg
	}
	return out
}

// SetPath returns a copy of root with the value at path replaced.
// Containers along the path are shallow-copied; untouched siblings are
// shared with the input, so the cost of an edit is proportional to the
// path depth, not the document size. The input is never mutated.
//
// Every intermediate segment must reference an existing container; the
// document's static shape is expected to contain every path the editor
// uses, so a missing segment is a caller bug and returns an error.
func SetPath(root any, path Path, value any) (any, error) {
	if len(path) == 0 {
		return value, nil
	}
	return setPath(root, path, path, value)
}

func setPath(node any, full, rest Path, value any) (any, error) {
	seg := rest[0]

	switch c := node.(type) {
	case map[string]any:
		if _, ok := c[seg]; !ok && len(rest) > 1 {
			return nil, fmt.Errorf("path %q: no such key %q", full, seg)
		}
		out := make(map[string]any, len(c))
		for k, v := range c {
			out[k] = v
		}
		if len(rest) == 1 {
			out[seg] = value
			return out, nil
		}
		child, err := setPath(c[seg], full, rest[1:], value)
		if err != nil {
			return nil, err
		}
		out[seg] = child
		return out, nil

	case []any:
		i, err := strconv.Atoi(seg)
		if err != nil {
			return nil, fmt.Errorf("path %q: %q is not an array index", full, seg)
		}
		if i < 0 || i >= len(c) {
			return nil, fmt.Errorf("path %q: index %d out of range (len %d)", full, i, len(c))
		}
		out := make([]any, len(c))
		copy(out, c)
		if len(rest) == 1 {
			out[i] = value
			return out, nil
		}
		child, err := setPath(c[i], full, rest[1:], value)
		if err != nil {
			return nil, err
		}
		out[i] = child
		return out, nil

	default:
		return nil, fmt.Errorf("path %q: segment %q addresses a non-container value", full, seg)
	}
}

// GetPath returns the value at path, or an error if any segment does
// not resolve.
func GetPath(root any, path Path) (any, error) {
	node := root
	for _, seg := range path {
		switch c := node.(type) {
		case map[string]any:
			v, ok := c[seg]
			if !ok {
				return nil, fmt.Errorf("path %q: no such key %q", path, seg)
			}
			node = v
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil {
				return nil, fmt.Errorf("path %q: %q is not an array index", path, seg)
			}
			if i < 0 || i >= len(c) {
				return nil, fmt.Errorf("path %q: index %d out of range (len %d)", path, i, len(c))
			}
			node = c[i]
		default:
			return nil, fmt.Errorf("path %q: segment %q addresses a non-container value", path, seg)
		}
	}
	return node, nil
}

// listAt resolves path to a list value.
func listAt(root any, path Path) ([]any, error) {
	v, err := GetPath(root, path)
	if err != nil {
		return nil, err
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("path %q: not a list", path)
	}
	return list, nil
}

// AppendRow returns a copy of root with row appended to the list at path.
func AppendRow(root any, path Path, row any) (any, error) {
	list, err := listAt(root, path)
	if err != nil {
		return nil, err
	}
	out := make([]any, len(list), len(list)+1)
	copy(out, list)
	out = append(out, row)
	return SetPath(root, path, out)
}

// RemoveRow returns a copy of root with the element at index i removed
// from the list at path. Removing the only remaining row is permitted
// and yields an empty list; display order of the remaining rows is
// preserved.
func RemoveRow(root any, path Path, i int) (any, error) {
	list, err := listAt(root, path)
	if err != nil {
		return nil, err
	}
	if i < 0 || i >= len(list) {
		return nil, fmt.Errorf("path %q: remove index %d out of range (len %d)", path, i, len(list))
	}
	out := make([]any, 0, len(list)-1)
	out = append(out, list[:i]...)
	out = append(out, list[i+1:]...)
	return SetPath(root, path, out)
}

// DuplicateRow returns a copy of root where the element at index i of
// the list at path is inserted again at i+1. Rows have no identity, so
// the duplicate is indistinguishable from the original.
func DuplicateRow(root any, path Path, i int) (any, error) {
	list, err := listAt(root, path)
	if err != nil {
		return nil, err
	}
	if i < 0 || i >= len(list) {
		return nil, fmt.Errorf("path %q: duplicate index %d out of range (len %d)", path, i, len(list))
	}
	out := make([]any, 0, len(list)+1)
	out = append(out, list[:i+1]...)
	out = append(out, list[i])
	out = append(out, list[i+1:]...)
	return SetPath(root, path, out)
}
