package classify

import "path"

// Placement says where one file should end up. Folder is slash separated
// and relative to the destination root; an empty Folder means the root.
type Placement struct {
	Filename string `json:"filename" msgpack:"filename"`
	Folder   string `json:"folder" msgpack:"folder"`
	Synopsis string `json:"synopsis,omitempty" msgpack:"synopsis,omitempty"`
}

// TopLevelPlacements returns only the direct filename -> folder entries of
// the tree. Nested folders are not visited.
func TopLevelPlacements(t Tree) []Placement {
	out := make([]Placement, 0, len(t))
	for _, n := range t {
		if n.IsFolder {
			continue
		}
		out = append(out, Placement{Filename: n.Key, Folder: n.Value})
	}
	return out
}

// Placements walks the whole tree. Top-level leaves are filename -> folder
// entries; leaves below a folder are filename -> synopsis entries placed
// under the joined folder path.
func Placements(t Tree) []Placement {
	out := make([]Placement, 0)
	for _, n := range t {
		if !n.IsFolder {
			out = append(out, Placement{Filename: n.Key, Folder: n.Value})
			continue
		}
		out = collect(out, n.Children, n.Key)
	}
	return out
}

func collect(out []Placement, t Tree, folder string) []Placement {
	for _, n := range t {
		if n.IsFolder {
			out = collect(out, n.Children, path.Join(folder, n.Key))
			continue
		}
		out = append(out, Placement{Filename: n.Key, Folder: folder, Synopsis: n.Value})
	}
	return out
}
