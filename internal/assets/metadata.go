package assets

import "sort"

// Variant is one rendition (specific width/height/file) of a subject's image.
// File is always a path under the configured asset root.
type Variant struct {
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	File     string `json:"file"`
	Format   string `json:"format"`
	MimeType string `json:"mime_type"`
}

// Metadata is the borrowed view of a subject's image record: zero or one
// scaled/original variant plus the named sizes. It is loaded at job start,
// mutated through one processing pass, and written back once, only when a
// conversion changed it.
type Metadata struct {
	SubjectID int64               `json:"subject_id"`
	Scaled    *Variant            `json:"scaled,omitempty"`
	Sizes     map[string]*Variant `json:"sizes,omitempty"`
}

// Variants returns every variant in a stable order: scaled first, then the
// named sizes.
func (m *Metadata) Variants() []*Variant {
	out := make([]*Variant, 0, len(m.Sizes)+1)
	if m.Scaled != nil {
		out = append(out, m.Scaled)
	}
	for _, name := range sortedSizeNames(m.Sizes) {
		out = append(out, m.Sizes[name])
	}
	return out
}

func sortedSizeNames(sizes map[string]*Variant) []string {
	names := make([]string, 0, len(sizes))
	for name := range sizes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
