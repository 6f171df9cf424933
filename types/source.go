package types

// Source is a curated citation: which file and page a retrieved chunk came
// from, plus the chunk text itself. Value object, equality by full triple.
type Source struct {
	File string `json:"file"`
	Page string `json:"page"`
	Text string `json:"text"`
}

// CurateSources converts retrieval chunks into citation sources, keeping
// only the first occurrence of each (file, page, text) triple and
// preserving input order. Missing metadata defaults to "-".
func CurateSources(chunks []Chunk) []Source {
	seen := make(map[Source]struct{}, len(chunks))
	curated := make([]Source, 0, len(chunks))

	for _, chunk := range chunks {
		file := "-"
		page := "-"
		if chunk.Metadata != nil {
			if v, ok := chunk.Metadata[MetaFileName]; ok {
				file = v
			}
			if v, ok := chunk.Metadata[MetaPageLabel]; ok {
				page = v
			}
		}
		source := Source{File: file, Page: page, Text: chunk.Text}
		if _, ok := seen[source]; ok {
			continue
		}
		seen[source] = struct{}{}
		curated = append(curated, source)
	}

	return curated
}
