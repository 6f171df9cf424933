package types

// Metadata keys every ingested chunk carries for provenance.
const (
	MetaFileName  = "file_name"
	MetaPageLabel = "page_label"
)

// Document represents one ingested document as seen by the corpus manager.
// The vector store owns the content, the core only tracks id and metadata.
type Document struct {
	DocID    string            `json:"doc_id"`
	Metadata map[string]string `json:"doc_metadata"`
}

// FileName returns the file_name metadata entry, or "" when absent.
func (d Document) FileName() string {
	if d.Metadata == nil {
		return ""
	}
	return d.Metadata[MetaFileName]
}

// Chunk is a retrieval unit: a piece of document text plus the metadata of
// the document it came from. Produced per query, never stored by the core.
type Chunk struct {
	Text     string            `json:"text"`
	Metadata map[string]string `json:"doc_metadata"`
}

// IngestFile pairs an upload's original name with the local path holding
// its content.
type IngestFile struct {
	Name string
	Path string
}
