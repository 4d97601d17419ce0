package indexer

// Chunk is a window of source text. Start and End are rune offsets of the
// untrimmed window; Text is the window with surrounding whitespace removed.
type Chunk struct {
	Text  string `json:"text"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// Document is a text file loaded for ingestion
type Document struct {
	Path    string `json:"path"`
	RelPath string `json:"rel_path"` // Relative path from the scanned root
	Content string `json:"-"`
}

// LoadResult represents the result of loading a directory of documents
type LoadResult struct {
	Root        string      `json:"root"`
	Documents   []*Document `json:"documents"`
	Errors      []string    `json:"errors,omitempty"`
	ElapsedTime string      `json:"elapsed_time"`
}

// FileInfo holds information about a file to be loaded
type FileInfo struct {
	Path      string
	RelPath   string // Relative path from root
	Extension string
	Size      int64
}
