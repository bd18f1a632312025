package model

// Entry kinds as reported by the content API.
const (
	KindFile = "file"
	KindDir  = "dir"
)

// Collection is one externally hosted resource repository, keyed by a short id.
type Collection struct {
	ID     string `json:"id" toml:"id"`
	Name   string `json:"name" toml:"name"`
	Owner  string `json:"owner" toml:"owner"`
	Repo   string `json:"repo" toml:"repo"`
	Branch string `json:"branch" toml:"branch"`
}

// TreeEntry is one node of a collection's recursive listing.
type TreeEntry struct {
	Path string `json:"path"`
	Kind string `json:"type"`
	Size int64  `json:"size"`
}

// ChildDescriptor is one immediate child of a browsed directory.
// DownloadURL is nil for directories; Size is nil when upstream omits it.
type ChildDescriptor struct {
	Name        string  `json:"name"`
	Kind        string  `json:"type"`
	Path        string  `json:"path"`
	DownloadURL *string `json:"download_url"`
	Size        *int64  `json:"size,omitempty"`
}

type SearchResult struct {
	Name           string `json:"name"`
	Path           string `json:"path"`
	Kind           string `json:"type"`
	DownloadURL    string `json:"download_url"`
	CollectionID   string `json:"collection_id"`
	CollectionName string `json:"collection_name"`
}
