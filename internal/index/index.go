package index

// PromptIndex defines the search index operations the service layer relies on.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with fakes.
type PromptIndex interface {
	UpsertPrompt(row PromptRow) error
	DeletePrompt(id int64) error
	GetChecksum(id int64) (string, error)
	Search(query string, limit int) ([]SearchResult, error)
	AllChecksums() (map[int64]string, error)
	Close() error
}

// Verify *DB satisfies PromptIndex at compile time.
var _ PromptIndex = (*DB)(nil)
