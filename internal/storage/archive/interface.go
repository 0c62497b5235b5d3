// internal/storage/archive/interface.go
package archive

import "context"

// Storage is the remote object store holding archived segments. Names are
// flat object names such as "000000010000000000000001.gz".
//
// Retries, timeouts and connection handling belong to implementations;
// callers pass a context so a deadline can bound each call.
type Storage interface {
	// Exists checks if an object with the given name exists
	Exists(ctx context.Context, name string) (bool, error)

	// Fetch returns the full payload of an object. A missing object
	// yields an error matching core.ErrObjectNotFound.
	Fetch(ctx context.Context, name string) ([]byte, error)

	// Upload stores the local file at localPath under name, replacing
	// any existing object
	Upload(ctx context.Context, localPath, name string) error

	// Delete removes an object
	Delete(ctx context.Context, name string) error

	// List returns all object names starting with prefix; "" lists all
	List(ctx context.Context, prefix string) ([]string, error)
}
