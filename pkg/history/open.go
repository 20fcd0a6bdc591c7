package history

import "fmt"

const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

type Options struct {
	Backend  string
	File     string
	Database string
}

// Open returns the store for the configured backend and a close function.
func Open(opts Options) (Store, func() error, error) {
	switch opts.Backend {
	case BackendJSON, "":
		s, err := NewJSONStore(opts.File)
		if err != nil {
			return nil, nil, err
		}
		return s, func() error { return nil }, nil
	case BackendSQLite:
		s, err := NewSQLiteStore(opts.Database)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown history backend %q", opts.Backend)
	}
}
