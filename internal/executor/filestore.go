package executor

import "os"

// FileStore is the small filesystem capability the executor needs. Keeping
// it behind an interface lets tests run against an in-memory fake.
type FileStore interface {
	Exists(path string) bool
	Readable(path string) bool
	Size(path string) (int64, error)
	Remove(path string) error
}

// OSFileStore is the production implementation over the local filesystem.
type OSFileStore struct{}

func (OSFileStore) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (OSFileStore) Readable(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	f.Close()
	return true
}

func (OSFileStore) Size(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func (OSFileStore) Remove(path string) error {
	return os.Remove(path)
}
