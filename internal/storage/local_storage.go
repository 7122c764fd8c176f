package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalStorage keeps blobs in a single directory, keyed by their generated
// stored name. The key is opaque and unrelated to the uploaded file name,
// so display names never touch the filesystem.
type LocalStorage struct {
	basePath string
}

func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		return nil, err
	}
	return &LocalStorage{basePath: basePath}, nil
}

// pathFor strips any directory components from the key. Keys are generated
// server-side, but a stored name must never escape the base directory.
func (ls *LocalStorage) pathFor(storedName string) string {
	return filepath.Join(ls.basePath, filepath.Base(storedName))
}

func (ls *LocalStorage) Save(storedName string, data io.Reader) error {
	file, err := os.Create(ls.pathFor(storedName))
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = io.Copy(file, data)
	return err
}

func (ls *LocalStorage) Get(storedName string) (io.ReadCloser, error) {
	file, err := os.Open(ls.pathFor(storedName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("blob %s not found: %w", storedName, err)
		}
		return nil, err
	}

	return file, nil
}

func (ls *LocalStorage) Exists(storedName string) bool {
	_, err := os.Stat(ls.pathFor(storedName))
	return err == nil
}

func (ls *LocalStorage) Delete(storedName string) error {
	err := os.Remove(ls.pathFor(storedName))
	if os.IsNotExist(err) {
		return nil
	}

	return err
}
