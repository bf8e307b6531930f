package storage

import (
	"context"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// FilesRoute is where the HTTP server exposes files of the local driver.
const FilesRoute = "/files"

type FileStorage interface {
	Uploader
	Save(path string, data io.Reader) error
	Get(path string) (io.ReadCloser, error)
	BasePath() string
}

type fileStorage struct {
	basePath string
	baseURL  string
}

func NewFileStorage(basePath, baseURL string) FileStorage {
	return &fileStorage{basePath: basePath, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *fileStorage) BasePath() string {
	return s.basePath
}

func (s *fileStorage) Upload(ctx context.Context, localPath, objectName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	src, err := os.Open(localPath)
	if err != nil {
		return "", err
	}
	defer src.Close()

	if err := s.Save(objectName, src); err != nil {
		return "", err
	}
	return s.baseURL + "/" + url.PathEscape(objectName), nil
}

func (s *fileStorage) Save(path string, data io.Reader) error {
	fullPath := filepath.Join(s.basePath, path)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return err
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = io.Copy(file, data)
	return err
}

func (s *fileStorage) Get(path string) (io.ReadCloser, error) {
	fullPath := filepath.Join(s.basePath, path)
	return os.Open(fullPath)
}
