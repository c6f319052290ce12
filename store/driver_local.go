package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// NewDriverLocal returns a driver keeping objects as files in directory.
func NewDriverLocal(directory string) (*DriverLocal, error) {
	if directory == "" {
		return nil, errors.New("local driver requires a directory")
	}

	return &DriverLocal{
		Directory: directory,
	}, nil
}

type DriverLocal struct {
	Directory string
}

func (driver *DriverLocal) absolutePath(objectPath string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(objectPath))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("object path escapes directory: %s", objectPath)
	}

	return filepath.Join(driver.Directory, clean), nil
}

func (driver *DriverLocal) Get(ctx context.Context, objectPath string) (io.ReadCloser, error) {
	path, err := driver.absolutePath(objectPath)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, notFound(objectPath)
		}

		return nil, err
	}

	return file, nil
}

func (driver *DriverLocal) Put(ctx context.Context, objectPath string, payload io.Reader) error {
	path, err := driver.absolutePath(objectPath)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	// Write next to the target and rename so readers never see a torn file.
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := io.Copy(tmp, payload); err != nil {
		_ = tmp.Close()
		return err
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}

func (driver *DriverLocal) Delete(ctx context.Context, objectPath string) error {
	path, err := driver.absolutePath(objectPath)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}

		return err
	}

	return nil
}

func (driver *DriverLocal) Exists(ctx context.Context, objectPath string) (bool, error) {
	path, err := driver.absolutePath(objectPath)
	if err != nil {
		return false, err
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

func (driver *DriverLocal) IsReady(ctx context.Context) error {
	info, err := os.Stat(driver.Directory)
	if err != nil {
		return err
	}

	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", driver.Directory)
	}

	return nil
}
