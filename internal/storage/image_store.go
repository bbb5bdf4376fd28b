package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// PublicPrefix 图片对外访问路径前缀
const PublicPrefix = "/images/"

var (
	ErrNotFound    = errors.New("image not found")
	ErrInvalidName = errors.New("invalid image name")
)

// ImageStore 保存上传的商品图片，并按文件名读回
type ImageStore interface {
	// Save 返回记录在商品上的路径，如 /images/chair.jpg
	Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error)
	Open(ctx context.Context, name string) (io.ReadCloser, string, error)
}

// SafeName 只保留原始文件名的最后一段，防止目录穿越
func SafeName(original string) (string, error) {
	name := filepath.Base(strings.ReplaceAll(strings.TrimSpace(original), `\`, "/"))
	if name == "" || name == "." || name == ".." || name == "/" {
		return "", ErrInvalidName
	}
	return name, nil
}

func contentTypeOf(name string) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

type LocalStore struct {
	dir string
}

// NewLocalStore 目录不存在时自动创建
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

func (s *LocalStore) Dir() string { return s.dir }

func (s *LocalStore) Save(_ context.Context, name string, r io.Reader, _ int64, _ string) (string, error) {
	name, err := SafeName(name)
	if err != nil {
		return "", err
	}
	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create image: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write image: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close image: %w", err)
	}
	return PublicPrefix + name, nil
}

func (s *LocalStore) Open(_ context.Context, name string) (io.ReadCloser, string, error) {
	name, err := SafeName(name)
	if err != nil {
		return nil, "", err
	}
	f, err := os.Open(filepath.Join(s.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", err
	}
	return f, contentTypeOf(name), nil
}
