package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

var ErrNotAnImage = errors.New("uploaded file is not an image")

type Storage interface {
	Upload(context.Context, *UploadObject) (*UploadResponse, error)
}

type UploadObject struct {
	FileName string
	Data     []byte
}

type UploadResponse struct {
	Url      string
	FileName string
	Mime     string
}

// LocalStorage writes images under dir and serves them from urlPrefix.
type LocalStorage struct {
	dir       string
	urlPrefix string
	now       func() time.Time

	mu   sync.Mutex
	last int64
}

func NewLocalStorage(dir, urlPrefix string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("os.MkdirAll -> %w", err)
	}

	return &LocalStorage{
		dir:       dir,
		urlPrefix: strings.TrimSuffix(urlPrefix, "/"),
		now:       time.Now,
	}, nil
}

func (s *LocalStorage) Dir() string {
	return s.dir
}

func (s *LocalStorage) Upload(_ context.Context, obj *UploadObject) (*UploadResponse, error) {
	mime := mimetype.Detect(obj.Data)
	if !strings.HasPrefix(mime.String(), "image/") {
		return nil, ErrNotAnImage
	}

	// The extension follows the sniffed type; the client's file name is not trusted.
	name := strconv.FormatInt(s.nextStamp(), 10) + mime.Extension()

	if err := os.WriteFile(filepath.Join(s.dir, name), obj.Data, 0o644); err != nil {
		return nil, fmt.Errorf("os.WriteFile -> %w", err)
	}

	return &UploadResponse{
		Url:      s.urlPrefix + "/" + name,
		FileName: name,
		Mime:     mime.String(),
	}, nil
}

// nextStamp returns a millisecond timestamp, bumped when two uploads share a millisecond.
func (s *LocalStorage) nextStamp() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	stamp := s.now().UnixMilli()
	if stamp <= s.last {
		stamp = s.last + 1
	}
	s.last = stamp

	return stamp
}
