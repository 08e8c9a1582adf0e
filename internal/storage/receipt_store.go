package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"expenseflow/internal/apperrors"
)

// MaxReceiptSize is the upper bound for an uploaded receipt file.
const MaxReceiptSize = 5 * 1024 * 1024

var allowedReceiptTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".pdf":  "application/pdf",
}

// ReceiptStore persists uploaded receipt files and hands back opaque URIs.
// The rest of the system only ever sees the URI string.
type ReceiptStore interface {
	Save(file *multipart.FileHeader) (string, error)
	Remove(uri string) error
}

// LocalReceiptStore stores receipts on the local filesystem under
// <baseDir>/receipts, served statically at /uploads/receipts.
type LocalReceiptStore struct {
	baseDir string
	logger  *zap.Logger
}

// NewLocalReceiptStore creates the store and its directory tree.
func NewLocalReceiptStore(baseDir string, logger *zap.Logger) (*LocalReceiptStore, error) {
	dir := filepath.Join(baseDir, "receipts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create receipts dir: %w", err)
	}
	return &LocalReceiptStore{baseDir: baseDir, logger: logger}, nil
}

// Save validates the upload (size and type) and writes it under a generated,
// collision-free name. Returns the public URI for the stored file.
func (s *LocalReceiptStore) Save(file *multipart.FileHeader) (string, error) {
	if file.Size > MaxReceiptSize {
		return "", apperrors.ErrInvalidReceipt
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	wantType, ok := allowedReceiptTypes[ext]
	if !ok {
		return "", apperrors.ErrInvalidReceipt
	}
	if declared := file.Header.Get("Content-Type"); declared != "" && declared != wantType {
		return "", apperrors.ErrInvalidReceipt
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	name := "receipt-" + uuid.New().String() + ext
	dstPath := filepath.Join(s.baseDir, "receipts", name)
	dst, err := os.Create(dstPath)
	if err != nil {
		return "", fmt.Errorf("create receipt file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, io.LimitReader(src, MaxReceiptSize+1)); err != nil {
		os.Remove(dstPath)
		return "", fmt.Errorf("write receipt file: %w", err)
	}

	uri := path.Join("/uploads/receipts", name)
	s.logger.Debug("receipt stored",
		zap.String("uri", uri),
		zap.Int64("size", file.Size))
	return uri, nil
}

// Remove deletes a stored receipt by its public URI. Only the base name is
// used, so a URI cannot reach outside the receipts directory. Missing files
// are not an error.
func (s *LocalReceiptStore) Remove(uri string) error {
	name := path.Base(uri)
	if name == "." || name == "/" {
		return nil
	}
	if err := os.Remove(filepath.Join(s.baseDir, "receipts", name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove receipt file: %w", err)
	}
	return nil
}
