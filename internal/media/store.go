// Package media gère le cycle de vie des images (produits, avatars) :
// envoi d'un nouveau fichier, mise à jour de l'enregistrement, puis
// suppression de l'ancien fichier.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

// ErrBlobExists : le chemin est déjà occupé, rien n'a été écrasé.
var ErrBlobExists = errors.New("objet déjà présent à ce chemin")

// BlobStore est le stockage objet d'un bucket.
type BlobStore interface {
	// Upload échoue avec ErrBlobExists plutôt que d'écraser un objet.
	Upload(ctx context.Context, path string, r io.Reader, size int64, contentType string) error
	PublicURL(path string) string
	Delete(ctx context.Context, paths ...string) error
}

func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

type memBlob struct {
	data        []byte
	contentType string
}

// MemoryStore est un BlobStore en mémoire. FailUpload et FailDelete
// permettent de simuler une panne du stockage.
type MemoryStore struct {
	mu         sync.Mutex
	base       string
	blobs      map[string]memBlob
	FailUpload error
	FailDelete error
}

func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{base: baseURL, blobs: map[string]memBlob{}}
}

func (s *MemoryStore) Upload(_ context.Context, path string, r io.Reader, _ int64, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailUpload != nil {
		return s.FailUpload
	}
	if _, ok := s.blobs[path]; ok {
		return ErrBlobExists
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return fmt.Errorf("lecture fichier: %w", err)
	}
	s.blobs[path] = memBlob{data: buf.Bytes(), contentType: contentType}
	return nil
}

func (s *MemoryStore) PublicURL(path string) string {
	return joinURL(s.base, path)
}

func (s *MemoryStore) Delete(_ context.Context, paths ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailDelete != nil {
		return s.FailDelete
	}
	for _, p := range paths {
		delete(s.blobs, p)
	}
	return nil
}

// Put dépose directement un objet (préparation de tests).
func (s *MemoryStore) Put(path string, data []byte) {
	s.mu.Lock()
	s.blobs[path] = memBlob{data: data}
	s.mu.Unlock()
}

func (s *MemoryStore) Has(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.blobs[path]
	return ok
}

func (s *MemoryStore) Get(path string) ([]byte, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.blobs[path]
	return b.data, b.contentType, ok
}

func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.blobs)
}
