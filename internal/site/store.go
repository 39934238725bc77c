// Package site provides lazy access to the persisted launchpad site document
// and its pristine original copy.
package site

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"launchpad/pkg/domain"
)

// Document names under which backends store the two copies.
const (
	DocumentSite     = "site"
	DocumentOriginal = "original"
)

// ErrGroupNotFound is returned when the original document has no such group.
var ErrGroupNotFound = errors.New("group not found in original site")

// ErrNotLoaded is returned by Save before the document was fetched.
var ErrNotLoaded = errors.New("site document not loaded")

// Accessor fetches and persists the site document.
type Accessor interface {
	// GetSite returns the live document; repeated calls return the same value.
	GetSite(ctx context.Context) (*domain.Site, error)
	// Save persists the live document.
	Save(ctx context.Context) error
	// GroupFromOriginalSite returns the pristine copy of a group.
	GroupFromOriginalSite(ctx context.Context, groupID string) (domain.Group, error)
}

// Backend stores named JSON documents.
type Backend interface {
	LoadDocument(ctx context.Context, name string) ([]byte, bool, error)
	SaveDocument(ctx context.Context, name string, payload []byte) error
	Close() error
}

// Store is the Backend-backed Accessor. The site document is fetched on first
// use; when only the original exists it is cloned.
type Store struct {
	backend Backend

	mu   sync.Mutex
	site *domain.Site
}

var _ Accessor = (*Store)(nil)

// NewStore wraps backend.
func NewStore(backend Backend) *Store {
	return &Store{backend: backend}
}

func (s *Store) GetSite(ctx context.Context) (*domain.Site, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.site != nil {
		return s.site, nil
	}
	doc, found, err := s.load(ctx, DocumentSite)
	if err != nil {
		return nil, err
	}
	if !found {
		if doc, found, err = s.load(ctx, DocumentOriginal); err != nil {
			return nil, err
		}
	}
	if !found {
		doc = &domain.Site{Version: DefaultMaxVersion}
		doc.Normalize()
	}
	s.site = doc
	return s.site, nil
}

func (s *Store) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.site == nil {
		return ErrNotLoaded
	}
	payload, err := json.Marshal(s.site)
	if err != nil {
		return fmt.Errorf("encode site: %w", err)
	}
	if err := s.backend.SaveDocument(ctx, DocumentSite, payload); err != nil {
		return fmt.Errorf("save site: %w", err)
	}
	return nil
}

func (s *Store) GroupFromOriginalSite(ctx context.Context, groupID string) (domain.Group, error) {
	doc, found, err := s.load(ctx, DocumentOriginal)
	if err != nil {
		return domain.Group{}, err
	}
	if !found {
		return domain.Group{}, fmt.Errorf("%w: %s", ErrGroupNotFound, groupID)
	}
	g, ok := doc.Groups[groupID]
	if !ok {
		return domain.Group{}, fmt.Errorf("%w: %s", ErrGroupNotFound, groupID)
	}
	return g.Clone(), nil
}

// Close releases the backend.
func (s *Store) Close() error { return s.backend.Close() }

func (s *Store) load(ctx context.Context, name string) (*domain.Site, bool, error) {
	payload, found, err := s.backend.LoadDocument(ctx, name)
	if err != nil {
		return nil, false, fmt.Errorf("load %s document: %w", name, err)
	}
	if !found {
		return nil, false, nil
	}
	doc, err := Decode(payload)
	if err != nil {
		return nil, false, fmt.Errorf("decode %s document: %w", name, err)
	}
	return doc, true, nil
}

// Decode parses a JSON site document and initializes its maps.
func Decode(payload []byte) (*domain.Site, error) {
	var doc domain.Site
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, err
	}
	doc.Normalize()
	return &doc, nil
}

// Seed writes doc as the original document. With resetSite the working copy
// is replaced as well; otherwise an existing working copy is kept.
func Seed(ctx context.Context, backend Backend, doc *domain.Site, resetSite bool) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode seed: %w", err)
	}
	if err := backend.SaveDocument(ctx, DocumentOriginal, payload); err != nil {
		return fmt.Errorf("save original: %w", err)
	}
	if !resetSite {
		return nil
	}
	if err := backend.SaveDocument(ctx, DocumentSite, payload); err != nil {
		return fmt.Errorf("save site: %w", err)
	}
	return nil
}
