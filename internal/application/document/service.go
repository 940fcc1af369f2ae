package document

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/rarepair-api/internal/domain"
	"github.com/rarepair-api/internal/pkg/id"
)

type documentStore interface {
	Put(ctx context.Context, d *domain.Document) error
	Get(ctx context.Context, documentID string) (*domain.Document, error)
	SoftDelete(ctx context.Context, documentID string) error
}

type objectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

type Service interface {
	// Upload stores the file content and its metadata row. ownerUserID is
	// the authenticated caller.
	Upload(ctx context.Context, ownerUserID, name, contentType string, content []byte) (*domain.Document, error)
	// Download returns the metadata and content stream. Only the owner or
	// an admin may fetch a document; soft-deleted documents read as gone.
	Download(ctx context.Context, callerID, callerRole, documentID string) (*domain.Document, io.ReadCloser, error)
	// Delete disables the metadata row and removes the object.
	Delete(ctx context.Context, callerID, callerRole, documentID string) error
}

type service struct {
	documents documentStore
	objects   objectStore
	now       func() time.Time
}

func NewService(documents documentStore, objects objectStore) Service {
	return &service{documents: documents, objects: objects, now: time.Now}
}

func (s *service) Upload(ctx context.Context, ownerUserID, name, contentType string, content []byte) (*domain.Document, error) {
	if len(content) == 0 {
		return nil, fmt.Errorf("empty document: %w", domain.ErrBadRequest)
	}

	sum := sha256.Sum256(content)
	docID := id.New()
	key := fmt.Sprintf("documents/%s/%s-%s", ownerUserID, docID, sanitizeName(name))

	if _, err := s.objects.Upload(ctx, key, bytes.NewReader(content), contentType); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	d := &domain.Document{
		DocumentID:  docID,
		Object:      key,
		Name:        name,
		Type:        contentType,
		Size:        int64(len(content)),
		Hash:        hex.EncodeToString(sum[:]),
		OwnerUserID: ownerUserID,
		Enable:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.documents.Put(ctx, d); err != nil {
		// The object is orphaned if this cleanup fails; the metadata row
		// is the source of truth so the document never appears.
		_ = s.objects.Delete(ctx, key)
		return nil, err
	}
	return d, nil
}

func (s *service) Download(ctx context.Context, callerID, callerRole, documentID string) (*domain.Document, io.ReadCloser, error) {
	d, err := s.authorize(ctx, callerID, callerRole, documentID)
	if err != nil {
		return nil, nil, err
	}
	body, err := s.objects.Download(ctx, d.Object)
	if err != nil {
		return nil, nil, err
	}
	return d, body, nil
}

func (s *service) Delete(ctx context.Context, callerID, callerRole, documentID string) error {
	d, err := s.authorize(ctx, callerID, callerRole, documentID)
	if err != nil {
		return err
	}
	if err := s.documents.SoftDelete(ctx, documentID); err != nil {
		return err
	}
	if err := s.objects.Delete(ctx, d.Object); err != nil {
		// The row is already disabled, so a leftover object is invisible.
		return nil
	}
	return nil
}

func (s *service) authorize(ctx context.Context, callerID, callerRole, documentID string) (*domain.Document, error) {
	d, err := s.documents.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if !d.Enable {
		return nil, fmt.Errorf("document disabled: %w", domain.ErrNotFound)
	}
	if d.OwnerUserID != callerID && callerRole != domain.RoleAdmin {
		return nil, fmt.Errorf("document belongs to another user: %w", domain.ErrForbidden)
	}
	return d, nil
}

// sanitizeName strips any path components and flattens suspicious
// characters so the upload name cannot steer the object key.
func sanitizeName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "file"
	}
	return b.String()
}
