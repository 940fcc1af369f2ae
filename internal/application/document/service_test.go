package document

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rarepair-api/internal/domain"
)

type mockDocumentStore struct{ mock.Mock }

func (m *mockDocumentStore) Put(ctx context.Context, d *domain.Document) error {
	return m.Called(ctx, d).Error(0)
}
func (m *mockDocumentStore) Get(ctx context.Context, documentID string) (*domain.Document, error) {
	args := m.Called(ctx, documentID)
	if v, _ := args.Get(0).(*domain.Document); v != nil {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockDocumentStore) SoftDelete(ctx context.Context, documentID string) error {
	return m.Called(ctx, documentID).Error(0)
}

type mockObjectStore struct{ mock.Mock }

func (m *mockObjectStore) Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	args := m.Called(ctx, key, r, contentType)
	return args.String(0), args.Error(1)
}
func (m *mockObjectStore) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, key)
	if v, _ := args.Get(0).(io.ReadCloser); v != nil {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockObjectStore) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func TestUpload_HashesAndSanitizesKey(t *testing.T) {
	content := []byte("lab report body")
	sum := sha256.Sum256(content)

	objects := &mockObjectStore{}
	objects.On("Upload", mock.Anything, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "documents/u1/") &&
			strings.HasSuffix(key, "-lab_report.pdf") &&
			!strings.Contains(key, "..")
	}), mock.Anything, "application/pdf").Return("s3://b/k", nil)

	documents := &mockDocumentStore{}
	documents.On("Put", mock.Anything, mock.MatchedBy(func(d *domain.Document) bool {
		return d.OwnerUserID == "u1" && d.Enable && d.Size == int64(len(content)) &&
			d.Hash == hex.EncodeToString(sum[:])
	})).Return(nil)

	svc := NewService(documents, objects)
	d, err := svc.Upload(context.Background(), "u1", "../../lab report.pdf", "application/pdf", content)
	require.NoError(t, err)
	assert.NotEmpty(t, d.DocumentID)
	objects.AssertExpectations(t)
	documents.AssertExpectations(t)
}

func TestUpload_MetadataFailure_RemovesObject(t *testing.T) {
	objects := &mockObjectStore{}
	objects.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("s3://b/k", nil)
	objects.On("Delete", mock.Anything, mock.Anything).Return(nil)

	documents := &mockDocumentStore{}
	documents.On("Put", mock.Anything, mock.Anything).Return(errors.New("table missing"))

	svc := NewService(documents, objects)
	_, err := svc.Upload(context.Background(), "u1", "a.pdf", "application/pdf", []byte("x"))
	assert.Error(t, err)
	objects.AssertCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDownload_OwnerOrAdminOnly(t *testing.T) {
	doc := &domain.Document{DocumentID: "d1", Object: "documents/u1/d1-a.pdf", OwnerUserID: "u1", Enable: true}

	documents := &mockDocumentStore{}
	documents.On("Get", mock.Anything, "d1").Return(doc, nil)

	objects := &mockObjectStore{}
	objects.On("Download", mock.Anything, doc.Object).
		Return(io.NopCloser(strings.NewReader("body")), nil)

	svc := NewService(documents, objects)

	_, _, err := svc.Download(context.Background(), "intruder", domain.RoleDonor, "d1")
	assert.True(t, errors.Is(err, domain.ErrForbidden))

	_, body, err := svc.Download(context.Background(), "u1", domain.RoleDonor, "d1")
	require.NoError(t, err)
	body.Close()

	_, body, err = svc.Download(context.Background(), "someone-else", domain.RoleAdmin, "d1")
	require.NoError(t, err)
	body.Close()
}

func TestDownload_SoftDeleted_NotFound(t *testing.T) {
	documents := &mockDocumentStore{}
	documents.On("Get", mock.Anything, "d1").
		Return(&domain.Document{DocumentID: "d1", OwnerUserID: "u1", Enable: false}, nil)

	svc := NewService(documents, &mockObjectStore{})
	_, _, err := svc.Download(context.Background(), "u1", domain.RoleDonor, "d1")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestDelete_DisablesRowThenRemovesObject(t *testing.T) {
	doc := &domain.Document{DocumentID: "d1", Object: "documents/u1/d1-a.pdf", OwnerUserID: "u1", Enable: true}

	documents := &mockDocumentStore{}
	documents.On("Get", mock.Anything, "d1").Return(doc, nil)
	documents.On("SoftDelete", mock.Anything, "d1").Return(nil)

	objects := &mockObjectStore{}
	objects.On("Delete", mock.Anything, doc.Object).Return(nil)

	svc := NewService(documents, objects)
	require.NoError(t, svc.Delete(context.Background(), "u1", domain.RoleDonor, "d1"))
	documents.AssertExpectations(t)
	objects.AssertExpectations(t)
}
