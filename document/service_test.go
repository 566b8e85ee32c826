package document_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/Edgame2/castiel"
	icontext "github.com/Edgame2/castiel/context"
	"github.com/Edgame2/castiel/document"
	"github.com/Edgame2/castiel/inmem"
	"github.com/Edgame2/castiel/kit/platform"
	"github.com/Edgame2/castiel/kit/platform/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testTenantID = platform.ID(10)
	testUserID   = platform.ID(20)
)

func initDocumentService(t *testing.T) (*document.Service, context.Context) {
	t.Helper()
	svc := document.NewService(document.NewStore(inmem.NewKVStore()), nil)
	ctx := icontext.SetAuthorizer(context.Background(), &castiel.Authorization{
		UserID: testUserID,
		Status: castiel.Active,
	})
	return svc, ctx
}

func createTestDocument(t *testing.T, ctx context.Context, svc *document.Service, name string, content []byte) *castiel.Document {
	t.Helper()
	d := &castiel.Document{
		TenantID:    testTenantID,
		Name:        name,
		ContentType: "text/plain",
	}
	require.NoError(t, svc.CreateDocument(ctx, d, content))
	return d
}

func TestCreateDocument(t *testing.T) {
	svc, ctx := initDocumentService(t)

	content := []byte("quarterly report")
	d := createTestDocument(t, ctx, svc, "q3.txt", content)

	assert.True(t, d.ID.Valid())
	assert.Equal(t, castiel.DocumentDraft, d.Status)
	assert.Equal(t, int64(len(content)), d.Size)
	assert.Equal(t, 1, d.Version)
	assert.Equal(t, testUserID, d.CreatedBy)

	sum := sha256.Sum256(content)
	assert.Equal(t, hex.EncodeToString(sum[:]), d.Checksum)

	got, err := svc.ReadDocumentContent(ctx, testTenantID, d.ID)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestCreateDocument_EmptyName(t *testing.T) {
	svc, ctx := initDocumentService(t)

	err := svc.CreateDocument(ctx, &castiel.Document{TenantID: testTenantID}, nil)
	require.Error(t, err)
	assert.Equal(t, errors.EEmptyValue, errors.ErrorCode(err))
}

func TestUpdateDocument_ContentBumpsVersion(t *testing.T) {
	svc, ctx := initDocumentService(t)
	d := createTestDocument(t, ctx, svc, "q3.txt", []byte("v1"))

	name := "q3-final.txt"
	got, err := svc.UpdateDocument(ctx, testTenantID, d.ID, castiel.DocumentUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, 1, got.Version)
	assert.Equal(t, name, got.Name)

	got, err = svc.UpdateDocument(ctx, testTenantID, d.ID, castiel.DocumentUpdate{Content: []byte("v2 content")})
	require.NoError(t, err)
	assert.Equal(t, 2, got.Version)
	assert.Equal(t, int64(len("v2 content")), got.Size)

	content, err := svc.ReadDocumentContent(ctx, testTenantID, d.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("v2 content"), content)
}

func TestUpdateDocument_Publish(t *testing.T) {
	svc, ctx := initDocumentService(t)
	d := createTestDocument(t, ctx, svc, "q3.txt", []byte("v1"))

	status := castiel.DocumentPublished
	got, err := svc.UpdateDocument(ctx, testTenantID, d.ID, castiel.DocumentUpdate{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, castiel.DocumentPublished, got.Status)

	bad := castiel.DocumentStatus("torn up")
	_, err = svc.UpdateDocument(ctx, testTenantID, d.ID, castiel.DocumentUpdate{Status: &bad})
	require.Error(t, err)
	assert.Equal(t, errors.EInvalid, errors.ErrorCode(err))
}

func TestFindDocuments(t *testing.T) {
	svc, ctx := initDocumentService(t)
	shardID := platform.ID(55)

	one := createTestDocument(t, ctx, svc, "one.txt", []byte("1"))
	createTestDocument(t, ctx, svc, "two.txt", []byte("2"))

	_, err := svc.UpdateDocument(ctx, testTenantID, one.ID, castiel.DocumentUpdate{ShardID: &shardID})
	require.NoError(t, err)

	ds, n, err := svc.FindDocuments(ctx, castiel.DocumentFilter{TenantID: testTenantID})
	require.NoError(t, err)
	assert.Len(t, ds, 2)
	assert.Equal(t, 2, n)

	ds, _, err = svc.FindDocuments(ctx, castiel.DocumentFilter{TenantID: testTenantID, ShardID: &shardID})
	require.NoError(t, err)
	require.Len(t, ds, 1)
	assert.Equal(t, "one.txt", ds[0].Name)

	ds, _, err = svc.FindDocuments(ctx, castiel.DocumentFilter{TenantID: platform.ID(11)})
	require.NoError(t, err)
	assert.Empty(t, ds)
}

func TestDeleteDocument(t *testing.T) {
	svc, ctx := initDocumentService(t)
	d := createTestDocument(t, ctx, svc, "q3.txt", []byte("v1"))

	require.NoError(t, svc.DeleteDocument(ctx, testTenantID, d.ID))

	// hidden from finds, content retained
	ds, _, err := svc.FindDocuments(ctx, castiel.DocumentFilter{TenantID: testTenantID})
	require.NoError(t, err)
	assert.Empty(t, ds)

	content, err := svc.ReadDocumentContent(ctx, testTenantID, d.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), content)
}

func TestHardDeleteDocument(t *testing.T) {
	svc, ctx := initDocumentService(t)
	d := createTestDocument(t, ctx, svc, "q3.txt", []byte("v1"))

	require.NoError(t, svc.HardDeleteDocument(ctx, testTenantID, d.ID))

	_, err := svc.FindDocumentByID(ctx, testTenantID, d.ID)
	assert.Equal(t, errors.ENotFound, errors.ErrorCode(err))

	_, err = svc.ReadDocumentContent(ctx, testTenantID, d.ID)
	assert.Equal(t, errors.ENotFound, errors.ErrorCode(err))
}

func TestReadDocumentContent_CrossTenant(t *testing.T) {
	svc, ctx := initDocumentService(t)
	d := createTestDocument(t, ctx, svc, "q3.txt", []byte("v1"))

	_, err := svc.ReadDocumentContent(ctx, platform.ID(11), d.ID)
	assert.Equal(t, errors.ENotFound, errors.ErrorCode(err))
}
