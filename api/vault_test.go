package api

import (
	"cryptvault/file-api/model"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadCreatesEncryptedRecord(t *testing.T) {
	a, mem := newTestAPI(t)

	file := uploadOne(t, a, "alice", "report.pdf", []byte("0123456789"))

	assert.Equal(t, "alice", file.UserID)
	assert.Equal(t, "report.pdf", file.Name)
	assert.Equal(t, "pdf", file.Type)
	assert.EqualValues(t, 10, file.Size)
	assert.NotEmpty(t, file.PublicID)
	assert.NotEmpty(t, file.Key)
	assert.NotEmpty(t, file.Nonce)
	assert.NotEmpty(t, file.Tag)

	// The remote blob holds ciphertext, never the plaintext
	stored, err := mem.Fetch(t.Context(), file.PublicID)
	require.NoError(t, err)
	assert.NotEqual(t, []byte("0123456789"), stored)
	assert.Len(t, stored, 10)
}

func TestUploadNoFiles(t *testing.T) {
	a, _ := newTestAPI(t)

	w := uploadFiles(t, a, "alice", map[string][]byte{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadPartialFailure(t *testing.T) {
	a, mem := newTestAPI(t)
	mem.FailAfter = 1

	w := uploadFiles(t, a, "alice", map[string][]byte{
		"one.txt": []byte("first"),
		"two.txt": []byte("second"),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created []model.File
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Len(t, created, 1)

	// The failed sibling left no orphaned metadata
	var count int64
	require.NoError(t, a.DB.Model(model.File{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestUploadAllFailing(t *testing.T) {
	a, mem := newTestAPI(t)
	mem.StoreErr = assert.AnError

	w := uploadFiles(t, a, "alice", map[string][]byte{"one.txt": []byte("data")})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var count int64
	require.NoError(t, a.DB.Model(model.File{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestFileList(t *testing.T) {
	a, _ := newTestAPI(t)

	uploadOne(t, a, "alice", "a.txt", []byte("aaa"))
	uploadOne(t, a, "alice", "b.txt", []byte("bbbb"))
	uploadOne(t, a, "bob", "c.txt", []byte("c"))

	w := doRequest(t, a, http.MethodGet, "/api/files", "alice", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var entries []model.File
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	assert.Len(t, entries, 2)
}

func TestTotalSize(t *testing.T) {
	a, _ := newTestAPI(t)

	w := doRequest(t, a, http.MethodGet, "/api/files/size", "alice", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"total_size": 0}`, w.Body.String())

	uploadOne(t, a, "alice", "a.txt", []byte("aaa"))
	uploadOne(t, a, "alice", "b.txt", []byte("bbbb"))

	w = doRequest(t, a, http.MethodGet, "/api/files/size", "alice", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"total_size": 7}`, w.Body.String())
}

func TestDownloadOwnFile(t *testing.T) {
	a, _ := newTestAPI(t)

	file := uploadOne(t, a, "alice", "notes.txt", []byte("secret notes"))

	w := doRequest(t, a, http.MethodGet, "/api/files/1/download", "alice", nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "secret notes", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), file.Name)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
}

func TestDownloadUnknownTypeFallsBack(t *testing.T) {
	a, _ := newTestAPI(t)

	uploadOne(t, a, "alice", "blob.xyzzy", []byte{0x01, 0x02})

	w := doRequest(t, a, http.MethodGet, "/api/files/1/download", "alice", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/octet-stream", w.Header().Get("Content-Type"))
}

func TestDownloadForbiddenForStrangers(t *testing.T) {
	a, _ := newTestAPI(t)

	uploadOne(t, a, "alice", "private.txt", []byte("mine"))

	w := doRequest(t, a, http.MethodGet, "/api/files/1/download", "bob", nil, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDownloadTamperedCiphertext(t *testing.T) {
	a, mem := newTestAPI(t)

	file := uploadOne(t, a, "alice", "doc.txt", []byte("important"))
	mem.Corrupt(file.PublicID)

	w := doRequest(t, a, http.MethodGet, "/api/files/1/download", "alice", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotContains(t, w.Body.String(), "important")
}

func TestDownloadMissingFile(t *testing.T) {
	a, _ := newTestAPI(t)

	w := doRequest(t, a, http.MethodGet, "/api/files/99/download", "alice", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteFile(t *testing.T) {
	a, mem := newTestAPI(t)

	file := uploadOne(t, a, "alice", "old.txt", []byte("gone soon"))

	// A grant and a link share that must cascade away
	require.NoError(t, a.DB.Create(&model.SharedFile{FileID: file.ID, UserID: "bob"}).Error)
	require.NoError(t, a.DB.Create(&model.LinkShare{FileID: file.ID, Token: "share-cascade"}).Error)

	w := doRequest(t, a, http.MethodDelete, "/api/files/1", "alice", nil, "")
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	assert.Zero(t, mem.Len())

	var count int64
	require.NoError(t, a.DB.Model(model.File{}).Count(&count).Error)
	assert.Zero(t, count)

	require.NoError(t, a.DB.Model(model.SharedFile{}).Count(&count).Error)
	assert.Zero(t, count)

	require.NoError(t, a.DB.Model(model.LinkShare{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestDeleteNotOwner(t *testing.T) {
	a, mem := newTestAPI(t)

	uploadOne(t, a, "alice", "keep.txt", []byte("still here"))

	w := doRequest(t, a, http.MethodDelete, "/api/files/1", "bob", nil, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	var count int64
	require.NoError(t, a.DB.Model(model.File{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
	assert.Equal(t, 1, mem.Len())
}

func TestDeleteRemoteBlobMissing(t *testing.T) {
	a, mem := newTestAPI(t)

	file := uploadOne(t, a, "alice", "stranded.txt", []byte("data"))
	mem.Remove(file.PublicID)

	w := doRequest(t, a, http.MethodDelete, "/api/files/1", "alice", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	// The local record stays, the inconsistency is surfaced instead of
	// being papered over
	var count int64
	require.NoError(t, a.DB.Model(model.File{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestDeleteRemoteFailureKeepsRecord(t *testing.T) {
	a, mem := newTestAPI(t)

	uploadOne(t, a, "alice", "flaky.txt", []byte("data"))
	mem.DeleteErr = assert.AnError

	w := doRequest(t, a, http.MethodDelete, "/api/files/1", "alice", nil, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var count int64
	require.NoError(t, a.DB.Model(model.File{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
	assert.Equal(t, 1, mem.Len())
}

func TestTypeStatsAdminOnly(t *testing.T) {
	a, _ := newTestAPI(t)

	uploadOne(t, a, "alice", "a.pdf", []byte("a"))
	uploadOne(t, a, "alice", "b.pdf", []byte("b"))
	uploadOne(t, a, "bob", "c.txt", []byte("c"))

	w := doRequest(t, a, http.MethodGet, "/api/files/stats", "alice", nil, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(t, a, http.MethodGet, "/api/files/stats", "root", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"pdf": 2, "txt": 1}`, w.Body.String())
}

func TestUnauthenticatedRejected(t *testing.T) {
	a, _ := newTestAPI(t)

	w := doRequest(t, a, http.MethodGet, "/api/files", "", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
