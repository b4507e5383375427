package validators

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fw, err := mw.CreateFormFile("files", name)
	require.NoError(t, err)

	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	reader := multipart.NewReader(&buf, mw.Boundary())
	form, err := reader.ReadForm(1 << 20)
	require.NoError(t, err)

	return form.File["files"][0]
}

func TestFileValidatorOK(t *testing.T) {
	viper.Set("upload.max_size", int64(1<<20))
	viper.Set("upload.allowed_types", []string{})

	code, f, err := FileValidator(makeHeader(t, "a.txt", []byte("hello")))
	require.NoError(t, err)
	assert.Zero(t, code)

	buf := make([]byte, 5)
	_, err = f.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf))
	f.Close()
}

func TestFileValidatorRejects(t *testing.T) {
	viper.Set("upload.max_size", int64(4))
	viper.Set("upload.allowed_types", []string{})

	code, _, err := FileValidator(nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.ErrorIs(t, err, ErrNoFile)

	code, _, err = FileValidator(makeHeader(t, strings.Repeat("x", 300), []byte("a")))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.ErrorIs(t, err, ErrFileNameTooLong)

	code, _, err = FileValidator(makeHeader(t, "big.txt", []byte("too large")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, code)
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestFileValidatorTypeAllowlist(t *testing.T) {
	viper.Set("upload.max_size", int64(1<<20))
	viper.Set("upload.allowed_types", []string{"application/pdf"})

	code, _, err := FileValidator(makeHeader(t, "note.txt", []byte("plain text")))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.ErrorIs(t, err, ErrFileTypeUnsupported)

	viper.Set("upload.allowed_types", []string{"text/plain"})

	code, f, err := FileValidator(makeHeader(t, "note.txt", []byte("plain text")))
	require.NoError(t, err)
	assert.Zero(t, code)
	f.Close()
}
