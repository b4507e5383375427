package api

import (
	"bytes"
	"cryptvault/file-api/middleware"
	"cryptvault/file-api/model"
	"cryptvault/file-api/security"
	"cryptvault/file-api/storage"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret"

func newTestAPI(t *testing.T) (*API, *storage.MemoryStore) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	viper.Set("jwt.secret", testSecret)
	viper.Set("upload.max_size", int64(10<<20))
	viper.Set("upload.allowed_types", []string{})

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(model.User{}, model.File{}, model.SharedFile{}, model.LinkShare{})
	require.NoError(t, err)

	users := []model.User{
		{ID: "alice", Username: "alice", Email: "alice@example.com"},
		{ID: "bob", Username: "bob", Email: "bob@example.com"},
		{ID: "carol", Username: "carol", Email: "carol@example.com"},
		{ID: "root", Username: "root", Email: "root@example.com", IsAdmin: true},
	}
	require.NoError(t, db.Create(&users).Error)

	mem := storage.NewMemoryStore()

	a := &API{
		DB:     db,
		Router: gin.New(),
		Store:  mem,
		Argon:  security.New(),
	}
	a.Router.Use(middleware.NewRequestIDMiddleware())
	a.registerRoutes()

	return a, mem
}

func authCookie(t *testing.T, userID string) *http.Cookie {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)

	return &http.Cookie{Name: "auth_token", Value: signed}
}

func doRequest(t *testing.T, a *API, method, path, userID string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if userID != "" {
		req.AddCookie(authCookie(t, userID))
	}

	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)

	return w
}

func doRequestWithHeader(t *testing.T, a *API, path, header, value string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set(header, value)

	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)

	return w
}

func doJSON(t *testing.T, a *API, method, path, userID string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	b, err := json.Marshal(payload)
	require.NoError(t, err)

	return doRequest(t, a, method, path, userID, bytes.NewReader(b), "application/json")
}

// uploadFiles posts the given name->content pairs as one multipart request
func uploadFiles(t *testing.T, a *API, userID string, files map[string][]byte) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for name, content := range files {
		fw, err := mw.CreateFormFile("files", name)
		require.NoError(t, err)

		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	return doRequest(t, a, http.MethodPost, "/api/files", userID, &buf, mw.FormDataContentType())
}

func uploadOne(t *testing.T, a *API, userID, name string, content []byte) model.File {
	t.Helper()

	w := uploadFiles(t, a, userID, map[string][]byte{name: content})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created []model.File
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.Len(t, created, 1)

	var file model.File
	require.NoError(t, a.DB.Where("id = ?", created[0].ID).First(&file).Error)

	return file
}
