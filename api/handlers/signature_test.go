package handlers_test

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onestopcentre/cybercrime-api/api/handlers"
)

func signParams(t *testing.T, secret, params string) string {
	t.Helper()
	h := hmac.New(sha1.New, []byte(secret))
	h.Write([]byte(params))
	return hex.EncodeToString(h.Sum(nil))
}

func TestUploadSignature_GenerateSignature(t *testing.T) {
	os.Setenv("CLOUDINARY_UPLOAD_PRESET", "evidence_preset")
	os.Setenv("CLOUDINARY_API_SECRET", "test-secret")
	defer os.Unsetenv("CLOUDINARY_UPLOAD_PRESET")
	defer os.Unsetenv("CLOUDINARY_API_SECRET")

	body := strings.NewReader(`{"caseNumber":"CR-2026-0001"}`)
	req := httptest.NewRequest("POST", "/api/v1/generate-signature", body)
	rr := httptest.NewRecorder()

	u := handlers.UploadSignature{}
	u.GenerateSignature(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "evidence/CR-2026-0001", resp["folder"])
	assert.NotEmpty(t, resp["timestamp"])

	params := "folder=" + resp["folder"] + "&timestamp=" + resp["timestamp"] + "&upload_preset=evidence_preset"
	assert.Equal(t, signParams(t, "test-secret", params), resp["signature"])
}

func TestUploadSignature_GenerateSignature_NoCaseNumber(t *testing.T) {
	os.Setenv("CLOUDINARY_UPLOAD_PRESET", "evidence_preset")
	os.Setenv("CLOUDINARY_API_SECRET", "test-secret")
	defer os.Unsetenv("CLOUDINARY_UPLOAD_PRESET")
	defer os.Unsetenv("CLOUDINARY_API_SECRET")

	req := httptest.NewRequest("POST", "/api/v1/generate-signature", strings.NewReader(`{}`))
	rr := httptest.NewRecorder()

	u := handlers.UploadSignature{}
	u.GenerateSignature(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	// uploads without a case land in the shared evidence folder
	assert.Equal(t, "evidence", resp["folder"])

	params := "folder=evidence&timestamp=" + resp["timestamp"] + "&upload_preset=evidence_preset"
	assert.Equal(t, signParams(t, "test-secret", params), resp["signature"])
}
