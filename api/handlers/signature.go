package handlers

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"time"
)

// UploadSignature handles signed evidence upload requests
type UploadSignature struct{}

type uploadSignatureRequest struct {
	CaseNumber string `json:"caseNumber"`
}

// GenerateSignature signs a direct evidence upload. Uploads land in a
// per-case folder under evidence/ so the CDN mirrors the case layout; the
// folder is part of the signed parameters and cannot be changed client-side.
func (u UploadSignature) GenerateSignature(w http.ResponseWriter, r *http.Request) {
	var req uploadSignatureRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	uploadPreset := os.Getenv("CLOUDINARY_UPLOAD_PRESET")
	apiSecret := os.Getenv("CLOUDINARY_API_SECRET")

	folder := "evidence"
	if req.CaseNumber != "" {
		folder = "evidence/" + req.CaseNumber
	}

	// Signed parameters in alphabetical order
	params := "folder=" + folder + "&timestamp=" + timestamp + "&upload_preset=" + uploadPreset
	h := hmac.New(sha1.New, []byte(apiSecret))
	h.Write([]byte(params))
	signature := hex.EncodeToString(h.Sum(nil))

	response := map[string]string{
		"timestamp": timestamp,
		"folder":    folder,
		"signature": signature,
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
