package gcs

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const maxSignedTTL = 7 * 24 * time.Hour

var errNoSigner = errors.New("gcs: signing needs service account credentials")

type urlSigner struct {
	email string
	key   *rsa.PrivateKey
}

// sign builds a V2 signed URL. The string to sign is
// METHOD, empty MD5, content type, expiry and the canonical resource.
func (s *urlSigner) sign(endpoint, method, bucket, object, contentType string, ttl time.Duration, now time.Time) (string, error) {
	object = strings.TrimLeft(object, "/")
	switch {
	case bucket == "":
		return "", errors.New("gcs: bucket is required")
	case object == "":
		return "", errors.New("gcs: object is required")
	case method == http.MethodPut && strings.TrimSpace(contentType) == "":
		return "", errors.New("gcs: content type is required for uploads")
	case ttl <= 0 || ttl > maxSignedTTL:
		return "", fmt.Errorf("gcs: expiry must be within (0, %s]", maxSignedTTL)
	}

	expires := strconv.FormatInt(now.Add(ttl).Unix(), 10)
	canonical := method + "\n\n" + contentType + "\n" + expires + "\n/" + bucket + "/" + object

	digest := sha256.Sum256([]byte(canonical))
	sig, err := rsa.SignPKCS1v15(rand.Reader, s.key, crypto.SHA256, digest[:])
	if err != nil {
		return "", fmt.Errorf("gcs: sign: %w", err)
	}

	query := url.Values{
		"GoogleAccessId": {s.email},
		"Expires":        {expires},
		"Signature":      {base64.StdEncoding.EncodeToString(sig)},
	}
	return endpoint + "/" + bucket + "/" + escapePath(object) + "?" + query.Encode(), nil
}
