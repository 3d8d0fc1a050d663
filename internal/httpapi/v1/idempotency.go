package v1

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
)

// storedBatch is a batch response kept for replay. Status is zero while the batch that
// reserved the key is still running; done is closed when it finishes.
type storedBatch struct {
	BodyHash string
	Status   int
	Payload  []byte
	done     chan struct{}
}

func hashBytes(b []byte) string {
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:])
}

// captureWriter tees the response so it can be stored for idempotent replay.
type captureWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (c *captureWriter) WriteHeader(code int) {
	c.status = code
	c.ResponseWriter.WriteHeader(code)
}

func (c *captureWriter) Write(b []byte) (int, error) {
	if c.status == 0 {
		c.status = http.StatusOK
	}
	c.buf.Write(b)
	return c.ResponseWriter.Write(b)
}
