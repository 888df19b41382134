package infrastructure

import (
	"crypto/rand"
	"fmt"
	"io"

	"websocket-client/internal/domain"
	"websocket-client/pkg/protocol"
)

// KeyGenerator produces Sec-WebSocket-Key values
type KeyGenerator struct {
	source io.Reader
}

// NewKeyGenerator creates a KeyGenerator reading from source. A nil source
// selects crypto/rand.Reader, which is shared by the whole process and never
// reseeded per call.
func NewKeyGenerator(source io.Reader) *KeyGenerator {
	if source == nil {
		source = rand.Reader
	}
	return &KeyGenerator{source: source}
}

// Generate draws 16 fresh bytes and returns their 24 character base64 form
func (g *KeyGenerator) Generate() (string, error) {
	raw := make([]byte, protocol.HandshakeKeyRawSize)
	if _, err := io.ReadFull(g.source, raw); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrKeyGeneration, err)
	}
	return EncodeBase64(raw), nil
}
