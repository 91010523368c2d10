package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/gtank/cryptopasta"
)

// Sealer encrypts and signs small blobs, used to protect the pending-mutation
// file at rest. The sealed form is "base64(cyphertext).base64(hmac)".
type Sealer struct {
	enc *[32]byte
	sig *[32]byte
}

// NewSealer derives a sealer from two key strings of at least 32 chars each.
func NewSealer(encKey, sigKey string) (*Sealer, error) {
	enc, err := toKey(encKey)
	if err != nil {
		return nil, err
	}
	sig, err := toKey(sigKey)
	if err != nil {
		return nil, err
	}
	return &Sealer{enc: enc, sig: sig}, nil
}

// NewRandomKey generates a random key string long enough for NewSealer.
func NewRandomKey() (string, error) {
	key := &[33]byte{} // slightly longer than we need to be safe
	_, err := io.ReadFull(rand.Reader, key[:])
	return base64.RawURLEncoding.EncodeToString(key[:]), err
}

func (s *Sealer) Seal(plaintext []byte) (string, error) {
	cyphertext, err := cryptopasta.Encrypt(plaintext, s.enc)
	if err != nil {
		return "", err
	}
	signature := cryptopasta.GenerateHMAC(cyphertext, s.sig)

	return fmt.Sprintf(
		"%s.%s",
		base64.RawURLEncoding.EncodeToString(cyphertext),
		base64.RawURLEncoding.EncodeToString(signature),
	), nil
}

// Open is the inverse of Seal, checking the HMAC before decrypting.
func (s *Sealer) Open(sealed string) ([]byte, error) {
	bits := strings.SplitN(sealed, ".", 2)
	if len(bits) != 2 {
		return nil, fmt.Errorf("sealed blob invalid, want cyphertext.signature")
	}

	cypher, err := base64.RawURLEncoding.DecodeString(bits[0])
	if err != nil {
		return nil, err
	}
	signature, err := base64.RawURLEncoding.DecodeString(bits[1])
	if err != nil {
		return nil, err
	}

	if !cryptopasta.CheckHMAC(cypher, signature, s.sig) {
		return nil, fmt.Errorf("signature validation failed")
	}
	return cryptopasta.Decrypt(cypher, s.enc)
}

// toKey transforms a string of at least len 32 into *[32]byte, as needed by
// the cryptopasta library.
func toKey(s string) (*[32]byte, error) {
	if len(s) < 32 {
		return nil, fmt.Errorf("key too short for encryption/signing operation, want at least 32 chars")
	}
	data := &[32]byte{}
	copy(data[:], []byte(s))
	return data, nil
}
