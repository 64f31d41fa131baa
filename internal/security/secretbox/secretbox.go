// Package secretbox sella secretos (access tokens de providers) antes de que
// toquen el store, con NaCl secretbox (XSalsa20-Poly1305).
package secretbox

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/crypto/nacl/secretbox"
)

const (
	masterKeyEnvVar   = "SECRETBOX_MASTER_KEY"
	nonceSize         = 24
	requiredKeyLength = 32
	sep               = "|" // nonce|ciphertext (ambos en base64)
)

var (
	masterKey     [requiredKeyLength]byte
	loaded        bool
	masterKeyOnce sync.Once
	loadErr       error
)

// ensureLoaded carga la clave maestra desde SECRETBOX_MASTER_KEY (base64) una sola vez.
func ensureLoaded() error {
	masterKeyOnce.Do(func() {
		kb64 := strings.TrimSpace(os.Getenv(masterKeyEnvVar))
		if kb64 == "" {
			loadErr = fmt.Errorf("%s no seteada; genere una clave con: openssl rand -base64 32", masterKeyEnvVar)
			return
		}
		k, err := base64.StdEncoding.DecodeString(kb64)
		if err != nil {
			loadErr = fmt.Errorf("decode %s: %w", masterKeyEnvVar, err)
			return
		}
		if len(k) != requiredKeyLength {
			loadErr = fmt.Errorf("%s debe decodificar a %d bytes, obtuvo %d", masterKeyEnvVar, requiredKeyLength, len(k))
			return
		}
		copy(masterKey[:], k)
		loaded = true
	})
	return loadErr
}

// Ready expone si la clave está cargada (útil para healthchecks).
func Ready() bool {
	return ensureLoaded() == nil && loaded
}

// Seal cifra plainText y devuelve base64(nonce)|base64(ciphertext).
func Seal(plainText string) (string, error) {
	if err := ensureLoaded(); err != nil {
		return "", err
	}

	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("nonce random: %w", err)
	}

	ct := secretbox.Seal(nil, []byte(plainText), &nonce, &masterKey)
	return base64.StdEncoding.EncodeToString(nonce[:]) + sep + base64.StdEncoding.EncodeToString(ct), nil
}

// Open descifra un valor producido por Seal.
func Open(sealed string) (string, error) {
	if err := ensureLoaded(); err != nil {
		return "", err
	}

	parts := strings.SplitN(sealed, sep, 2)
	if len(parts) != 2 {
		return "", fmt.Errorf("formato inválido: se esperaba nonce%sciphertext", sep)
	}
	nonceRaw, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil || len(nonceRaw) != nonceSize {
		return "", fmt.Errorf("nonce inválido")
	}
	ct, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return "", fmt.Errorf("ciphertext inválido")
	}

	var nonce [nonceSize]byte
	copy(nonce[:], nonceRaw)
	pt, ok := secretbox.Open(nil, ct, &nonce, &masterKey)
	if !ok {
		return "", fmt.Errorf("open falló: clave o datos incorrectos")
	}
	return string(pt), nil
}
