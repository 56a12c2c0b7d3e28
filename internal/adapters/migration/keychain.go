package migration

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"

	"github.com/bayleafwalker/quire/internal/adapters/fsutil"
	"github.com/bayleafwalker/quire/internal/capability"
	"github.com/bayleafwalker/quire/internal/domain"
)

// sealedFormatVersion is the newest sealed file format this build reads.
const sealedFormatVersion = 1

// ErrWrongPassphrase is returned when the passphrase is wrong or the sealed
// file was modified.
var ErrWrongPassphrase = errors.New("wrong passphrase or corrupted keychain item")

// ErrInvalidItem is returned for a sealed file whose header is out of range.
var ErrInvalidItem = errors.New("invalid keychain item")

// sealed is the on-disk JSON envelope around the encrypted state.
type sealed struct {
	V      int    `json:"v"`
	Salt   []byte `json:"salt"`
	N      int    `json:"scrypt_N"`
	R      int    `json:"scrypt_r"`
	P      int    `json:"scrypt_p"`
	Cipher []byte `json:"cipher"`
}

// ScryptParams tunes key derivation. Tests use cheap parameters.
type ScryptParams struct {
	N, R, P int
}

func DefaultScryptParams() ScryptParams { return ScryptParams{N: 1 << 15, R: 8, P: 1} }

// ceiling is the most expensive derivation a sealed file may ask for: the
// larger of p and the defaults, per parameter.
func (p ScryptParams) ceiling() ScryptParams {
	d := DefaultScryptParams()
	return ScryptParams{N: max(p.N, d.N), R: max(p.R, d.R), P: max(p.P, d.P)}
}

// Keychain stores the state sealed with a key derived from a passphrase, the
// way a platform keychain item protects it at rest.
type Keychain struct {
	mu         sync.Mutex
	path       string
	passphrase string
	params     ScryptParams
}

var _ capability.MigrationStorage = (*Keychain)(nil)

func NewKeychain(path, passphrase string, params ScryptParams) (*Keychain, error) {
	if passphrase == "" {
		return nil, errors.New("keychain passphrase is required")
	}
	return &Keychain{path: path, passphrase: passphrase, params: params}, nil
}

func (k *Keychain) Save(_ context.Context, state domain.MigrationState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode migration state: %w", err)
	}
	b, err := seal(k.passphrase, raw, k.params)
	if err != nil {
		return fmt.Errorf("seal migration state: %w", err)
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	return fsutil.WriteFile(k.path, b, 0o600)
}

func (k *Keychain) Load(_ context.Context) (domain.MigrationState, error) {
	k.mu.Lock()
	b, err := fsutil.ReadFile(k.path)
	k.mu.Unlock()
	if err != nil {
		return domain.MigrationState{}, fmt.Errorf("read keychain item: %w", err)
	}
	if b == nil {
		return domain.MigrationState{}, capability.ErrNotFound
	}
	raw, err := unseal(k.passphrase, b, k.params.ceiling())
	if err != nil {
		return domain.MigrationState{}, err
	}
	var state domain.MigrationState
	if err := json.Unmarshal(raw, &state); err != nil {
		return domain.MigrationState{}, fmt.Errorf("decode migration state: %w", err)
	}
	return state, nil
}

func (k *Keychain) Clear(_ context.Context) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	return fsutil.Remove(k.path)
}

// seal derives a key from passphrase and encrypts raw into a sealed envelope.
func seal(passphrase string, raw []byte, p ScryptParams) ([]byte, error) {
	var salt [16]byte
	if _, err := rand.Read(salt[:]); err != nil {
		return nil, err
	}
	key, err := scrypt.Key([]byte(passphrase), salt[:], p.N, p.R, p.P, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	// Zero nonce: the key is unique per salt, and the salt is fresh per seal.
	var nonce [chacha20poly1305.NonceSize]byte
	ct := aead.Seal(nil, nonce[:], raw, salt[:])

	return json.Marshal(sealed{
		V:      sealedFormatVersion,
		Salt:   salt[:],
		N:      p.N,
		R:      p.R,
		P:      p.P,
		Cipher: ct,
	})
}

// unseal reverses seal. The file's scrypt parameters must not exceed limit.
func unseal(passphrase string, b []byte, limit ScryptParams) ([]byte, error) {
	var s sealed
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("decode keychain item: %w", err)
	}
	if s.V > sealedFormatVersion {
		return nil, fmt.Errorf("unsupported keychain item version %d", s.V)
	}
	if s.V < 1 {
		return nil, fmt.Errorf("%w: version %d", ErrInvalidItem, s.V)
	}
	if s.N < 2 || s.N > limit.N || s.R < 1 || s.R > limit.R || s.P < 1 || s.P > limit.P {
		return nil, fmt.Errorf("%w: scrypt N=%d r=%d p=%d exceeds N=%d r=%d p=%d",
			ErrInvalidItem, s.N, s.R, s.P, limit.N, limit.R, limit.P)
	}
	key, err := scrypt.Key([]byte(passphrase), s.Salt, s.N, s.R, s.P, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	var nonce [chacha20poly1305.NonceSize]byte
	pt, err := aead.Open(nil, nonce[:], s.Cipher, s.Salt)
	if err != nil {
		return nil, ErrWrongPassphrase
	}
	return pt, nil
}
