package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"
)

// PassphraseEnv overrides the host-bound key. With it set, the vault file can
// be copied to another machine.
const PassphraseEnv = "HORIZON_VAULT_PASSPHRASE"

const envelopeVersion = 1

var vaultAAD = []byte("horizon-vault")

// envelope is the on-disk form: one sealed JSON object of name to secret.
type envelope struct {
	Version int    `json:"v"`
	Nonce   []byte `json:"nonce"`
	Sealed  []byte `json:"sealed"`
}

// FileVault keeps secrets AES-256-GCM sealed in a single file. Without a
// passphrase the key is bound to the host and user name.
type FileVault struct {
	mu   sync.Mutex
	path string
	key  []byte
}

// DefaultPath is vault.enc in the horizon config directory.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "horizon", "vault.enc")
}

// NewFileVault returns a vault backed by the file at path.
func NewFileVault(path string) *FileVault {
	return &FileVault{path: path, key: deriveKey(os.Getenv(PassphraseEnv))}
}

func deriveKey(passphrase string) []byte {
	seed := passphrase
	if seed == "" {
		host, _ := os.Hostname()
		user := os.Getenv("USER")
		if user == "" {
			user = os.Getenv("USERNAME")
		}
		seed = host + "\x00" + user
	}
	sum := sha256.Sum256([]byte("horizon-vault\x00" + seed))
	return sum[:]
}

// Path returns the vault file.
func (f *FileVault) Path() string { return f.path }

func (f *FileVault) aead() (cipher.AEAD, error) {
	block, err := aes.NewCipher(f.key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// read returns the secrets; a missing file is an empty vault.
func (f *FileVault) read() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil || env.Version != envelopeVersion {
		return nil, fmt.Errorf("vault: %s is not a horizon vault", f.path)
	}
	gcm, err := f.aead()
	if err != nil {
		return nil, err
	}
	plain, err := gcm.Open(nil, env.Nonce, env.Sealed, vaultAAD)
	if err != nil {
		return nil, fmt.Errorf("vault: cannot open %s (wrong host or %s?)", f.path, PassphraseEnv)
	}
	secrets := map[string]string{}
	if err := json.Unmarshal(plain, &secrets); err != nil {
		return nil, fmt.Errorf("vault: parse %s: %w", f.path, err)
	}
	return secrets, nil
}

// write seals secrets into a temp file and renames it over the vault.
func (f *FileVault) write(secrets map[string]string) error {
	plain, err := json.Marshal(secrets)
	if err != nil {
		return err
	}
	gcm, err := f.aead()
	if err != nil {
		return err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return err
	}
	data, err := json.Marshal(envelope{
		Version: envelopeVersion,
		Nonce:   nonce,
		Sealed:  gcm.Seal(nil, nonce, plain, vaultAAD),
	})
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".vault-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.path)
}

// update runs fn on the current secrets and writes them back if fn succeeds.
func (f *FileVault) update(fn func(map[string]string) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	secrets, err := f.read()
	if err != nil {
		return err
	}
	if err := fn(secrets); err != nil {
		return err
	}
	return f.write(secrets)
}

func (f *FileVault) Set(key, value string) error {
	if key == "" {
		return errors.New("vault: empty key name")
	}
	return f.update(func(s map[string]string) error {
		s[key] = value
		return nil
	})
}

func (f *FileVault) Get(key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	secrets, err := f.read()
	if err != nil {
		return "", err
	}
	val, ok := secrets[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return val, nil
}

func (f *FileVault) Delete(key string) error {
	return f.update(func(s map[string]string) error {
		if _, ok := s[key]; !ok {
			return fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		delete(s, key)
		return nil
	})
}

func (f *FileVault) List() ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	secrets, err := f.read()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(secrets))
	for k := range secrets {
		names = append(names, k)
	}
	slices.Sort(names)
	return names, nil
}
