// Package encryption protects database backups with age. Backups are
// encrypted to the recipients in a plaintext public key file, so writing one
// needs no secret. The matching private key is kept scrypt-encrypted under a
// passphrase and is only unlocked to read a backup back.
package encryption

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"filippo.io/age"

	"videoflow/internal/config"
)

// Encryptor encrypts backup streams.
type Encryptor interface {
	Encrypt(r io.Reader, w io.Writer) error
}

// DecryptionContext decrypts backup streams with an unlocked key.
type DecryptionContext interface {
	Decrypt(r io.Reader, w io.Writer) error
}

// AgeEncryptor manages the backup key pair at the configured paths. The
// public key file may list extra recipients, one per line, so an offsite key
// can also read every backup.
type AgeEncryptor struct {
	publicKeyPath  string
	privateKeyPath string
	now            func() time.Time
}

var _ Encryptor = (*AgeEncryptor)(nil)

func NewAgeEncryptor(cfg config.BackupConfig) *AgeEncryptor {
	return &AgeEncryptor{
		publicKeyPath:  cfg.PublicKeyPath,
		privateKeyPath: cfg.PrivateKeyPath,
		now:            time.Now,
	}
}

// Setup generates a key pair and returns the public recipient string.
// Existing key files are never replaced.
func (e *AgeEncryptor) Setup(passphrase string) (string, error) {
	if passphrase == "" {
		return "", fmt.Errorf("passphrase must not be empty")
	}
	for _, p := range []string{e.publicKeyPath, e.privateKeyPath} {
		if _, err := os.Stat(p); err == nil {
			return "", fmt.Errorf("key file %s already exists", p)
		}
		if err := os.MkdirAll(filepath.Dir(p), 0700); err != nil {
			return "", fmt.Errorf("creating key directory: %w", err)
		}
	}

	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return "", fmt.Errorf("generating key pair: %w", err)
	}
	recipient := identity.Recipient().String()
	header := fmt.Sprintf("# videoflow backup key, created %s\n", e.now().UTC().Format(time.RFC3339))

	sealed, err := sealIdentity(header+identity.String()+"\n", passphrase)
	if err != nil {
		return "", err
	}
	if err := writeNew(e.privateKeyPath, sealed, 0600); err != nil {
		return "", fmt.Errorf("writing private key: %w", err)
	}
	if err := writeNew(e.publicKeyPath, []byte(header+recipient+"\n"), 0644); err != nil {
		os.Remove(e.privateKeyPath)
		return "", fmt.Errorf("writing public key: %w", err)
	}
	return recipient, nil
}

// Encrypt reads plaintext from r and writes ciphertext for every recipient in
// the public key file to w.
func (e *AgeEncryptor) Encrypt(r io.Reader, w io.Writer) error {
	recipients, err := e.recipients()
	if err != nil {
		return err
	}

	enc, err := age.Encrypt(w, recipients...)
	if err != nil {
		return fmt.Errorf("creating encrypted writer: %w", err)
	}
	if _, err := io.Copy(enc, r); err != nil {
		return fmt.Errorf("encrypting data: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalizing encryption: %w", err)
	}
	return nil
}

// Unlock opens the private key with passphrase.
func (e *AgeEncryptor) Unlock(passphrase string) (DecryptionContext, error) {
	sealed, err := os.ReadFile(e.privateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("reading private key file: %w", err)
	}
	identities, err := openIdentities(sealed, passphrase)
	if err != nil {
		return nil, err
	}
	return &AgeDecryptionContext{identities: identities}, nil
}

// IsConfigured reports whether both key files exist.
func (e *AgeEncryptor) IsConfigured() bool {
	for _, p := range []string{e.publicKeyPath, e.privateKeyPath} {
		if _, err := os.Stat(p); err != nil {
			return false
		}
	}
	return true
}

func (e *AgeEncryptor) recipients() ([]age.Recipient, error) {
	data, err := os.ReadFile(e.publicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("reading public key: %w", err)
	}
	recipients, err := age.ParseRecipients(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing public key %s: %w", e.publicKeyPath, err)
	}
	return recipients, nil
}

// sealIdentity encrypts an identity file with a passphrase.
func sealIdentity(identity, passphrase string) ([]byte, error) {
	scrypt, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return nil, fmt.Errorf("creating scrypt recipient: %w", err)
	}

	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, scrypt)
	if err != nil {
		return nil, fmt.Errorf("creating encrypted writer: %w", err)
	}
	if _, err := io.WriteString(w, identity); err != nil {
		return nil, fmt.Errorf("encrypting private key: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalizing private key: %w", err)
	}
	return buf.Bytes(), nil
}

func openIdentities(sealed []byte, passphrase string) ([]age.Identity, error) {
	scrypt, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return nil, fmt.Errorf("creating scrypt identity: %w", err)
	}
	r, err := age.Decrypt(bytes.NewReader(sealed), scrypt)
	if err != nil {
		return nil, fmt.Errorf("decrypting private key: %w", err)
	}
	identities, err := age.ParseIdentities(r)
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}
	return identities, nil
}

func writeNew(path string, data []byte, perm os.FileMode) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

// AgeDecryptionContext holds unlocked age identities.
type AgeDecryptionContext struct {
	identities []age.Identity
}

var _ DecryptionContext = (*AgeDecryptionContext)(nil)

func (c *AgeDecryptionContext) Decrypt(r io.Reader, w io.Writer) error {
	plain, err := age.Decrypt(r, c.identities...)
	if err != nil {
		return fmt.Errorf("creating decrypted reader: %w", err)
	}
	if _, err := io.Copy(w, plain); err != nil {
		return fmt.Errorf("decrypting data: %w", err)
	}
	return nil
}
