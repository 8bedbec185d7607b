package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"videoflow/internal/encryption"
	"videoflow/internal/vault"
)

// Encryptor returns the backup key pair manager for the configured paths.
func (a *VideoFlowApp) Encryptor() *encryption.AgeEncryptor {
	return encryption.NewAgeEncryptor(a.cfg.Backup)
}

// Backup writes a consistent snapshot of the database to dest. With encrypt
// set the snapshot is encrypted to the backup public key and the plaintext
// copy is removed. dest must not exist.
func (a *VideoFlowApp) Backup(ctx context.Context, dest string, encrypt bool) error {
	if _, err := os.Stat(dest); err == nil {
		return fmt.Errorf("backup target %s already exists", dest)
	}
	if !encrypt {
		if err := a.db.BackupTo(ctx, dest); err != nil {
			return err
		}
		a.logger.Info("backed up database", "path", dest)
		return nil
	}

	enc := a.Encryptor()
	if !enc.IsConfigured() {
		return fmt.Errorf("no backup key: run 'videoflow db keygen' first")
	}

	plain := filepath.Join(filepath.Dir(dest), "."+filepath.Base(dest)+"."+a.op.ID)
	if err := a.db.BackupTo(ctx, plain); err != nil {
		return err
	}
	defer os.Remove(plain)

	if err := encryptFile(enc, plain, dest); err != nil {
		os.Remove(dest)
		return err
	}
	a.logger.Info("backed up database", "path", dest, "encrypted", true)
	return nil
}

// DecryptBackup writes the plaintext of an encrypted backup to dest.
func DecryptBackup(dec encryption.DecryptionContext, src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening backup: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dest, err)
	}
	if err := dec.Decrypt(in, out); err != nil {
		out.Close()
		os.Remove(dest)
		return fmt.Errorf("decrypting backup: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dest)
		return fmt.Errorf("writing %s: %w", dest, err)
	}
	return nil
}

func encryptFile(enc encryption.Encryptor, src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening snapshot: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dest, err)
	}
	if err := enc.Encrypt(in, out); err != nil {
		out.Close()
		return fmt.Errorf("encrypting backup: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", dest, err)
	}
	return nil
}

// SnapshotName names a pushed snapshot by the time it was taken.
func SnapshotName(t time.Time, encrypted bool) string {
	name := "video_flow-" + t.UTC().Format("20060102T150405Z") + ".db"
	if encrypted {
		name += ".age"
	}
	return name
}

// OpenVault opens the configured vault called name, or the first one.
func (a *VideoFlowApp) OpenVault(ctx context.Context, name string) (vault.Vault, error) {
	vc, err := a.cfg.Vault(name)
	if err != nil {
		return nil, err
	}
	return vault.NewVaultFromConfig(ctx, vc)
}

// Push takes a snapshot and stores it in v. It returns the snapshot name.
func (a *VideoFlowApp) Push(ctx context.Context, v vault.Vault, encrypt bool) (string, error) {
	dir, err := os.MkdirTemp("", "videoflow-push-*")
	if err != nil {
		return "", fmt.Errorf("creating staging directory: %w", err)
	}
	defer os.RemoveAll(dir)

	name := SnapshotName(a.op.StartedAt, encrypt)
	local := filepath.Join(dir, name)
	if err := a.Backup(ctx, local, encrypt); err != nil {
		return "", err
	}

	f, err := os.Open(local)
	if err != nil {
		return "", fmt.Errorf("opening snapshot: %w", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("reading snapshot size: %w", err)
	}

	if err := v.Put(ctx, name, f, info.Size()); err != nil {
		return "", fmt.Errorf("pushing to vault %s: %w", v.Name(), err)
	}
	a.logger.Info("pushed snapshot", "vault", v.Name(), "snapshot", name, "bytes", info.Size())
	return name, nil
}

// Pull copies a snapshot from v to dest, which must not exist.
func (a *VideoFlowApp) Pull(ctx context.Context, v vault.Vault, name, dest string) error {
	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dest, err)
	}
	if err := v.Get(ctx, name, out); err != nil {
		out.Close()
		os.Remove(dest)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(dest)
		return fmt.Errorf("writing %s: %w", dest, err)
	}
	a.logger.Info("pulled snapshot", "vault", v.Name(), "snapshot", name, "path", dest)
	return nil
}
