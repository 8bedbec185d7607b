package vault

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"videoflow/internal/config"
)

// fakeS3 is an in-memory bucket serving the single-part upload path.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	clock   time.Time
	times   map[string]time.Time
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, times: map[string]time.Time{}, clock: time.Unix(1_700_000_000, 0)}
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	key := aws.ToString(in.Key)
	f.objects[key] = data
	f.clock = f.clock.Add(time.Second)
	f.times[key] = f.clock
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) UploadPart(context.Context, *s3.UploadPartInput, ...func(*s3.Options)) (*s3.UploadPartOutput, error) {
	return nil, errors.New("multipart not supported")
}

func (f *fakeS3) CreateMultipartUpload(context.Context, *s3.CreateMultipartUploadInput, ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
	return nil, errors.New("multipart not supported")
}

func (f *fakeS3) CompleteMultipartUpload(context.Context, *s3.CompleteMultipartUploadInput, ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error) {
	return nil, errors.New("multipart not supported")
}

func (f *fakeS3) AbortMultipartUpload(context.Context, *s3.AbortMultipartUploadInput, ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error) {
	return &s3.AbortMultipartUploadOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) HeadObject(ctx context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.objects[aws.ToString(in.Key)]; !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{}, nil
}

func (f *fakeS3) HeadBucket(context.Context, *s3.HeadBucketInput, ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	return &s3.HeadBucketOutput{}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := &s3.ListObjectsV2Output{}
	for key, data := range f.objects {
		if !strings.HasPrefix(key, aws.ToString(in.Prefix)) {
			continue
		}
		out.Contents = append(out.Contents, types.Object{
			Key:          aws.String(key),
			Size:         aws.Int64(int64(len(data))),
			LastModified: aws.Time(f.times[key]),
		})
	}
	return out, nil
}

func newVaults(t *testing.T) map[string]Vault {
	t.Helper()
	fs, err := NewFileSystemVault("fs", filepath.Join(t.TempDir(), "vault"))
	if err != nil {
		t.Fatalf("NewFileSystemVault() error = %v", err)
	}
	mem := NewMemoryVault("mem")
	tick := time.Unix(1_700_000_000, 0)
	mem.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	return map[string]Vault{
		"memory":     mem,
		"filesystem": fs,
		"s3":         newS3Vault("s3", "bucket", "/backups/", newFakeS3()),
	}
}

func TestVault_PutGet(t *testing.T) {
	for kind, v := range newVaults(t) {
		t.Run(kind, func(t *testing.T) {
			ctx := context.Background()
			data := "SQLite format 3 snapshot"
			if err := v.Put(ctx, "video_flow-1.db", strings.NewReader(data), int64(len(data))); err != nil {
				t.Fatalf("Put() error = %v", err)
			}

			var buf bytes.Buffer
			if err := v.Get(ctx, "video_flow-1.db", &buf); err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if buf.String() != data {
				t.Errorf("Get() = %q, want %q", buf.String(), data)
			}

			if err := v.Put(ctx, "video_flow-1.db", strings.NewReader("x"), 1); err == nil {
				t.Error("Put() over an existing snapshot should fail")
			}
			if err := v.Get(ctx, "missing.db", io.Discard); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
			}
			if err := v.ValidateSetup(ctx); err != nil {
				t.Errorf("ValidateSetup() error = %v", err)
			}
		})
	}
}

func TestVault_PutRejectsBadInput(t *testing.T) {
	for kind, v := range newVaults(t) {
		t.Run(kind, func(t *testing.T) {
			ctx := context.Background()
			for _, name := range []string{"", "..", ".hidden", "a/b", `a\b`} {
				if err := v.Put(ctx, name, strings.NewReader("x"), 1); err == nil {
					t.Errorf("Put(%q) should fail", name)
				}
			}
			if err := v.Put(ctx, "short.db", strings.NewReader("hello"), 100); err == nil {
				t.Error("Put() with a size mismatch should fail")
			}
			if err := v.Get(ctx, "short.db", io.Discard); !errors.Is(err, ErrNotFound) {
				t.Errorf("failed Put() left a snapshot behind: %v", err)
			}
		})
	}
}

func TestVault_ListNewestFirst(t *testing.T) {
	for kind, v := range newVaults(t) {
		t.Run(kind, func(t *testing.T) {
			ctx := context.Background()
			for _, name := range []string{"a.db", "b.db", "c.db"} {
				if err := v.Put(ctx, name, strings.NewReader(name), int64(len(name))); err != nil {
					t.Fatalf("Put(%s) error = %v", name, err)
				}
			}
			if fs, ok := v.(*FileSystemVault); ok {
				// Filesystem mtimes can collide within one tick.
				base := time.Unix(1_700_000_000, 0)
				for i, name := range []string{"a.db", "b.db", "c.db"} {
					ts := base.Add(time.Duration(i) * time.Minute)
					if err := os.Chtimes(filepath.Join(fs.root, name), ts, ts); err != nil {
						t.Fatal(err)
					}
				}
			}

			got, err := v.List(ctx)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			var names []string
			for _, s := range got {
				names = append(names, s.Name)
				if s.Size != 4 {
					t.Errorf("%s size = %d, want 4", s.Name, s.Size)
				}
			}
			if strings.Join(names, ",") != "c.db,b.db,a.db" {
				t.Errorf("List() order = %v, want newest first", names)
			}
		})
	}
}

func TestFileSystemVault_IgnoresTempFiles(t *testing.T) {
	root := t.TempDir()
	v, err := NewFileSystemVault("fs", root)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, ".tmp-123"), []byte("partial"), 0644); err != nil {
		t.Fatal(err)
	}
	got, err := v.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("List() = %v, want temp files hidden", got)
	}
}

func TestS3Vault_KeyPrefix(t *testing.T) {
	fake := newFakeS3()
	v := newS3Vault("s3", "bucket", "/team/backups/", fake)
	if err := v.Put(context.Background(), "snap.db", strings.NewReader("x"), 1); err != nil {
		t.Fatal(err)
	}
	if _, ok := fake.objects["team/backups/snap.db"]; !ok {
		t.Errorf("object keys = %v, want team/backups/snap.db", fake.objects)
	}

	bare := newS3Vault("s3", "bucket", "", fake)
	if got := bare.key("snap.db"); got != "snap.db" {
		t.Errorf("key() = %q, want snap.db", got)
	}
}

func TestNewVaultFromConfig(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name    string
		cfg     config.VaultConfig
		wantErr bool
	}{
		{"memory vault", config.VaultConfig{Type: "memory", Name: "test-memory"}, false},
		{"filesystem vault", config.VaultConfig{Type: "filesystem", Name: "fs", FSVaultRoot: t.TempDir()}, false},
		{"filesystem vault without root", config.VaultConfig{Type: "filesystem", Name: "fs"}, true},
		{"s3 vault", config.VaultConfig{
			Type: "s3", Name: "offsite", S3Bucket: "b", S3Region: "eu-west-1",
			S3AccessKeyID: "AKIDEXAMPLE", S3SecretAccessKey: "secret", S3Endpoint: "http://127.0.0.1:9000",
		}, false},
		{"s3 vault without bucket", config.VaultConfig{Type: "s3", Name: "offsite"}, true},
		{"unknown type", config.VaultConfig{Type: "ftp", Name: "x"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := NewVaultFromConfig(ctx, tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewVaultFromConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && v.Name() != tt.cfg.Name {
				t.Errorf("Name() = %q, want %q", v.Name(), tt.cfg.Name)
			}
		})
	}
}
