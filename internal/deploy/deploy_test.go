package deploy

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"github.com/husk-build/husk/internal/config"
	"github.com/husk-build/husk/internal/errors"
)

type fakeStore struct {
	puts     map[string]*s3.PutObjectInput
	deletes  []string
	existing []string
	putErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{puts: map[string]*s3.PutObjectInput{}}
}

func (f *fakeStore) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	f.puts[*params.Key] = params
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeStore) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deletes = append(f.deletes, *params.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeStore) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	var contents []types.Object
	for _, key := range f.existing {
		contents = append(contents, types.Object{Key: aws.String(key)})
	}
	return &s3.ListObjectsV2Output{Contents: contents}, nil
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, body := range files {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestDeploy(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"index.html":         "<html></html>",
		"assets/main-abc.js": "console.log(1);",
		"manifest.json":      "{}",
	})

	store := newFakeStore()
	d := New(store, config.DeployConfig{Bucket: "site"}, zerolog.Nop())

	result, err := d.Deploy(context.Background(), dir)
	if err != nil {
		t.Fatalf("Deploy: %v", err)
	}

	want := []string{"assets/main-abc.js", "index.html", "manifest.json"}
	if diff := cmp.Diff(want, result.Uploaded); diff != "" {
		t.Errorf("Uploaded mismatch (-want +got):\n%s", diff)
	}
	if result.Bytes == 0 {
		t.Error("Bytes = 0")
	}

	put := store.puts["assets/main-abc.js"]
	if put == nil {
		t.Fatal("asset not uploaded")
	}
	if *put.ContentType != "text/javascript; charset=utf-8" {
		t.Errorf("ContentType = %q", *put.ContentType)
	}
	if *put.CacheControl != "public, max-age=31536000, immutable" {
		t.Errorf("CacheControl = %q", *put.CacheControl)
	}
	if *store.puts["index.html"].CacheControl != "no-cache" {
		t.Errorf("html CacheControl = %q", *store.puts["index.html"].CacheControl)
	}
}

func TestDeploy_Prefix(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"index.html": "<html></html>"})

	store := newFakeStore()
	d := New(store, config.DeployConfig{Bucket: "site", Prefix: "app/"}, zerolog.Nop())

	result, err := d.Deploy(context.Background(), dir)
	if err != nil {
		t.Fatalf("Deploy: %v", err)
	}
	if result.Uploaded[0] != "app/index.html" {
		t.Errorf("key = %q, want app/index.html", result.Uploaded[0])
	}
}

func TestDeploy_Prune(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"index.html": "<html></html>"})

	store := newFakeStore()
	store.existing = []string{"index.html", "assets/old-xyz.js"}
	d := New(store, config.DeployConfig{Bucket: "site", Prune: true}, zerolog.Nop())

	result, err := d.Deploy(context.Background(), dir)
	if err != nil {
		t.Fatalf("Deploy: %v", err)
	}
	if diff := cmp.Diff([]string{"assets/old-xyz.js"}, result.Deleted); diff != "" {
		t.Errorf("Deleted mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"assets/old-xyz.js"}, store.deletes); diff != "" {
		t.Errorf("store deletes mismatch (-want +got):\n%s", diff)
	}
}

func TestDeploy_Empty(t *testing.T) {
	store := newFakeStore()
	d := New(store, config.DeployConfig{Bucket: "site"}, zerolog.Nop())

	_, err := d.Deploy(context.Background(), t.TempDir())
	he, ok := err.(*errors.Error)
	if !ok || he.Code != "E404" {
		t.Errorf("err = %v, want E404", err)
	}
}

func TestDeploy_UploadError(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"index.html": "<html></html>"})

	store := newFakeStore()
	store.putErr = fmt.Errorf("access denied")
	d := New(store, config.DeployConfig{Bucket: "site"}, zerolog.Nop())

	_, err := d.Deploy(context.Background(), dir)
	he, ok := err.(*errors.Error)
	if !ok || he.Code != "E402" {
		t.Errorf("err = %v, want E402", err)
	}
}

func TestNewFromEnv_NoBucket(t *testing.T) {
	_, err := NewFromEnv(context.Background(), config.DeployConfig{}, zerolog.Nop())
	he, ok := err.(*errors.Error)
	if !ok || he.Code != "E403" {
		t.Errorf("err = %v, want E403", err)
	}
}

func TestObjectKey(t *testing.T) {
	tests := []struct {
		prefix string
		rel    string
		want   string
	}{
		{"", "index.html", "index.html"},
		{"app", "index.html", "app/index.html"},
		{"app/", "index.html", "app/index.html"},
		{"a/b", filepath.Join("assets", "x.js"), "a/b/assets/x.js"},
	}
	for _, tt := range tests {
		if got := ObjectKey(tt.prefix, tt.rel); got != tt.want {
			t.Errorf("ObjectKey(%q, %q) = %q, want %q", tt.prefix, tt.rel, got, tt.want)
		}
	}
}

func TestContentTypeFor(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"main.js", "text/javascript; charset=utf-8"},
		{"mod.mjs", "text/javascript; charset=utf-8"},
		{"main.js.map", "application/json"},
		{"lib.wasm", "application/wasm"},
		{"blob.bin", "application/octet-stream"},
	}
	for _, tt := range tests {
		if got := ContentTypeFor(tt.path); got != tt.want {
			t.Errorf("ContentTypeFor(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
