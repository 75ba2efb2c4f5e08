package objstore

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type fakePutter struct {
	bucket, key, contentType string
	body                     []byte
	err                      error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.bucket = aws.ToString(in.Bucket)
	f.key = aws.ToString(in.Key)
	f.contentType = aws.ToString(in.ContentType)
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.body = data
	return &s3.PutObjectOutput{}, nil
}

func TestObjectKey(t *testing.T) {
	tests := []struct {
		path, folder, want string
	}{
		{"/tmp/report.pdf", "", "report.pdf"},
		{"/tmp/report.pdf", "   ", "report.pdf"},
		{"/tmp/report.pdf", " docs ", "docs/report.pdf"},
		{"/tmp/report.pdf", "docs/2024/", "docs/2024/report.pdf"},
	}
	for _, tt := range tests {
		if got := ObjectKey(tt.path, tt.folder); got != tt.want {
			t.Errorf("ObjectKey(%q, %q): got %q, want %q", tt.path, tt.folder, got, tt.want)
		}
	}
}

func TestUpload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}
	fp := &fakePutter{}
	u := &Uploader{client: fp}

	key, err := u.Upload(context.Background(), path, " my-bucket ", "inbox")
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if key != "inbox/notes.txt" || fp.key != key || fp.bucket != "my-bucket" {
		t.Errorf("got key %q, put %q into %q", key, fp.key, fp.bucket)
	}
	if string(fp.body) != "hello" {
		t.Errorf("body: got %q", fp.body)
	}
	if fp.contentType == "" {
		t.Error("content type should be set from the extension")
	}
}

func TestUploadErrors(t *testing.T) {
	u := &Uploader{client: &fakePutter{}}
	if _, err := u.Upload(context.Background(), "x", "  ", ""); !errors.Is(err, ErrNoBucket) {
		t.Errorf("blank bucket: got %v", err)
	}
	if _, err := u.Upload(context.Background(), filepath.Join(t.TempDir(), "missing"), "b", ""); err == nil {
		t.Error("missing file should fail")
	}

	path := filepath.Join(t.TempDir(), "f.bin")
	os.WriteFile(path, []byte{1}, 0644)
	failing := &Uploader{client: &fakePutter{err: errors.New("denied")}}
	if _, err := failing.Upload(context.Background(), path, "b", ""); err == nil {
		t.Error("PutObject errors should surface")
	}
}
