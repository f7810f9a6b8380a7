package ossuploader

import (
	"context"
	"testing"
)

func TestNewRequiresEndpoint(t *testing.T) {
	_, err := New(context.Background(), Config{Bucket: "b"})
	if err == nil {
		t.Fatal("expected an error for missing Endpoint")
	}
}

func TestNewRequiresBucket(t *testing.T) {
	_, err := New(context.Background(), Config{Endpoint: "https://oss-cn-hangzhou.aliyuncs.com"})
	if err == nil {
		t.Fatal("expected an error for missing Bucket")
	}
}

func TestNewBuildsClientForValidConfig(t *testing.T) {
	u, err := New(context.Background(), Config{
		Endpoint:        "https://oss-cn-hangzhou.aliyuncs.com",
		Bucket:          "my-bucket",
		AccessKeyID:     "AKID",
		AccessKeySecret: "SECRET",
		UsePathStyle:    true,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if u.bucket != "my-bucket" {
		t.Fatalf("bucket = %q, want my-bucket", u.bucket)
	}
	if err := u.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
