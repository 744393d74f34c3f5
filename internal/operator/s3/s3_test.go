package s3

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/smithy-go"

	"github.com/starford/laguz/internal/operator"
)

func testClient(t *testing.T) *S3 {
	t.Helper()
	// Construction is lazy; no request goes out until an operation runs.
	s, err := New(context.Background(), &operator.S3Config{Bucket: "bucket", Region: "us-east-1"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestRenameUnsupported(t *testing.T) {
	s := testClient(t)
	err := s.Rename(context.Background(), "old", "new")
	if !errors.Is(err, operator.ErrUnsupported) {
		t.Errorf("err = %v, want ErrUnsupported", err)
	}
}

func TestCapability(t *testing.T) {
	s := testClient(t)
	c := s.Capability()
	if c.Rename {
		t.Error("capability reports rename = true")
	}
	if !c.Read || !c.Write || !c.List || !c.Stat || !c.Delete || !c.Copy || !c.CreateDir {
		t.Errorf("capability = %+v", c)
	}
}

func TestNewWithStaticCredentials(t *testing.T) {
	s, err := New(context.Background(), &operator.S3Config{
		Bucket:          "bucket",
		Region:          "us-east-1",
		Endpoint:        "http://localhost:9000",
		AccessKeyID:     "ak",
		SecretAccessKey: "sk",
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s.bucket != "bucket" {
		t.Errorf("bucket = %q", s.bucket)
	}
}

func TestMapErr(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{"no such key", &smithy.GenericAPIError{Code: "NoSuchKey"}, operator.ErrNotFound},
		{"not found", &smithy.GenericAPIError{Code: "NotFound"}, operator.ErrNotFound},
		{"no such bucket", &smithy.GenericAPIError{Code: "NoSuchBucket"}, operator.ErrNotFound},
		{"access denied", &smithy.GenericAPIError{Code: "AccessDenied"}, operator.ErrPermission},
		{"bad key id", &smithy.GenericAPIError{Code: "InvalidAccessKeyId"}, operator.ErrPermission},
		{"bad signature", &smithy.GenericAPIError{Code: "SignatureDoesNotMatch"}, operator.ErrPermission},
		{"transport fault", errors.New("dial tcp: connection refused"), operator.ErrConnection},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := mapErr(c.err)
			if !errors.Is(got, c.want) {
				t.Errorf("mapErr(%v) = %v, want %v", c.err, got, c.want)
			}
		})
	}
}

func TestMapErrUnrecognisedAPIError(t *testing.T) {
	// Unrecognised API codes pass through unclassified rather than being
	// mislabelled as connection faults.
	in := &smithy.GenericAPIError{Code: "SlowDown"}
	got := mapErr(in)
	if errors.Is(got, operator.ErrConnection) || errors.Is(got, operator.ErrNotFound) || errors.Is(got, operator.ErrPermission) {
		t.Errorf("mapErr(%v) = %v, want unclassified", in, got)
	}
	var apiErr smithy.APIError
	if !errors.As(got, &apiErr) {
		t.Errorf("original API error lost: %v", got)
	}
}
