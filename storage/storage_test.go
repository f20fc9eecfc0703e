package storage

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type fakePresigner struct {
	lastInput *s3.PutObjectInput
	err       error
}

func (f *fakePresigner) PresignPutObject(ctx context.Context, input *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	f.lastInput = input
	if f.err != nil {
		return nil, f.err
	}
	return &v4.PresignedHTTPRequest{
		URL:    "https://signed.example.com/" + *input.Key,
		Method: "PUT",
	}, nil
}

type fakeObjects struct {
	lastInput *s3.DeleteObjectInput
	err       error
}

func (f *fakeObjects) DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.lastInput = input
	if f.err != nil {
		return nil, f.err
	}
	return &s3.DeleteObjectOutput{}, nil
}

func TestGenerateUploadURL(t *testing.T) {
	presigner := &fakePresigner{}
	client := NewClientWith("media-bucket", "https://media.example.com/", presigner, &fakeObjects{})

	ticket, err := client.GenerateUploadURL(context.Background(), "user-1", "image/png")
	if err != nil {
		t.Fatalf("GenerateUploadURL: %v", err)
	}

	if !strings.HasPrefix(ticket.Key, "user-1/") {
		t.Errorf("key not under owner prefix: %s", ticket.Key)
	}
	if !strings.HasSuffix(ticket.Key, ".png") {
		t.Errorf("key missing extension: %s", ticket.Key)
	}
	if ticket.Kind != "IMAGE" {
		t.Errorf("expected IMAGE kind, got %s", ticket.Kind)
	}
	if ticket.URL != "https://signed.example.com/"+ticket.Key {
		t.Errorf("unexpected signed URL: %s", ticket.URL)
	}
	if ticket.PublicURL != "https://media.example.com/"+ticket.Key {
		t.Errorf("unexpected public URL: %s", ticket.PublicURL)
	}
	if remaining := time.Until(ticket.ExpiresAt); remaining <= 0 || remaining > UploadURLTTL {
		t.Errorf("expiry outside TTL window: %v", remaining)
	}

	if got := *presigner.lastInput.Bucket; got != "media-bucket" {
		t.Errorf("wrong bucket presigned: %s", got)
	}
	if got := *presigner.lastInput.ContentType; got != "image/png" {
		t.Errorf("content type not scoped into the URL: %s", got)
	}
}

func TestGenerateUploadURLDistinctKeys(t *testing.T) {
	client := NewClientWith("media-bucket", "https://media.example.com", &fakePresigner{}, &fakeObjects{})

	first, err := client.GenerateUploadURL(context.Background(), "user-1", "video/mp4")
	if err != nil {
		t.Fatal(err)
	}
	second, err := client.GenerateUploadURL(context.Background(), "user-1", "video/mp4")
	if err != nil {
		t.Fatal(err)
	}
	if first.Key == second.Key {
		t.Errorf("keys must be unique per ticket, both were %s", first.Key)
	}
	if first.Kind != "VIDEO" {
		t.Errorf("expected VIDEO kind, got %s", first.Kind)
	}
}

func TestGenerateUploadURLRejectsBadContentType(t *testing.T) {
	presigner := &fakePresigner{}
	client := NewClientWith("media-bucket", "https://media.example.com", presigner, &fakeObjects{})

	_, err := client.GenerateUploadURL(context.Background(), "user-1", "application/pdf")
	if !errors.Is(err, ErrUnsupportedContentType) {
		t.Fatalf("expected ErrUnsupportedContentType, got %v", err)
	}
	if presigner.lastInput != nil {
		t.Error("presigner called for unsupported content type")
	}
}

func TestDeleteObject(t *testing.T) {
	objects := &fakeObjects{}
	client := NewClientWith("media-bucket", "https://media.example.com", &fakePresigner{}, objects)

	if err := client.DeleteObject(context.Background(), "user-1/abc.png"); err != nil {
		t.Fatalf("DeleteObject: %v", err)
	}
	if got := *objects.lastInput.Bucket; got != "media-bucket" {
		t.Errorf("wrong bucket: %s", got)
	}
	if got := *objects.lastInput.Key; got != "user-1/abc.png" {
		t.Errorf("wrong key: %s", got)
	}

	objects.err = errors.New("access denied")
	if err := client.DeleteObject(context.Background(), "user-1/abc.png"); err == nil {
		t.Error("expected delete error to surface")
	}
}

func TestKindForContentType(t *testing.T) {
	cases := []struct {
		contentType string
		kind        string
		wantErr     bool
	}{
		{"image/jpeg", "IMAGE", false},
		{"image/webp", "IMAGE", false},
		{"video/mp4", "VIDEO", false},
		{"video/webm", "VIDEO", false},
		{"application/pdf", "", true},
		{"text/plain", "", true},
	}
	for _, tc := range cases {
		kind, err := KindForContentType(tc.contentType)
		if tc.wantErr {
			if !errors.Is(err, ErrUnsupportedContentType) {
				t.Errorf("%s: expected error, got %v", tc.contentType, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: %v", tc.contentType, err)
		}
		if kind != tc.kind {
			t.Errorf("%s: expected %s, got %s", tc.contentType, tc.kind, kind)
		}
	}
}
