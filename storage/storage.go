// Package storage handles post media in the object store. Uploads never pass
// through the server: clients PUT directly against a short-lived pre-signed
// URL and only report the resulting key back with the post.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// UploadURLTTL bounds how long a minted upload URL stays valid.
const UploadURLTTL = 5 * time.Minute

var ErrUnsupportedContentType = errors.New("storage: unsupported content type")

// PresignAPI is the slice of the S3 presign client the uploader needs.
type PresignAPI interface {
	PresignPutObject(ctx context.Context, input *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// ObjectAPI is the slice of the S3 client used for deletions.
type ObjectAPI interface {
	DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// UploadTicket is what the client needs to push one file to the store.
type UploadTicket struct {
	URL       string    `json:"url"`
	Key       string    `json:"key"`
	PublicURL string    `json:"public_url"`
	Kind      string    `json:"kind"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Client struct {
	bucket        string
	publicBaseURL string
	presigner     PresignAPI
	objects       ObjectAPI
}

// NewClient builds the store client from AWS_REGION, MEDIA_BUCKET and
// optionally PUBLIC_MEDIA_BASE_URL. Constructed once at startup and handed to
// the handlers that need it.
func NewClient(ctx context.Context) (*Client, error) {
	bucket := os.Getenv("MEDIA_BUCKET")
	if bucket == "" {
		return nil, errors.New("MEDIA_BUCKET is not set")
	}
	region := os.Getenv("AWS_REGION")

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}

	s3Client := s3.NewFromConfig(cfg)

	publicBaseURL := os.Getenv("PUBLIC_MEDIA_BASE_URL")
	if publicBaseURL == "" {
		publicBaseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}

	return &Client{
		bucket:        bucket,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
		presigner:     s3.NewPresignClient(s3Client),
		objects:       s3Client,
	}, nil
}

// NewClientWith wires explicit API implementations; used by tests.
func NewClientWith(bucket, publicBaseURL string, presigner PresignAPI, objects ObjectAPI) *Client {
	return &Client{
		bucket:        bucket,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
		presigner:     presigner,
		objects:       objects,
	}
}

// GenerateUploadURL mints a content-type-scoped pre-signed PUT URL under the
// owner's key prefix. An abandoned upload leaves an unreferenced object
// behind; nothing garbage-collects those.
func (c *Client) GenerateUploadURL(ctx context.Context, ownerID, contentType string) (*UploadTicket, error) {
	kind, err := KindForContentType(contentType)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s/%s%s", ownerID, uuid.New().String(), extensionFor(contentType))

	req, err := c.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(UploadURLTTL))
	if err != nil {
		return nil, err
	}

	return &UploadTicket{
		URL:       req.URL,
		Key:       key,
		PublicURL: c.publicBaseURL + "/" + key,
		Kind:      kind,
		ExpiresAt: time.Now().Add(UploadURLTTL),
	}, nil
}

// DeleteObject removes a stored media object, e.g. when its post is deleted.
func (c *Client) DeleteObject(ctx context.Context, key string) error {
	_, err := c.objects.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	return err
}

// KindForContentType maps a mime type onto the media kind stored with a post.
func KindForContentType(contentType string) (string, error) {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return "IMAGE", nil
	case strings.HasPrefix(contentType, "video/"):
		return "VIDEO", nil
	default:
		return "", ErrUnsupportedContentType
	}
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "video/mp4":
		return ".mp4"
	case "video/quicktime":
		return ".mov"
	case "video/webm":
		return ".webm"
	default:
		return ""
	}
}
