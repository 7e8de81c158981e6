package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"time"

	gcs "cloud.google.com/go/storage"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

// GCS implements Storage on Google Cloud Storage.
type GCS struct {
	bucket string
	client *gcs.Client

	accessID   string
	privateKey []byte
}

// GCSOptions configures GCS client initialization.
type GCSOptions struct {
	// CredentialsFile is a service account JSON file path.
	CredentialsFile string
	// CredentialsJSON takes precedence over CredentialsFile.
	CredentialsJSON []byte
	// Endpoint overrides the API endpoint, e.g. for fake-gcs-server.
	Endpoint    string
	WithoutAuth bool

	// SignerAccessID and SignerPrivateKey enable PresignGet.
	SignerAccessID   string
	SignerPrivateKey []byte
}

// NewGCS builds a client from opts. Without credentials it falls back to
// application default credentials.
func NewGCS(ctx context.Context, bucket string, opts GCSOptions) (*GCS, error) {
	if bucket == "" {
		return nil, ErrMissingBucket
	}

	clientOpts, err := gcsClientOptions(ctx, opts)
	if err != nil {
		return nil, err
	}

	client, err := gcs.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, err
	}

	return &GCS{
		bucket:     bucket,
		client:     client,
		accessID:   opts.SignerAccessID,
		privateKey: opts.SignerPrivateKey,
	}, nil
}

func gcsClientOptions(ctx context.Context, opts GCSOptions) ([]option.ClientOption, error) {
	out := []option.ClientOption{}
	if opts.WithoutAuth {
		out = append(out, option.WithoutAuthentication())
	}

	raw := opts.CredentialsJSON
	if len(raw) == 0 && opts.CredentialsFile != "" {
		// #nosec G304 -- path is from trusted config file.
		b, err := os.ReadFile(opts.CredentialsFile)
		if err != nil {
			return nil, err
		}
		raw = b
	}
	if len(raw) > 0 {
		creds, err := google.CredentialsFromJSON(ctx, raw, gcs.ScopeReadWrite)
		if err != nil {
			return nil, err
		}
		out = append(out, option.WithCredentials(creds))
	}

	if opts.Endpoint != "" {
		out = append(out, option.WithEndpoint(opts.Endpoint))
	}

	return out, nil
}

func (g *GCS) Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (ObjectInfo, error) {
	w := g.client.Bucket(g.bucket).Object(key).NewWriter(ctx)
	w.ContentType = opts.ContentType
	w.Metadata = opts.Metadata

	if _, err := io.Copy(w, r); err != nil {
		return ObjectInfo{}, errors.Join(err, w.Close())
	}
	if err := w.Close(); err != nil {
		return ObjectInfo{}, err
	}

	info := ObjectInfo{Bucket: g.bucket, Key: key, Size: opts.Size}
	if attrs := w.Attrs(); attrs != nil {
		info.Size = attrs.Size
		info.ETag = attrs.Etag
	}

	return info, nil
}

func (g *GCS) PresignGet(_ context.Context, key string, expiry time.Duration) (string, error) {
	if g.accessID == "" || len(g.privateKey) == 0 {
		return "", ErrMissingSigner
	}

	return g.client.Bucket(g.bucket).SignedURL(key, &gcs.SignedURLOptions{
		Method:         http.MethodGet,
		Expires:        time.Now().Add(expiry),
		GoogleAccessID: g.accessID,
		PrivateKey:     g.privateKey,
		Scheme:         gcs.SigningSchemeV4,
	})
}

func (g *GCS) Delete(ctx context.Context, key string) error {
	err := g.client.Bucket(g.bucket).Object(key).Delete(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return nil
	}
	return err
}

func (g *GCS) Close() error {
	return g.client.Close()
}
