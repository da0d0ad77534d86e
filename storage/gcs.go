package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	gcs "cloud.google.com/go/storage"
)

const uploadTimeout = time.Second * 50

// GCS stores blobs in a Google Cloud Storage bucket under a fixed path
// prefix.
type GCS struct {
	cl         *gcs.Client
	bucketName string
	uploadPath string
}

func NewGCS(ctx context.Context, bucketName string) (*GCS, error) {
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %v", err)
	}

	return &GCS{
		cl:         client,
		bucketName: bucketName,
		uploadPath: "screens/",
	}, nil
}

func (g *GCS) Put(key string, body io.Reader) error {
	ctx, cancel := context.WithTimeout(context.Background(), uploadTimeout)
	defer cancel()

	wc := g.cl.Bucket(g.bucketName).Object(g.uploadPath + key).NewWriter(ctx)
	if _, err := io.Copy(wc, body); err != nil {
		return fmt.Errorf("io.Copy: %v", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("Writer.Close: %v", err)
	}

	return nil
}

func (g *GCS) Get(key string) (io.ReadCloser, error) {
	// No deadline: the returned reader outlives this call.
	return g.cl.Bucket(g.bucketName).Object(g.uploadPath + key).NewReader(context.Background())
}

func (g *GCS) Delete(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), uploadTimeout)
	defer cancel()

	return g.cl.Bucket(g.bucketName).Object(g.uploadPath + key).Delete(ctx)
}

func (g *GCS) URL(key string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s%s", g.bucketName, g.uploadPath, key)
}
