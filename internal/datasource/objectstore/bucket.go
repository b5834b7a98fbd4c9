package objectstore

import (
	"context"
	"io"
	"path"
	"sort"
	"strings"

	"wrangle/internal/datasource"
)

// Bucket lists every object under a prefix whose base name contains a '.'.
// Keys are used verbatim as collection keys.
type Bucket struct {
	client Client
	bucket string
	prefix string
}

// NewBucket returns a Bucket source reading bucket/prefix through client.
func NewBucket(client Client, bucket, prefix string) *Bucket {
	return &Bucket{client: client, bucket: bucket, prefix: prefix}
}

var _ datasource.Source = (*Bucket)(nil)

// List issues a single listing call and returns the candidate keys sorted.
func (b *Bucket) List(ctx context.Context) ([]datasource.Ref, error) {
	keys, err := b.client.ListPrefix(ctx, b.bucket, b.prefix)
	if err != nil {
		return nil, &datasource.AccessError{Op: "list", Locator: b.locator(b.prefix), Code: classify(err), Err: err}
	}

	refs := make([]datasource.Ref, 0, len(keys))
	for _, k := range keys {
		if strings.HasSuffix(k, "/") || !strings.Contains(path.Base(k), ".") {
			continue
		}
		refs = append(refs, datasource.Ref{Locator: k, Ext: strings.ToLower(path.Ext(k))})
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Locator < refs[j].Locator })
	return refs, nil
}

// Open fetches the object named by ref.
func (b *Bucket) Open(ctx context.Context, ref datasource.Ref) (io.ReadCloser, error) {
	rc, err := b.client.GetObject(ctx, b.bucket, ref.Locator)
	if err != nil {
		return nil, &datasource.AccessError{Op: "open", Locator: b.locator(ref.Locator), Code: classify(err), Err: err}
	}
	return rc, nil
}

// Key is the full object key, extension included.
func (b *Bucket) Key(ref datasource.Ref) string { return ref.Locator }

func (b *Bucket) locator(key string) string { return "s3://" + b.bucket + "/" + key }
