// Package store persists snapshots and aggregates in a Google Cloud Storage
// bucket. Blob names embed sortable timestamps, so lexicographic order of a
// listing is chronological order.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/iterator"

	"coderops/internal/metrics"
	"coderops/internal/snapshot"
	"coderops/internal/ui"
)

const (
	snapshotPrefix = "snapshots/"
	latestName     = "latest.json"
	aggregateName  = "analytics_aggregate.json"

	// DefaultDownloadWorkers bounds the parallel snapshot download pool.
	DefaultDownloadWorkers = 20

	// retentionDays is the bucket lifecycle applied on first creation.
	retentionDays = 90
)

// Store is a handle to the analytics bucket. Callers inject it into the
// collector and aggregator; there are no package-level client singletons.
type Store struct {
	client  *storage.Client
	bucket  string
	project string
}

// New opens a storage client against the given bucket. The project id is only
// needed when the bucket has to be created.
func New(ctx context.Context, bucket, project string) (*Store, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &Store{client: client, bucket: bucket, project: project}, nil
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

// ListSnapshots returns all snapshot blob names sorted chronologically.
func (s *Store) ListSnapshots(ctx context.Context) ([]string, error) {
	it := s.client.Bucket(s.bucket).Objects(ctx, &storage.Query{Prefix: snapshotPrefix})

	var names []string
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list snapshots: %w", err)
		}
		if strings.HasSuffix(attrs.Name, ".json") {
			names = append(names, attrs.Name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Download fetches and decodes one snapshot blob.
func (s *Store) Download(ctx context.Context, name string) (*snapshot.Snapshot, error) {
	r, err := s.client.Bucket(s.bucket).Object(name).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return snapshot.Decode(data)
}

// DownloadAll fetches the named snapshots with a bounded worker pool and
// returns them in the given (chronological) order. A snapshot that fails to
// download or decode is logged and dropped; the replay tolerates partial
// history loss rather than aborting.
func (s *Store) DownloadAll(ctx context.Context, names []string, workers int) []*snapshot.Snapshot {
	if workers <= 0 {
		workers = DefaultDownloadWorkers
	}

	// Each worker writes its own slot, so no locking is needed.
	results := make([]*snapshot.Snapshot, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			snap, err := s.Download(gctx, name)
			if err != nil {
				ui.ShowWarning("Skipping %s: %v", name, err)
				return nil
			}
			results[i] = snap
			return nil
		})
	}
	// Workers never return errors; failures are absorbed per item.
	_ = g.Wait()

	ordered := make([]*snapshot.Snapshot, 0, len(names))
	for _, snap := range results {
		if snap != nil {
			ordered = append(ordered, snap)
		}
	}
	return ordered
}

// Latest returns the most recent snapshot, or nil when the bucket holds none.
// Missing history is a normal condition, not an error.
func (s *Store) Latest(ctx context.Context) (*snapshot.Snapshot, error) {
	names, err := s.ListSnapshots(ctx)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, nil
	}
	return s.Download(ctx, names[len(names)-1])
}

// EnsureBucket creates the bucket with the retention lifecycle if it does not
// exist yet.
func (s *Store) EnsureBucket(ctx context.Context) error {
	bkt := s.client.Bucket(s.bucket)
	_, err := bkt.Attrs(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, storage.ErrBucketNotExist) {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}

	ui.ShowInfo("Bucket %s does not exist, creating...", s.bucket)
	attrs := &storage.BucketAttrs{
		Lifecycle: storage.Lifecycle{
			Rules: []storage.LifecycleRule{{
				Action:    storage.LifecycleAction{Type: storage.DeleteAction},
				Condition: storage.LifecycleCondition{AgeInDays: retentionDays},
			}},
		},
	}
	if err := bkt.Create(ctx, s.project, attrs); err != nil {
		return fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}
	ui.ShowSuccess("Created bucket %s with %d-day lifecycle policy", s.bucket, retentionDays)
	return nil
}

// UploadSnapshot writes the snapshot blob and mirrors it to latest.json.
func (s *Store) UploadSnapshot(ctx context.Context, snap *snapshot.Snapshot) error {
	if err := s.EnsureBucket(ctx); err != nil {
		return err
	}

	data, err := snap.Encode()
	if err != nil {
		return err
	}

	name := snapshot.BlobName(snap.Timestamp)
	if err := s.put(ctx, name, data); err != nil {
		return err
	}
	if err := s.put(ctx, latestName, data); err != nil {
		return err
	}
	return nil
}

// UploadAggregate writes analytics_aggregate.json to the bucket root.
func (s *Store) UploadAggregate(ctx context.Context, agg *metrics.Aggregate) error {
	data, err := json.MarshalIndent(agg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode aggregate: %w", err)
	}
	return s.put(ctx, aggregateName, data)
}

func (s *Store) put(ctx context.Context, name string, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(name).NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize %s: %w", name, err)
	}
	return nil
}
