package source

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/puzpuzpuz/xsync/v4"

	"github.com/DenisMSouza/abtest-sub000/internal/kvutil"
	"github.com/DenisMSouza/abtest-sub000/internal/logger"
	"github.com/DenisMSouza/abtest-sub000/types"
)

// DefaultExperimentBucket is the KV bucket name used when none is configured.
const DefaultExperimentBucket = "abtest-experiments"

// KVWatch mirrors a NATS JetStream KV bucket of experiment definitions into
// memory.
//
// Each bucket key is an experiment ID and each value its JSON definition.
// After Start, a watcher keeps the in-memory mirror current, so lookups never
// block on the network. Deleted or purged keys drop out of the mirror.
type KVWatch struct {
	kv     jetstream.KeyValue
	logger types.Logger

	experiments *xsync.Map[string, types.Experiment]

	mu      sync.Mutex
	watcher jetstream.KeyWatcher
	done    chan struct{}
}

var _ types.ExperimentSource = (*KVWatch)(nil)

// KVWatchOption configures a KVWatch source.
type KVWatchOption func(*KVWatch)

// WithKVLogger sets the logger used for watcher diagnostics.
func WithKVLogger(l types.Logger) KVWatchOption {
	return func(k *KVWatch) {
		k.logger = l
	}
}

// NewKVWatch creates or opens the experiment bucket and returns the source.
// Call Start to populate the mirror and begin watching for changes.
//
// Parameters:
//   - ctx: Context for bucket creation
//   - js: JetStream context
//   - bucket: Bucket name (DefaultExperimentBucket when empty)
//   - opts: Optional configuration
//
// Returns:
//   - *KVWatch: Initialized source, not yet watching
//   - error: Bucket creation/open failure
func NewKVWatch(ctx context.Context, js jetstream.JetStream, bucket string, opts ...KVWatchOption) (*KVWatch, error) {
	if bucket == "" {
		bucket = DefaultExperimentBucket
	}

	kv, err := kvutil.EnsureBucket(ctx, js, jetstream.KeyValueConfig{
		Bucket:      bucket,
		Description: "experiment definitions",
		Storage:     jetstream.FileStorage,
	}, 3)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure experiment bucket: %w", err)
	}

	return NewKVWatchFromBucket(kv, opts...), nil
}

// NewKVWatchFromBucket wraps an already opened KV bucket. Useful in tests and
// when the caller manages bucket lifecycle itself.
func NewKVWatchFromBucket(kv jetstream.KeyValue, opts ...KVWatchOption) *KVWatch {
	k := &KVWatch{
		kv:          kv,
		logger:      logger.NewNop(),
		experiments: xsync.NewMap[string, types.Experiment](),
	}
	for _, opt := range opts {
		opt(k)
	}

	return k
}

// Start loads the current bucket contents and begins watching for updates.
//
// The initial replay is consumed synchronously, so once Start returns the
// mirror reflects every definition present in the bucket. Calling Start on a
// source that is already watching is an error.
//
// Parameters:
//   - ctx: Context bounding the initial replay and the watcher lifetime
//
// Returns:
//   - error: Watcher creation or initial replay failure
func (k *KVWatch) Start(ctx context.Context) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.watcher != nil {
		return fmt.Errorf("experiment watcher already started")
	}

	watcher, err := k.kv.WatchAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to watch experiment bucket: %w", err)
	}

	// Consume the initial replay up to the nil end-of-replay marker so the
	// mirror is complete before lookups begin.
	for {
		select {
		case <-ctx.Done():
			watcher.Stop() //nolint:errcheck
			return ctx.Err()
		case entry := <-watcher.Updates():
			if entry == nil {
				k.watcher = watcher
				k.done = make(chan struct{})
				go k.watch(watcher, k.done)

				return nil
			}
			k.apply(entry)
		}
	}
}

// Stop halts the watcher. The mirror keeps serving its last known state.
func (k *KVWatch) Stop() {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.watcher == nil {
		return
	}

	k.watcher.Stop() //nolint:errcheck
	<-k.done
	k.watcher = nil
	k.done = nil
}

func (k *KVWatch) watch(watcher jetstream.KeyWatcher, done chan struct{}) {
	defer close(done)

	for entry := range watcher.Updates() {
		if entry == nil {
			continue
		}
		k.apply(entry)
	}
}

func (k *KVWatch) apply(entry jetstream.KeyValueEntry) {
	switch entry.Operation() {
	case jetstream.KeyValueDelete, jetstream.KeyValuePurge:
		k.experiments.Delete(entry.Key())
		k.logger.Debug("experiment removed", "experiment", entry.Key())
	case jetstream.KeyValuePut:
		var exp types.Experiment
		if err := json.Unmarshal(entry.Value(), &exp); err != nil {
			k.logger.Warn("skipping malformed experiment definition",
				"key", entry.Key(), "error", err)

			return
		}
		if exp.ID == "" {
			exp.ID = entry.Key()
		}
		k.experiments.Store(entry.Key(), exp)
		k.logger.Debug("experiment updated", "experiment", entry.Key())
	}
}

// GetExperiment returns the mirrored definition for id.
//
// Returns:
//   - *types.Experiment: A copy of the mirrored definition
//   - error: types.ErrExperimentNotFound when id is not in the mirror
func (k *KVWatch) GetExperiment(_ context.Context, id string) (*types.Experiment, error) {
	exp, ok := k.experiments.Load(id)
	if !ok {
		return nil, fmt.Errorf("experiment %s: %w", id, types.ErrExperimentNotFound)
	}

	return &exp, nil
}

// PutExperiment publishes a definition to the bucket. Every replica watching
// the bucket picks it up.
//
// Parameters:
//   - ctx: Context for the KV write
//   - exp: Definition to publish; its ID is the bucket key
//
// Returns:
//   - error: Encoding or KV failure
func (k *KVWatch) PutExperiment(ctx context.Context, exp types.Experiment) error {
	if exp.ID == "" {
		return types.ErrExperimentRequired
	}

	data, err := json.Marshal(exp)
	if err != nil {
		return fmt.Errorf("failed to encode experiment %s: %w", exp.ID, err)
	}

	if _, err := k.kv.Put(ctx, exp.ID, data); err != nil {
		return fmt.Errorf("failed to publish experiment %s: %w", exp.ID, err)
	}

	return nil
}
