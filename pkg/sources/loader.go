package sources

import (
	"context"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/agentstation/playmap/pkg/canonicalize"
	"github.com/agentstation/playmap/pkg/catalog"
	"github.com/agentstation/playmap/pkg/constants"
	"github.com/agentstation/playmap/pkg/errors"
	"github.com/agentstation/playmap/pkg/logging"
)

// Batch is the decoded content of one input.
type Batch struct {
	Spec    Spec
	Records []*catalog.RawRecord // KindRecords
	Cache   canonicalize.Cache   // KindCache
	Missing bool                 // optional file not found
}

// Result collects every batch that loaded, in spec order, and the
// per-input failures.
type Result struct {
	Batches []Batch
	Errors  []error
}

// Get returns the batch for id.
func (r *Result) Get(id ID) (Batch, bool) {
	for _, b := range r.Batches {
		if b.Spec.ID == id {
			return b, true
		}
	}
	return Batch{}, false
}

// Records returns the records of id, or nil.
func (r *Result) Records(id ID) []*catalog.RawRecord {
	b, _ := r.Get(id)
	return b.Records
}

// Cache returns the cache of id, or nil.
func (r *Result) Cache(id ID) canonicalize.Cache {
	b, _ := r.Get(id)
	return b.Cache
}

// Loader reads input files concurrently.
type Loader struct {
	// Concurrency bounds parallel reads. Zero uses the default.
	Concurrency int
	// ReadFile reads a path. Nil uses os.ReadFile.
	ReadFile func(string) ([]byte, error)
}

// NewLoader returns a loader with the default concurrency.
func NewLoader() *Loader {
	return &Loader{Concurrency: constants.DefaultLoadConcurrency}
}

// Load reads and decodes every spec. A failed input is reported in
// Result.Errors and does not affect the others. The returned error is
// only set when ctx is canceled.
func (l *Loader) Load(ctx context.Context, specs []Spec) (*Result, error) {
	limit := l.Concurrency
	if limit <= 0 {
		limit = constants.DefaultLoadConcurrency
	}
	read := l.ReadFile
	if read == nil {
		read = os.ReadFile
	}

	batches := make([]*Batch, len(specs))
	failures := make([]error, len(specs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, spec := range specs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			b, err := loadOne(gctx, spec, read)
			if err != nil {
				failures[i] = err
				return nil
			}
			batches[i] = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.WrapResource("load", "sources", "", errors.ErrCanceled)
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.WrapResource("load", "sources", "", errors.ErrCanceled)
	}

	res := &Result{}
	for i := range specs {
		if batches[i] != nil {
			res.Batches = append(res.Batches, *batches[i])
		}
		if failures[i] != nil {
			res.Errors = append(res.Errors, failures[i])
		}
	}
	return res, nil
}

func loadOne(ctx context.Context, spec Spec, read func(string) ([]byte, error)) (*Batch, error) {
	logger := logging.FromContext(logging.WithSource(ctx, spec.Name()))
	b := &Batch{Spec: spec}

	data, err := read(spec.Path)
	if err != nil {
		if os.IsNotExist(err) && spec.Optional {
			logger.Debug().Str("path", spec.Path).Msg("optional input missing")
			b.Missing = true
			if spec.Kind == KindCache {
				b.Cache = canonicalize.Cache{}
			}
			return b, nil
		}
		return nil, errors.WrapSource(spec.Name(), spec.Path, errors.WrapIO("read", spec.Path, err))
	}

	switch spec.Kind {
	case KindCache:
		cache, err := DecodeCache(spec.Path, data)
		if err != nil {
			return nil, retag(err, spec)
		}
		b.Cache = cache
		logger.Debug().Int("entries", len(cache)).Msg("cache loaded")
	default:
		records, err := Decode(spec.Path, data, spec.Key)
		if err != nil {
			return nil, retag(err, spec)
		}
		tagSource(records, spec.Name())
		b.Records = records
		logger.Debug().Int("records", len(records)).Msg("records loaded")
	}
	return b, nil
}

// retag names a decode failure after the input rather than its path.
func retag(err error, spec Spec) error {
	var se *errors.SourceError
	if errors.As(err, &se) {
		return errors.NewSourceError(spec.Name(), spec.Path, se.Err)
	}
	return errors.WrapSource(spec.Name(), spec.Path, err)
}

// tagSource labels records that do not name their own source.
func tagSource(records []*catalog.RawRecord, name string) {
	for _, rec := range records {
		if _, ok := rec.Lookup("sources"); ok {
			continue
		}
		if _, ok := rec.Lookup("source"); ok {
			continue
		}
		rec.Set("source", name)
	}
}

// ReadAll is Load with a fresh default loader.
func ReadAll(ctx context.Context, specs []Spec) (*Result, error) {
	return NewLoader().Load(ctx, specs)
}
