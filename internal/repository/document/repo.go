package document

import (
	"context"
	"fmt"

	"github.com/yash-quizizz/image-search/internal/db"
	"github.com/yash-quizizz/image-search/internal/domain"
	dombatch "github.com/yash-quizizz/image-search/internal/domain/batch"
	domdoc "github.com/yash-quizizz/image-search/internal/domain/document"
)

// store is the consumer interface for documents (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) []error
}

// Repo writes documents as hashes under their index's key prefix.
type Repo struct {
	store     store
	keyspace  domain.Keyspace
	vectorDim int
}

// New creates a document repository. vectorDim > 0 rejects image documents whose
// vector would not fit the index schema before they are sent.
func New(s store, ks domain.Keyspace, vectorDim int) *Repo {
	return &Repo{store: s, keyspace: ks, vectorDim: vectorDim}
}

// BulkWrite stores one chunk in a single pipelined round-trip.
// The result slice is aligned with docs; rejected documents do not affect siblings.
func (r *Repo) BulkWrite(ctx context.Context, docs []domdoc.Document) []dombatch.Result {
	results := make([]dombatch.Result, len(docs))

	items := make([]db.HashSetItem, 0, len(docs))
	sent := make([]int, 0, len(docs))

	for i, doc := range docs {
		fields, err := r.encode(doc)
		if err != nil {
			results[i] = dombatch.NewError(doc.Index(), doc.ID(), err)
			continue
		}
		items = append(items, db.HashSetItem{
			Key:    r.keyspace.DocKey(doc.Index(), doc.ID()),
			Fields: fields,
		})
		sent = append(sent, i)
	}

	if len(items) == 0 {
		return results
	}

	errs := r.store.HSetMulti(ctx, items)
	for j, i := range sent {
		doc := docs[i]
		var err error
		if j < len(errs) {
			err = errs[j]
		} else {
			err = fmt.Errorf("no reply for %s", items[j].Key)
		}
		if err != nil {
			results[i] = dombatch.NewError(doc.Index(), doc.ID(), fmt.Errorf("%w: %w", domain.ErrIndexWrite, err))
			continue
		}
		results[i] = dombatch.NewOK(doc.Index(), doc.ID())
	}

	return results
}

func (r *Repo) encode(doc domdoc.Document) (map[string]string, error) {
	if doc.ID() == "" {
		return nil, fmt.Errorf("%w: empty document id", domain.ErrIndexWrite)
	}
	if img, ok := doc.(domdoc.Image); ok && r.vectorDim > 0 && len(img.FeatureVector()) != r.vectorDim {
		return nil, fmt.Errorf("%w: vector has %d dims, index expects %d",
			domain.ErrIndexWrite, len(img.FeatureVector()), r.vectorDim)
	}
	fields, err := buildHashFields(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIndexWrite, err)
	}
	return fields, nil
}
