package localstore

import (
	"context"
	"encoding/json"
	"errors"

	pkgerrors "github.com/angelmondragon/storefront-commerce/pkg/errors"
)

var errCorrupt = errors.New("local store record is corrupt")

// record is the JSON codec for one collection snapshot.
type record[S any] struct {
	storage Storage
	key     Key
}

// load returns ErrNotFound, errCorrupt, or a STORAGE_UNAVAILABLE error.
func (r record[S]) load(ctx context.Context) (S, error) {
	var snapshot S
	raw, err := r.storage.Get(ctx, r.key)
	if errors.Is(err, ErrNotFound) {
		return snapshot, ErrNotFound
	}
	if err != nil {
		return snapshot, pkgerrors.Wrap(pkgerrors.CodeStorageUnavailable, err, "read "+r.key.String())
	}
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		var zero S
		return zero, errors.Join(errCorrupt, err)
	}
	return snapshot, nil
}

func (r record[S]) save(ctx context.Context, snapshot S) error {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode "+r.key.String())
	}
	if err := r.storage.Set(ctx, r.key, raw); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorageUnavailable, err, "write "+r.key.String())
	}
	return nil
}

func (r record[S]) clear(ctx context.Context) error {
	if err := r.storage.Delete(ctx, r.key); err != nil && !errors.Is(err, ErrNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeStorageUnavailable, err, "delete "+r.key.String())
	}
	return nil
}

func (r record[S]) raw(ctx context.Context) ([]byte, error) {
	return r.storage.Get(ctx, r.key)
}
