package workflow

import (
	"context"
	"encoding/json"
	"errors"

	"bitbucket.org/distextil/telas_backend/docstore"
	"bitbucket.org/distextil/telas_backend/utils"
)

// Write is one pending document mutation inside a Plan.
type Write struct {
	Key    string
	Data   []byte
	Delete bool
}

// Plan is the explicit two-phase shape of a multi-document mutation: the
// workflow first decides every write, then Commit applies them in order.
// There is NO atomicity across writes and NO rollback: if write N fails,
// writes 1..N-1 stay applied. Callers get a PersistError naming the key
// that failed so an operator can repair the documents by hand.
type Plan struct {
	writes []Write
}

// Put queues a full-document rewrite.
func (p *Plan) Put(key string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	p.writes = append(p.writes, Write{Key: key, Data: data})
	return nil
}

// Remove queues a document deletion (a document whose last line was
// consumed is deleted rather than left empty).
func (p *Plan) Remove(key string) {
	p.writes = append(p.writes, Write{Key: key, Delete: true})
}

func (p *Plan) Writes() []Write {
	return p.writes
}

// Commit applies the plan's writes sequentially. The first failure stops
// the commit; earlier writes are not compensated.
func Commit(ctx context.Context, store docstore.Store, plan *Plan) error {
	for _, w := range plan.writes {
		if w.Delete {
			if err := store.Delete(ctx, w.Key); err != nil {
				if errors.Is(err, docstore.ErrObjectNotFound) {
					continue
				}
				return &utils.PersistError{Key: w.Key, Err: err}
			}
			continue
		}
		if err := store.Put(ctx, w.Key, w.Data); err != nil {
			return &utils.PersistError{Key: w.Key, Err: err}
		}
	}
	return nil
}
