// Package importer loads a JSON snapshot of chat data into the
// document store. The file is a map of collections, each a map of
// document keys to documents; nested maps inside a document become
// subcollections addressed by a slash-joined path. Documents are
// upserted by (collection, key), so re-running an import overwrites
// rather than duplicates.
package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/allichat/server/internal/store"
)

type Importer struct {
	docs store.DocumentStore
}

func New(docs store.DocumentStore) *Importer {
	return &Importer{docs: docs}
}

// Run imports the file at path and returns the number of documents
// written.
func (im *Importer) Run(ctx context.Context, path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading import file: %w", err)
	}
	var root map[string]any
	if err := json.Unmarshal(raw, &root); err != nil {
		return 0, fmt.Errorf("parsing import file: %w", err)
	}

	total := 0
	for name, val := range root {
		docs, ok := val.(map[string]any)
		if !ok {
			// A bare value at the top level lands in the unnamed
			// collection under its own key.
			if err := im.docs.Put(ctx, "", name, map[string]any{"value": val}); err != nil {
				return total, err
			}
			total++
			continue
		}
		n, err := im.importCollection(ctx, name, docs)
		total += n
		if err != nil {
			return total, err
		}
	}
	slog.Info("import complete", "path", path, "documents", total)
	return total, nil
}

func (im *Importer) importCollection(ctx context.Context, collection string, docs map[string]any) (int, error) {
	total := 0
	for key, val := range docs {
		n, err := im.importDocument(ctx, collection, key, val)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func (im *Importer) importDocument(ctx context.Context, collection, key string, val any) (int, error) {
	doc, ok := val.(map[string]any)
	if !ok {
		if err := im.docs.Put(ctx, collection, key, map[string]any{"value": val}); err != nil {
			return 0, fmt.Errorf("writing %s/%s: %w", collection, key, err)
		}
		return 1, nil
	}

	total := 0
	fields := make(map[string]any)
	for fk, fv := range doc {
		if sub, ok := fv.(map[string]any); ok {
			n, err := im.importCollection(ctx, collection+"/"+key+"/"+fk, sub)
			total += n
			if err != nil {
				return total, err
			}
			continue
		}
		fields[fk] = fv
	}
	if err := im.docs.Put(ctx, collection, key, fields); err != nil {
		return total, fmt.Errorf("writing %s/%s: %w", collection, key, err)
	}
	return total + 1, nil
}
