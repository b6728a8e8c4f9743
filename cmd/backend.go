package cmd

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/VineetKiragi/cinemind/internal/corpus"
	"github.com/VineetKiragi/cinemind/internal/index"
)

// newSearcher builds the vector search backend from command-line flags.
// The "memory" backend loads the embedded corpus artifact and builds the
// in-process index; "milvus" connects to an already-populated collection.
// The returned cleanup func releases backend resources.
func newSearcher(ctx context.Context, backend, corpusPath string) (index.Searcher, func(), error) {
	switch backend {
	case "memory":
		docs, err := corpus.LoadDocuments(corpusPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load corpus %s: %w", corpusPath, err)
		}

		ix := index.New()
		version, err := ix.Build(docs)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to build index: %w", err)
		}
		log.Printf("[Index] built snapshot v%d: %d movies, dimension %d", version, ix.Size(), ix.Dimension())
		return ix, func() {}, nil

	case "milvus":
		config := index.DefaultMilvusConfig()
		if addr := os.Getenv("MILVUS_ADDRESS"); addr != "" {
			config.Address = addr
		}
		if milvusAddress != "" {
			config.Address = milvusAddress
		}
		if milvusCollection != "" {
			config.CollectionName = milvusCollection
		}

		searcher, err := index.NewMilvusSearcher(ctx, config)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to Milvus: %w", err)
		}
		return searcher, func() { searcher.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown vector backend %q (want memory or milvus)", backend)
	}
}
