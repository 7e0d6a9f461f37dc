// seedgraph uploads the precompressed route-snapping graph into the
// object-storage bucket that backs the /api/graph fallback.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/rs/zerolog"

	"github.com/openscenic/backend/internal/config"
	"github.com/openscenic/backend/internal/store"
)

func main() {
	log := zerolog.New(os.Stderr).With().Timestamp().Logger()
	cfg := config.Load()

	path := flag.String("path", cfg.GraphPath, "local graph file to upload")
	key := flag.String("key", cfg.GraphObjectKey, "object key to upload to")
	flag.Parse()

	data, err := os.ReadFile(*path)
	if err != nil {
		log.Fatal().Err(err).Str("path", *path).Msg("read graph file")
	}

	ctx := context.Background()
	minioStore, err := store.NewMinioStore(
		ctx, cfg.MinioEndpoint, cfg.MinioAccessKey,
		cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("minio connect")
	}

	if err := minioStore.Upload(ctx, *key, data, "application/octet-stream"); err != nil {
		log.Fatal().Err(err).Str("key", *key).Msg("upload graph")
	}
	log.Info().Str("key", *key).Int("bytes", len(data)).Msg("graph uploaded")
}
