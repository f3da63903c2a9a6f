// Command catalog-ingest loads gzipped NDJSON book dumps into the local
// catalog table. Files are streamed concurrently; a bloom filter keeps
// already-seen book IDs from being written twice across dumps.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/bookshelf-backend/internal/domain/book"
	"github.com/xenking/bookshelf-backend/internal/storage/postgres"
)

const (
	bloomCapacity = 10_000_000
	bloomFPR      = 0.001
	batchSize     = 500
	progressEvery = 100_000
	defaultStock  = 10
)

// bookJSON is one NDJSON dump line. Price and stock are optional: absent
// values fall back to the deterministic price oracle and a default stock.
type bookJSON struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Authors     []string        `json:"authors"`
	Description string          `json:"description"`
	Thumbnail   string          `json:"thumbnail"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
}

func (b bookJSON) toDomain() book.Book {
	price := b.Price
	if price.IsZero() {
		price = book.PriceFromID(b.ID)
	}
	stock := b.Stock
	if stock <= 0 {
		stock = defaultStock
	}
	return book.Book{
		ID:          b.ID,
		Title:       b.Title,
		Authors:     b.Authors,
		Description: b.Description,
		Thumbnail:   b.Thumbnail,
		Price:       price,
		Stock:       stock,
	}
}

func main() {
	var (
		dataDir     string
		databaseURL string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing *.ndjson.gz book dumps")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, dataDir, databaseURL); err != nil {
		slog.Error("catalog ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog ingest completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL string) error {
	files, err := filepath.Glob(filepath.Join(dataDir, "*.ndjson.gz"))
	if err != nil {
		return errors.Wrap(err, "glob data dir")
	}
	if len(files) == 0 {
		return errors.Errorf("no *.ndjson.gz files in %s", dataDir)
	}

	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	repo := postgres.NewBookRepository(pool)

	// Readers fan out per file; one writer dedupes and batches inserts so
	// the bloom filter never needs a lock.
	lines := make(chan book.Book, batchSize)

	g, gctx := errgroup.WithContext(ctx)
	readers, rctx := errgroup.WithContext(gctx)
	for i, f := range files {
		readers.Go(streamDumpFile(rctx, i, f, lines))
	}
	g.Go(func() error {
		defer close(lines)
		return readers.Wait()
	})
	g.Go(writeBooks(gctx, repo, lines))

	return g.Wait()
}

// streamDumpFile parses one gzipped NDJSON dump and sends its books downstream.
func streamDumpFile(ctx context.Context, idx int, path string, out chan<- book.Book) func() error {
	return func() error {
		f, err := os.Open(path)
		if err != nil {
			return errors.Wrapf(err, "open %s", path)
		}
		defer func() { _ = f.Close() }()

		gz, err := pgzip.NewReader(f)
		if err != nil {
			return errors.Wrapf(err, "create gzip reader for %s", path)
		}
		defer func() { _ = gz.Close() }()

		var count, skipped uint64
		scanner := bufio.NewScanner(gz)
		scanner.Buffer(make([]byte, 0, 1<<20), 1<<20)
		for scanner.Scan() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var b bookJSON
			if err := json.Unmarshal(scanner.Bytes(), &b); err != nil || b.ID == "" {
				skipped++
				continue
			}

			select {
			case out <- b.toDomain():
			case <-ctx.Done():
				return ctx.Err()
			}

			count++
			if count%progressEvery == 0 {
				slog.Info("ingest progress",
					slog.Int("file", idx+1),
					slog.Uint64("books", count),
				)
			}
		}
		if err := scanner.Err(); err != nil {
			return errors.Wrapf(err, "scan %s", path)
		}

		slog.Info("file complete",
			slog.Int("file", idx+1),
			slog.Uint64("books", count),
			slog.Uint64("skipped", skipped),
		)
		return nil
	}
}

// writeBooks drains the channel, drops IDs already seen, and upserts in
// batches.
func writeBooks(ctx context.Context, repo *postgres.BookRepository, in <-chan book.Book) func() error {
	return func() error {
		seen := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
		batch := make([]book.Book, 0, batchSize)
		var written, dupes uint64

		flush := func() error {
			if len(batch) == 0 {
				return nil
			}
			if err := repo.Put(ctx, batch); err != nil {
				return errors.Wrap(err, "upsert batch")
			}
			written += uint64(len(batch))
			batch = batch[:0]
			return nil
		}

		for b := range in {
			if seen.TestString(b.ID) {
				dupes++
				continue
			}
			seen.AddString(b.ID)

			batch = append(batch, b)
			if len(batch) == batchSize {
				if err := flush(); err != nil {
					return err
				}
			}
		}
		if err := flush(); err != nil {
			return err
		}

		slog.Info("write complete",
			slog.Uint64("written", written),
			slog.Uint64("duplicates", dupes),
		)
		return nil
	}
}
