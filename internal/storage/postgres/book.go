package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/bookshelf-backend/internal/domain/book"
)

var _ book.Repository = (*BookRepository)(nil)

// BookRepository is the local book catalog in PostgreSQL. It serves as the
// fallback when the upstream volumes API is unreachable and as the target for
// bulk catalog ingestion.
type BookRepository struct {
	pool *pgxpool.Pool
}

// NewBookRepository returns a BookRepository using the pool.
func NewBookRepository(pool *pgxpool.Pool) *BookRepository {
	return &BookRepository{pool: pool}
}

const bookColumns = `id, title, authors, description, thumbnail, price, stock`

func scanBook(row pgx.CollectableRow) (book.Book, error) {
	var b book.Book
	err := row.Scan(&b.ID, &b.Title, &b.Authors, &b.Description, &b.Thumbnail, &b.Price, &b.Stock)
	return b, err
}

// List returns up to limit books ordered by title.
func (r *BookRepository) List(ctx context.Context, limit int) ([]book.Book, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+bookColumns+` FROM books ORDER BY title LIMIT $1`, limit,
	)
	if err != nil {
		return nil, errors.Wrap(err, "listing books")
	}
	defer rows.Close()

	books, err := pgx.CollectRows(rows, scanBook)
	if err != nil {
		return nil, errors.Wrap(err, "collecting book rows")
	}
	return books, nil
}

// Search returns books whose title matches the query, case-insensitive.
func (r *BookRepository) Search(ctx context.Context, query string, limit int) ([]book.Book, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+bookColumns+` FROM books
		 WHERE title ILIKE '%' || $1 || '%'
		 ORDER BY title LIMIT $2`,
		query, limit,
	)
	if err != nil {
		return nil, errors.Wrapf(err, "searching books for %q", query)
	}
	defer rows.Close()

	books, err := pgx.CollectRows(rows, scanBook)
	if err != nil {
		return nil, errors.Wrap(err, "collecting book rows")
	}
	return books, nil
}

// GetByID returns a single book, or book.ErrNotFound.
func (r *BookRepository) GetByID(ctx context.Context, id string) (*book.Book, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+bookColumns+` FROM books WHERE id = $1`, id,
	)
	if err != nil {
		return nil, errors.Wrapf(err, "getting book %q", id)
	}
	defer rows.Close()

	b, err := pgx.CollectOneRow(rows, scanBook)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, book.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "scanning book %q", id)
	}
	return &b, nil
}

// Put upserts a batch of books in one round trip.
func (r *BookRepository) Put(ctx context.Context, books []book.Book) error {
	if len(books) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, b := range books {
		batch.Queue(
			`INSERT INTO books (id, title, authors, description, thumbnail, price, stock)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 ON CONFLICT (id) DO UPDATE SET
			     title = EXCLUDED.title,
			     authors = EXCLUDED.authors,
			     description = EXCLUDED.description,
			     thumbnail = EXCLUDED.thumbnail,
			     price = EXCLUDED.price,
			     stock = EXCLUDED.stock`,
			b.ID, b.Title, b.Authors, b.Description, b.Thumbnail, b.Price, b.Stock,
		)
	}
	if err := r.pool.SendBatch(ctx, batch).Close(); err != nil {
		return errors.Wrap(err, "upserting books")
	}
	return nil
}
