// Command seed-db provisions a demo account and a small book catalog for
// local development.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/xenking/bookshelf-backend/internal/domain/book"
	"github.com/xenking/bookshelf-backend/internal/domain/user"
	"github.com/xenking/bookshelf-backend/internal/storage/postgres"
)

var sampleBooks = []struct {
	id, title, author, description string
}{
	{"1503280780", "Moby Dick", "Herman Melville", "The saga of Captain Ahab and his obsessive hunt."},
	{"1505255600", "Pride and Prejudice", "Jane Austen", "Elizabeth Bennet navigates manners and marriage."},
	{"1503219704", "Alice in Wonderland", "Lewis Carroll", "Alice falls down a rabbit hole into a fantasy world."},
	{"1514621071", "Great Expectations", "Charles Dickens", "Pip's rise from the marshes to London society."},
	{"1505297729", "Dracula", "Bram Stoker", "The classic vampire novel told in letters and diaries."},
	{"1503261964", "Jane Eyre", "Charlotte Bronte", "An orphan governess and the secret of Thornfield Hall."},
}

func main() {
	var (
		databaseURL  string
		demoEmail    string
		demoPassword string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&demoEmail, "demo-email", "demo@bookshelf.local", "email of the demo account")
	flag.StringVar(&demoPassword, "demo-password", "demo123", "password of the demo account")
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

	if err := run(ctx, databaseURL, demoEmail, demoPassword); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, demoEmail, demoPassword string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedDemoUser(ctx, postgres.NewUserRepository(pool), demoEmail, demoPassword); err != nil {
		return errors.Wrap(err, "seed demo user")
	}

	if err := seedBooks(ctx, postgres.NewBookRepository(pool)); err != nil {
		return errors.Wrap(err, "seed books")
	}

	return nil
}

// seedDemoUser creates the demo account with no pending verification so it
// can log in immediately. An existing account is left untouched.
func seedDemoUser(ctx context.Context, repo *postgres.UserRepository, email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hash password")
	}

	err = repo.Create(ctx, &user.User{
		Email:       email,
		Name:        "Demo Reader",
		PhoneNumber: "555-0100",
		Password:    string(hash),
	})
	if errors.Is(err, user.ErrDuplicate) {
		slog.Info("demo user already exists", slog.String("email", email))
		return nil
	}
	if err != nil {
		return err
	}

	slog.Info("created demo user", slog.String("email", email))
	return nil
}

func seedBooks(ctx context.Context, repo *postgres.BookRepository) error {
	books := make([]book.Book, 0, len(sampleBooks))
	for _, s := range sampleBooks {
		books = append(books, book.Book{
			ID:          s.id,
			Title:       s.title,
			Authors:     []string{s.author},
			Description: s.description,
			Thumbnail:   "https://covers.openlibrary.org/b/isbn/" + s.id + "-M.jpg",
			Price:       book.PriceFromID(s.id),
			Stock:       12,
		})
	}

	slog.Info("upserting books", slog.Int("count", len(books)))
	return repo.Put(ctx, books)
}
