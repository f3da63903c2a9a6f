package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/xenking/bookshelf-backend/internal/domain/book"
	"github.com/xenking/bookshelf-backend/internal/domain/cart"
	"github.com/xenking/bookshelf-backend/internal/domain/history"
	"github.com/xenking/bookshelf-backend/internal/domain/shipping"
	"github.com/xenking/bookshelf-backend/internal/domain/user"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// --- Stub repositories ---

type stubUserRepo struct {
	byEmail map[string]*user.User
}

func newStubUserRepo(users ...*user.User) *stubUserRepo {
	byEmail := make(map[string]*user.User, len(users))
	for _, u := range users {
		byEmail[u.Email] = u
	}
	return &stubUserRepo{byEmail: byEmail}
}

func (s *stubUserRepo) Create(_ context.Context, u *user.User) error {
	if _, ok := s.byEmail[u.Email]; ok {
		return user.ErrDuplicate
	}
	s.byEmail[u.Email] = u
	return nil
}

func (s *stubUserRepo) FindByEmail(_ context.Context, email string) (*user.User, error) {
	u, ok := s.byEmail[email]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func (s *stubUserRepo) List(_ context.Context) ([]user.Profile, error) {
	profiles := make([]user.Profile, 0, len(s.byEmail))
	for _, u := range s.byEmail {
		profiles = append(profiles, u.Profile())
	}
	return profiles, nil
}

func (s *stubUserRepo) Update(_ context.Context, u *user.User) error {
	if _, ok := s.byEmail[u.Email]; !ok {
		return user.ErrNotFound
	}
	s.byEmail[u.Email] = u
	return nil
}

func (s *stubUserRepo) Delete(_ context.Context, email string) error {
	if _, ok := s.byEmail[email]; !ok {
		return user.ErrNotFound
	}
	delete(s.byEmail, email)
	return nil
}

type stubCodeRepo struct {
	codes map[string]string
}

func newStubCodeRepo() *stubCodeRepo {
	return &stubCodeRepo{codes: make(map[string]string)}
}

func (s *stubCodeRepo) Upsert(_ context.Context, email, code string) error {
	s.codes[email] = code
	return nil
}

func (s *stubCodeRepo) Find(_ context.Context, email string) (string, error) {
	code, ok := s.codes[email]
	if !ok {
		return "", user.ErrCodeNotFound
	}
	return code, nil
}

func (s *stubCodeRepo) Delete(_ context.Context, email string) error {
	if _, ok := s.codes[email]; !ok {
		return user.ErrCodeNotFound
	}
	delete(s.codes, email)
	return nil
}

type stubMailer struct{}

func (stubMailer) SendVerificationCode(context.Context, string, string) error { return nil }

type stubShippingRepo struct {
	profiles map[string]shipping.Info
	upserted []shipping.Info
}

func newStubShippingRepo() *stubShippingRepo {
	return &stubShippingRepo{profiles: make(map[string]shipping.Info)}
}

func (s *stubShippingRepo) Get(_ context.Context, email string) (*shipping.Info, error) {
	info, ok := s.profiles[email]
	if !ok {
		return nil, shipping.ErrNotFound
	}
	return &info, nil
}

func (s *stubShippingRepo) Create(_ context.Context, info shipping.Info) error {
	if _, ok := s.profiles[info.Email]; ok {
		return shipping.ErrDuplicate
	}
	s.profiles[info.Email] = info
	return nil
}

func (s *stubShippingRepo) Update(_ context.Context, info shipping.Info) error {
	if _, ok := s.profiles[info.Email]; !ok {
		return shipping.ErrNotFound
	}
	s.profiles[info.Email] = info
	return nil
}

func (s *stubShippingRepo) Upsert(_ context.Context, info shipping.Info) error {
	s.profiles[info.Email] = info
	s.upserted = append(s.upserted, info)
	return nil
}

func (s *stubShippingRepo) Delete(_ context.Context, email string) error {
	if _, ok := s.profiles[email]; !ok {
		return shipping.ErrNotFound
	}
	delete(s.profiles, email)
	return nil
}

type stubHistoryRepo struct {
	entries   []history.Entry
	nextID    int64
	appendErr error
}

func (s *stubHistoryRepo) Append(_ context.Context, e *history.Entry) error {
	if s.appendErr != nil {
		return s.appendErr
	}
	s.nextID++
	e.ID = s.nextID
	s.entries = append(s.entries, *e)
	return nil
}

func (s *stubHistoryRepo) ListByEmail(_ context.Context, email string) ([]history.Entry, error) {
	var out []history.Entry
	for _, e := range s.entries {
		if e.Email == email {
			out = append(out, e)
		}
	}
	return out, nil
}

type stubUpstream struct {
	books []book.Book
	err   error
}

func (s *stubUpstream) Search(_ context.Context, _ string, _ int) ([]book.Book, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.books, nil
}

func (s *stubUpstream) Get(_ context.Context, id string) (*book.Book, error) {
	if s.err != nil {
		return nil, s.err
	}
	for i := range s.books {
		if s.books[i].ID == id {
			return &s.books[i], nil
		}
	}
	return nil, book.ErrNotFound
}

type noopCache struct{}

func (noopCache) GetBooks(context.Context, string) ([]book.Book, bool) { return nil, false }
func (noopCache) SetBooks(context.Context, string, []book.Book)       {}
func (noopCache) GetBook(context.Context, string) (*book.Book, bool)  { return nil, false }
func (noopCache) SetBook(context.Context, *book.Book)                 {}

type stubBookRepo struct {
	books []book.Book
}

func (s *stubBookRepo) List(_ context.Context, limit int) ([]book.Book, error) {
	if limit > 0 && limit < len(s.books) {
		return s.books[:limit], nil
	}
	return s.books, nil
}

func (s *stubBookRepo) Search(_ context.Context, _ string, limit int) ([]book.Book, error) {
	return s.List(context.Background(), limit)
}

func (s *stubBookRepo) GetByID(_ context.Context, id string) (*book.Book, error) {
	for i := range s.books {
		if s.books[i].ID == id {
			return &s.books[i], nil
		}
	}
	return nil, book.ErrNotFound
}

func (s *stubBookRepo) Put(_ context.Context, books []book.Book) error {
	s.books = append(s.books, books...)
	return nil
}

// --- Test environment ---

type testEnv struct {
	router   *gin.Engine
	issuer   *user.TokenIssuer
	users    *stubUserRepo
	codes    *stubCodeRepo
	shipping *stubShippingRepo
	history  *stubHistoryRepo
	upstream *stubUpstream
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		issuer:   user.NewTokenIssuer([]byte("test-access-key"), []byte("test-refresh-key")),
		users:    newStubUserRepo(),
		codes:    newStubCodeRepo(),
		shipping: newStubShippingRepo(),
		history:  &stubHistoryRepo{},
		upstream: &stubUpstream{},
	}

	lg := zap.NewNop()
	usersSvc := user.NewService(env.users, env.codes, stubMailer{}, env.issuer, lg)
	catalog := book.NewService(env.upstream, noopCache{}, &stubBookRepo{}, lg)

	h := NewHandler(usersSvc, env.users, env.codes, env.issuer, catalog, env.shipping, env.history, lg)
	env.router = h.Router()
	return env
}

// seedUser adds a verified account and returns a bearer token for it.
func (e *testEnv) seedUser(t *testing.T, email, name, password string) string {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, e.users.Create(context.Background(), &user.User{
		Email:    email,
		Name:     name,
		Password: string(hash),
	}))

	pair, err := e.issuer.Issue(email, name)
	require.NoError(t, err)
	return pair.AccessToken
}

type reqOption func(*http.Request)

func withCookie(c *http.Cookie) reqOption {
	return func(r *http.Request) { r.AddCookie(c) }
}

func withBearer(token string) reqOption {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func (e *testEnv) do(t *testing.T, method, path string, body any, opts ...reqOption) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, opt := range opts {
		opt(req)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

// cookieNamed returns the Set-Cookie entry with the given name, or nil.
func cookieNamed(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// cartCookieFor builds the request cookie a client holding these items would
// send. Quantity on each item is honored by adding repeatedly.
func cartCookieFor(t *testing.T, items ...cart.Item) *http.Cookie {
	t.Helper()

	crt := cart.New()
	for _, it := range items {
		qty := max(it.Quantity, 1)
		for range qty {
			crt.Add(it)
		}
	}
	return &http.Cookie{
		Name:  cartCookie,
		Value: url.QueryEscape(string(cart.Encode(crt))),
	}
}

// replayCookie rewraps a Set-Cookie response value as a request cookie.
func replayCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()

	c := cookieNamed(rec, name)
	require.NotNil(t, c, "expected Set-Cookie for %q", name)
	return &http.Cookie{Name: c.Name, Value: c.Value}
}

var errStubFailure = errors.New("stub failure")
