package user

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// --- Mock implementations ---

type mockUserRepo struct {
	byEmail   map[string]*User
	createErr error
}

func newMockUserRepo(users ...*User) *mockUserRepo {
	byEmail := make(map[string]*User, len(users))
	for _, u := range users {
		byEmail[u.Email] = u
	}
	return &mockUserRepo{byEmail: byEmail}
}

func (m *mockUserRepo) Create(_ context.Context, u *User) error {
	if m.createErr != nil {
		return m.createErr
	}
	if _, ok := m.byEmail[u.Email]; ok {
		return ErrDuplicate
	}
	m.byEmail[u.Email] = u
	return nil
}

func (m *mockUserRepo) FindByEmail(_ context.Context, email string) (*User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

func (m *mockUserRepo) List(_ context.Context) ([]Profile, error) {
	profiles := make([]Profile, 0, len(m.byEmail))
	for _, u := range m.byEmail {
		profiles = append(profiles, u.Profile())
	}
	return profiles, nil
}

func (m *mockUserRepo) Update(_ context.Context, u *User) error {
	if _, ok := m.byEmail[u.Email]; !ok {
		return ErrNotFound
	}
	m.byEmail[u.Email] = u
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, email string) error {
	if _, ok := m.byEmail[email]; !ok {
		return ErrNotFound
	}
	delete(m.byEmail, email)
	return nil
}

type mockCodeRepo struct {
	codes map[string]string
}

func newMockCodeRepo() *mockCodeRepo {
	return &mockCodeRepo{codes: make(map[string]string)}
}

func (m *mockCodeRepo) Upsert(_ context.Context, email, code string) error {
	m.codes[email] = code
	return nil
}

func (m *mockCodeRepo) Find(_ context.Context, email string) (string, error) {
	code, ok := m.codes[email]
	if !ok {
		return "", ErrCodeNotFound
	}
	return code, nil
}

func (m *mockCodeRepo) Delete(_ context.Context, email string) error {
	if _, ok := m.codes[email]; !ok {
		return ErrCodeNotFound
	}
	delete(m.codes, email)
	return nil
}

type mockMailer struct {
	sent []string
	err  error
}

func (m *mockMailer) SendVerificationCode(_ context.Context, email, _ string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, email)
	return nil
}

// --- Helpers ---

func hashFor(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func newTestUserService(users *mockUserRepo, codes *mockCodeRepo, mailer *mockMailer) *Service {
	return NewService(users, codes, mailer, newTestIssuer(), zap.NewNop())
}

// --- Tests ---

func TestRegister_CreatesUserAndSendsCode(t *testing.T) {
	users := newMockUserRepo()
	codes := newMockCodeRepo()
	mailer := &mockMailer{}
	svc := newTestUserService(users, codes, mailer)

	u, err := svc.Register(context.Background(), "Reader", "reader@example.com", "555-0100", "secret1")
	require.NoError(t, err)

	assert.Equal(t, "reader@example.com", u.Email)
	assert.NotEqual(t, "secret1", u.Password, "password must be stored hashed")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("secret1")))

	// A verification code is pending and was mailed.
	code, err := codes.Find(context.Background(), "reader@example.com")
	require.NoError(t, err)
	assert.Len(t, code, 6)
	assert.Equal(t, []string{"reader@example.com"}, mailer.sent)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	users := newMockUserRepo(&User{Email: "reader@example.com"})
	svc := newTestUserService(users, newMockCodeRepo(), &mockMailer{})

	_, err := svc.Register(context.Background(), "Reader", "reader@example.com", "", "secret1")
	require.ErrorIs(t, err, ErrDuplicate)
}

func TestRegister_MailFailureDoesNotFailRegistration(t *testing.T) {
	svc := newTestUserService(newMockUserRepo(), newMockCodeRepo(), &mockMailer{err: errors.New("smtp down")})

	_, err := svc.Register(context.Background(), "Reader", "reader@example.com", "", "secret1")
	require.NoError(t, err)
}

func TestLogin_UnknownUser(t *testing.T) {
	svc := newTestUserService(newMockUserRepo(), newMockCodeRepo(), &mockMailer{})

	result, err := svc.Login(context.Background(), "nobody@example.com", "whatever")
	require.NoError(t, err)

	assert.False(t, result.Successful)
	assert.Equal(t, "User not found", result.Message)
	assert.Empty(t, result.Tokens.AccessToken)
}

func TestLogin_WrongPassword(t *testing.T) {
	users := newMockUserRepo(&User{
		Email:    "reader@example.com",
		Password: hashFor(t, "right"),
	})
	svc := newTestUserService(users, newMockCodeRepo(), &mockMailer{})

	result, err := svc.Login(context.Background(), "reader@example.com", "wrong")
	require.NoError(t, err)

	assert.False(t, result.Successful)
	assert.Equal(t, "Invalid password", result.Message)
	assert.Empty(t, result.Tokens.AccessToken)
}

func TestLogin_PendingVerificationBlocks(t *testing.T) {
	users := newMockUserRepo(&User{
		Email:    "reader@example.com",
		Password: hashFor(t, "secret1"),
	})
	codes := newMockCodeRepo()
	require.NoError(t, codes.Upsert(context.Background(), "reader@example.com", "123456"))
	svc := newTestUserService(users, codes, &mockMailer{})

	result, err := svc.Login(context.Background(), "reader@example.com", "secret1")
	require.NoError(t, err)

	assert.False(t, result.Successful)
	assert.True(t, result.NeedsVerification)
	assert.Equal(t, "reader@example.com", result.Email)
	assert.Empty(t, result.Tokens.AccessToken, "no tokens while unverified")
}

func TestLogin_Success(t *testing.T) {
	users := newMockUserRepo(&User{
		Email:    "reader@example.com",
		Name:     "Reader",
		Password: hashFor(t, "secret1"),
	})
	svc := newTestUserService(users, newMockCodeRepo(), &mockMailer{})

	result, err := svc.Login(context.Background(), "reader@example.com", "secret1")
	require.NoError(t, err)

	assert.True(t, result.Successful)
	assert.Equal(t, "Login successful", result.Message)
	assert.Equal(t, "Reader", result.Name)
	require.NotEmpty(t, result.Tokens.AccessToken)

	claims, err := newTestIssuer().ParseAccess(result.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "reader@example.com", claims.Email())
}

func TestVerifyEmail(t *testing.T) {
	codes := newMockCodeRepo()
	require.NoError(t, codes.Upsert(context.Background(), "reader@example.com", "123456"))
	svc := newTestUserService(newMockUserRepo(), codes, &mockMailer{})

	// Wrong code leaves the record pending.
	err := svc.VerifyEmail(context.Background(), "reader@example.com", "000000")
	require.ErrorIs(t, err, ErrCodeMismatch)
	_, err = codes.Find(context.Background(), "reader@example.com")
	require.NoError(t, err)

	// Right code clears it.
	require.NoError(t, svc.VerifyEmail(context.Background(), "reader@example.com", "123456"))
	_, err = codes.Find(context.Background(), "reader@example.com")
	assert.ErrorIs(t, err, ErrCodeNotFound)

	// No pending record at all.
	err = svc.VerifyEmail(context.Background(), "other@example.com", "123456")
	assert.ErrorIs(t, err, ErrCodeNotFound)
}

func TestUpdateProfile_KeepsPasswordWhenEmpty(t *testing.T) {
	originalHash := hashFor(t, "secret1")
	users := newMockUserRepo(&User{
		Email:    "reader@example.com",
		Name:     "Reader",
		Password: originalHash,
	})
	svc := newTestUserService(users, newMockCodeRepo(), &mockMailer{})

	u, err := svc.UpdateProfile(context.Background(), "reader@example.com", "New Name", "555-0101", "")
	require.NoError(t, err)

	assert.Equal(t, "New Name", u.Name)
	assert.Equal(t, originalHash, u.Password)
}

func TestUpdateProfile_RehashesNewPassword(t *testing.T) {
	users := newMockUserRepo(&User{
		Email:    "reader@example.com",
		Password: hashFor(t, "old"),
	})
	svc := newTestUserService(users, newMockCodeRepo(), &mockMailer{})

	u, err := svc.UpdateProfile(context.Background(), "reader@example.com", "Reader", "", "newpass")
	require.NoError(t, err)

	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("newpass")))
}

func TestGenerateCode_SixDigits(t *testing.T) {
	for range 50 {
		code, err := GenerateCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		assert.GreaterOrEqual(t, code[0], byte('1'))
	}
}
