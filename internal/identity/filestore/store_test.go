package filestore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/bissquit/sports-inventory/internal/domain"
	"github.com/bissquit/sports-inventory/internal/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data", "users.json"))
	require.NoError(t, err)
	return s
}

func TestOpen_CreatesEmptyFile(t *testing.T) {
	s := openTestStore(t)

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))

	creds, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, creds)
}

func TestOpen_KeepsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"a@x.com":{"password":"h","role":"user"}}`), 0o600))

	s, err := Open(path)
	require.NoError(t, err)

	cred, err := s.Get(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "h", cred.PasswordHash)
	assert.Equal(t, domain.RoleUser, cred.Role)
}

func TestStore_CreateAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	err := s.Create(ctx, &domain.Credential{Email: "coach@gym.com", PasswordHash: "$2a$hash", Role: domain.RoleAdmin})
	require.NoError(t, err)

	cred, err := s.Get(ctx, "coach@gym.com")
	require.NoError(t, err)
	assert.Equal(t, "coach@gym.com", cred.Email)
	assert.Equal(t, "$2a$hash", cred.PasswordHash)
	assert.Equal(t, domain.RoleAdmin, cred.Role)

	_, err = s.Get(ctx, "nobody@gym.com")
	assert.ErrorIs(t, err, identity.ErrUserNotFound)
}

func TestStore_OnDiskLayout(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Create(context.Background(), &domain.Credential{Email: "a@x.com", PasswordHash: "hash", Role: domain.RoleUser}))

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	var raw map[string]map[string]string
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, map[string]map[string]string{
		"a@x.com": {"password": "hash", "role": "user"},
	}, raw)
}

func TestStore_CreateDuplicate(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, &domain.Credential{Email: "a@x.com", PasswordHash: "first", Role: domain.RoleUser}))
	err := s.Create(ctx, &domain.Credential{Email: "a@x.com", PasswordHash: "second", Role: domain.RoleAdmin})
	assert.ErrorIs(t, err, identity.ErrEmailExists)

	cred, err := s.Get(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "first", cred.PasswordHash, "existing record is not overwritten")
}

func TestStore_ConcurrentCreateSameEmail(t *testing.T) {
	s := openTestStore(t)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		exists    int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.Create(context.Background(), &domain.Credential{Email: "race@x.com", PasswordHash: "h", Role: domain.RoleUser})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case assert.ErrorIs(t, err, identity.ErrEmailExists):
				exists++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, 19, exists)
}

func TestStore_ConcurrentCreateDistinctEmails(t *testing.T) {
	s := openTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			email := string(rune('a'+i)) + "@x.com"
			assert.NoError(t, s.Create(context.Background(), &domain.Credential{Email: email, PasswordHash: "h", Role: domain.RoleUser}))
		}(i)
	}
	wg.Wait()

	creds, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, creds, 20, "no registration is lost")
}

func TestStore_SaveReplacesContents(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, &domain.Credential{Email: "old@x.com", PasswordHash: "h", Role: domain.RoleUser}))

	err := s.Save(ctx, map[string]domain.Credential{
		"new@x.com": {Email: "new@x.com", PasswordHash: "h2", Role: domain.RoleAdmin},
	})
	require.NoError(t, err)

	creds, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, creds, 1)
	assert.Equal(t, domain.RoleAdmin, creds["new@x.com"].Role)

	entries, err := os.ReadDir(filepath.Dir(s.Path()))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files are cleaned up")
}

func TestStore_MalformedFile(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, os.WriteFile(s.Path(), []byte("{not json"), 0o600))

	_, err := s.Load(context.Background())
	assert.ErrorIs(t, err, identity.ErrStorage)

	_, err = s.Get(context.Background(), "a@x.com")
	assert.ErrorIs(t, err, identity.ErrStorage)

	err = s.Create(context.Background(), &domain.Credential{Email: "a@x.com", PasswordHash: "h", Role: domain.RoleUser})
	assert.ErrorIs(t, err, identity.ErrStorage)
}

func TestStore_MissingFile(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, os.Remove(s.Path()))

	_, err := s.Load(context.Background())
	assert.ErrorIs(t, err, identity.ErrStorage)
}

func TestStore_FoldsHandEditedKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	require.NoError(t, os.WriteFile(path,
		[]byte(`{" Coach@Gym.com ":{"password":"h1","role":"admin"},"Keeper@Gym.com":{"password":"h2","role":"user"},"keeper@gym.com":{"password":"h3","role":"admin"}}`),
		0o600))

	s, err := Open(path)
	require.NoError(t, err)
	ctx := context.Background()

	cred, err := s.Get(ctx, "coach@gym.com")
	require.NoError(t, err)
	assert.Equal(t, "h1", cred.PasswordHash)
	assert.Equal(t, domain.RoleAdmin, cred.Role)

	cred, err = s.Get(ctx, "keeper@gym.com")
	require.NoError(t, err)
	assert.Equal(t, "h3", cred.PasswordHash, "folded key wins over its variants")

	err = s.Create(ctx, &domain.Credential{Email: "coach@gym.com", PasswordHash: "other", Role: domain.RoleUser})
	assert.ErrorIs(t, err, identity.ErrEmailExists)

	require.NoError(t, s.Create(ctx, &domain.Credential{Email: "new@gym.com", PasswordHash: "h4", Role: domain.RoleUser}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var onDisk map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &onDisk))
	assert.ElementsMatch(t, []string{"coach@gym.com", "keeper@gym.com", "new@gym.com"}, keys(onDisk))
}

func keys(m map[string]json.RawMessage) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
