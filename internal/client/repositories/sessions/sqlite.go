package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/catalogctl/internal/client/client"
	"github.com/dmitrijs2005/catalogctl/internal/client/models"
	"github.com/dmitrijs2005/catalogctl/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/catalogctl/internal/common"
	"github.com/dmitrijs2005/catalogctl/internal/cryptox"
	"github.com/dmitrijs2005/catalogctl/internal/dbx"
)

const (
	KeySalt    = "session_salt"
	KeySession = "session"
	KeyNonce   = "session_nonce"

	saltSize = 16
)

type SQLiteStore struct {
	db         *sql.DB
	passphrase []byte

	mu  sync.Mutex
	key []byte
}

func NewSQLiteStore(db *sql.DB, passphrase string) *SQLiteStore {
	return &SQLiteStore{db: db, passphrase: []byte(passphrase)}
}

// encryptionKey derives the sealing key, creating the salt on first use. A
// key derived from a salt created in the current transaction is not cached
// until that salt has been read back committed.
func (s *SQLiteStore) encryptionKey(ctx context.Context, repo metadata.Repository) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.key != nil {
		return s.key, nil
	}

	fresh := false
	salt, err := repo.Get(ctx, KeySalt)
	if errors.Is(err, common.ErrorNotFound) {
		salt = common.GenerateRandByteArray(saltSize)
		err = repo.Set(ctx, KeySalt, salt)
		fresh = true
	}
	if err != nil {
		return nil, err
	}

	key, err := cryptox.DeriveKey(s.passphrase, salt)
	if err != nil {
		return nil, err
	}
	if !fresh {
		s.key = key
	}
	return key, nil
}

// Load returns nil, nil when no session is stored. A session that cannot be
// opened with the configured passphrase is reported as
// client.ErrLocalDataNotAvailable.
func (s *SQLiteStore) Load(ctx context.Context) (*models.Session, error) {
	var sess *models.Session
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)

		pairs, err := repo.List(ctx, KeySession)
		if err != nil {
			return err
		}
		ct, ok := pairs[KeySession]
		nonce, okNonce := pairs[KeyNonce]
		if !ok || !okNonce {
			return nil
		}

		key, err := s.encryptionKey(ctx, repo)
		if err != nil {
			return err
		}

		var loaded models.Session
		if err := cryptox.OpenJSON(ct, nonce, key, &loaded); err != nil {
			return fmt.Errorf("%w: %v", client.ErrLocalDataNotAvailable, err)
		}
		sess = &loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *SQLiteStore) Save(ctx context.Context, sess *models.Session) error {
	if sess == nil {
		return s.Clear(ctx)
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)

		key, err := s.encryptionKey(ctx, repo)
		if err != nil {
			return err
		}

		ct, nonce, err := cryptox.SealJSON(sess, key)
		if err != nil {
			return err
		}
		if err := repo.Set(ctx, KeySession, ct); err != nil {
			return err
		}
		return repo.Set(ctx, KeyNonce, nonce)
	})
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	return metadata.NewSQLiteRepository(s.db).Delete(ctx, KeySession, KeyNonce)
}

// MemoryStore keeps the session in process memory.
type MemoryStore struct {
	mu   sync.Mutex
	sess *models.Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load(context.Context) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sess.Clone(), nil
}

func (m *MemoryStore) Save(_ context.Context, sess *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = sess.Clone()
	return nil
}

func (m *MemoryStore) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = nil
	return nil
}

var (
	_ client.SessionStore = (*SQLiteStore)(nil)
	_ client.SessionStore = (*MemoryStore)(nil)
)
