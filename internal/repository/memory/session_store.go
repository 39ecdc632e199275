package memory

import (
	"context"
	"sync"
	"time"

	"ai-coverletter-be/internal/entity"
	"ai-coverletter-be/internal/repository/contract"

	"github.com/patrickmn/go-cache"
)

// SessionStore keeps sessions in process memory with a TTL. Partial updates
// are read-merge-write under a per-session mutex; the stored value is always
// a deep copy so callers can never mutate shared state through a Load result.
type SessionStore struct {
	cache *cache.Cache

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewSessionStore(ttl time.Duration) contract.SessionStore {
	if ttl <= 0 {
		ttl = 1 * time.Hour
	}
	return &SessionStore{
		cache: cache.New(ttl, 10*time.Minute),
		locks: make(map[string]*sync.Mutex),
	}
}

func (s *SessionStore) lockFor(sessionId string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.locks[sessionId]; ok {
		return l
	}
	l := &sync.Mutex{}
	s.locks[sessionId] = l
	return l
}

func (s *SessionStore) Create(ctx context.Context, session *entity.Session) error {
	l := s.lockFor(session.Id)
	l.Lock()
	defer l.Unlock()
	s.cache.Set(session.Id, session.Clone(), cache.DefaultExpiration)
	return nil
}

func (s *SessionStore) Load(ctx context.Context, sessionId string) (*entity.Session, error) {
	x, found := s.cache.Get(sessionId)
	if !found {
		return nil, contract.ErrSessionNotFound
	}
	return x.(*entity.Session).Clone(), nil
}

// merge applies fn to a fresh copy of the session and swaps it in. The lock
// covers only the in-memory merge, never any call the phase code makes.
func (s *SessionStore) merge(sessionId string, fn func(sess *entity.Session)) error {
	l := s.lockFor(sessionId)
	l.Lock()
	defer l.Unlock()

	x, found := s.cache.Get(sessionId)
	if !found {
		return contract.ErrSessionNotFound
	}

	sess := x.(*entity.Session).Clone()
	fn(sess)
	sess.UpdatedAt = time.Now()
	s.cache.Set(sessionId, sess, cache.DefaultExpiration)
	return nil
}

func (s *SessionStore) SaveCommon(ctx context.Context, sessionId string, fields contract.CommonFields) error {
	return s.merge(sessionId, func(sess *entity.Session) {
		if fields.JobText != nil {
			sess.JobText = *fields.JobText
		}
		if fields.CvText != nil {
			sess.CvText = *fields.CvText
		}
		if fields.StyleInstructions != nil {
			sess.StyleInstructions = *fields.StyleInstructions
		}
		if fields.SearchResult != nil {
			sess.SearchResult = fields.SearchResult
		}
	})
}

func (s *SessionStore) SaveMetadata(ctx context.Context, sessionId, key string, meta entity.JobMetadata) error {
	return s.merge(sessionId, func(sess *entity.Session) {
		if sess.Metadata == nil {
			sess.Metadata = make(map[string]entity.JobMetadata)
		}
		sess.Metadata[key] = meta
	})
}

func (s *SessionStore) SaveVendorSlice(ctx context.Context, sessionId, vendor string, state entity.VendorPhaseState) error {
	return s.merge(sessionId, func(sess *entity.Session) {
		if sess.Vendors == nil {
			sess.Vendors = make(map[string]entity.VendorPhaseState)
		}
		sess.Vendors[vendor] = state
	})
}

func (s *SessionStore) Clear(ctx context.Context, sessionId string) error {
	l := s.lockFor(sessionId)
	l.Lock()
	s.cache.Delete(sessionId)
	l.Unlock()

	s.mu.Lock()
	delete(s.locks, sessionId)
	s.mu.Unlock()
	return nil
}
