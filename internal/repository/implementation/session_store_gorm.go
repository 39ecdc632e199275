package implementation

import (
	"context"
	"errors"
	"time"

	"ai-coverletter-be/internal/entity"
	"ai-coverletter-be/internal/mapper"
	"ai-coverletter-be/internal/model"
	"ai-coverletter-be/internal/repository/contract"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SessionStoreGorm persists sessions in Postgres. Partial updates run as
// read-merge-write inside a transaction holding a FOR UPDATE row lock, so
// concurrent writers for different vendors or metadata keys serialize on the
// row and never clobber each other's top-level keys. The lock covers only
// the merge; callers never hold it across a vendor call.
type SessionStoreGorm struct {
	db     *gorm.DB
	mapper *mapper.SessionDocumentMapper
	ttl    time.Duration
}

func NewSessionStoreGorm(db *gorm.DB, ttl time.Duration) contract.SessionStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionStoreGorm{
		db:     db,
		mapper: mapper.NewSessionDocumentMapper(),
		ttl:    ttl,
	}
}

func (s *SessionStoreGorm) Create(ctx context.Context, session *entity.Session) error {
	m, err := s.mapper.ToModel(session)
	if err != nil {
		return err
	}
	m.ExpiresAt = time.Now().Add(s.ttl)
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(m).Error
}

func (s *SessionStoreGorm) Load(ctx context.Context, sessionId string) (*entity.Session, error) {
	var m model.SessionDocument
	err := s.db.WithContext(ctx).
		Where("id = ? AND expires_at > ?", sessionId, time.Now()).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, contract.ErrSessionNotFound
		}
		return nil, err
	}
	return s.mapper.ToEntity(&m)
}

// merge loads the row under FOR UPDATE, applies fn to the decoded session and
// writes the result back, all inside one transaction.
func (s *SessionStoreGorm) merge(ctx context.Context, sessionId string, fn func(sess *entity.Session)) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m model.SessionDocument
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND expires_at > ?", sessionId, time.Now()).
			First(&m).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return contract.ErrSessionNotFound
			}
			return err
		}

		sess, err := s.mapper.ToEntity(&m)
		if err != nil {
			return err
		}
		fn(sess)
		sess.UpdatedAt = time.Now()

		updated, err := s.mapper.ToModel(sess)
		if err != nil {
			return err
		}
		updated.ExpiresAt = m.ExpiresAt
		return tx.Save(updated).Error
	})
}

func (s *SessionStoreGorm) SaveCommon(ctx context.Context, sessionId string, fields contract.CommonFields) error {
	return s.merge(ctx, sessionId, func(sess *entity.Session) {
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

func (s *SessionStoreGorm) SaveMetadata(ctx context.Context, sessionId, key string, meta entity.JobMetadata) error {
	return s.merge(ctx, sessionId, func(sess *entity.Session) {
		if sess.Metadata == nil {
			sess.Metadata = make(map[string]entity.JobMetadata)
		}
		sess.Metadata[key] = meta
	})
}

func (s *SessionStoreGorm) SaveVendorSlice(ctx context.Context, sessionId, vendor string, state entity.VendorPhaseState) error {
	return s.merge(ctx, sessionId, func(sess *entity.Session) {
		if sess.Vendors == nil {
			sess.Vendors = make(map[string]entity.VendorPhaseState)
		}
		sess.Vendors[vendor] = state
	})
}

func (s *SessionStoreGorm) Clear(ctx context.Context, sessionId string) error {
	return s.db.WithContext(ctx).Delete(&model.SessionDocument{}, "id = ?", sessionId).Error
}
