package mapper

import (
	"encoding/json"
	"fmt"

	"ai-coverletter-be/internal/entity"
	"ai-coverletter-be/internal/model"
)

type SessionDocumentMapper struct{}

func NewSessionDocumentMapper() *SessionDocumentMapper {
	return &SessionDocumentMapper{}
}

func (m *SessionDocumentMapper) ToEntity(doc *model.SessionDocument) (*entity.Session, error) {
	if doc == nil {
		return nil, nil
	}

	sess := &entity.Session{
		Id:                doc.Id,
		JobText:           doc.JobText,
		CvText:            doc.CvText,
		StyleInstructions: doc.StyleInstructions,
		Metadata:          make(map[string]entity.JobMetadata),
		Vendors:           make(map[string]entity.VendorPhaseState),
		CreatedAt:         doc.CreatedAt,
		UpdatedAt:         doc.UpdatedAt,
	}

	if len(doc.SearchResult) > 0 {
		if err := json.Unmarshal(doc.SearchResult, &sess.SearchResult); err != nil {
			return nil, fmt.Errorf("unmarshal search_result: %w", err)
		}
	}
	if len(doc.Metadata) > 0 {
		if err := json.Unmarshal(doc.Metadata, &sess.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}
	}
	if len(doc.Vendors) > 0 {
		if err := json.Unmarshal(doc.Vendors, &sess.Vendors); err != nil {
			return nil, fmt.Errorf("unmarshal vendors: %w", err)
		}
	}

	return sess, nil
}

func (m *SessionDocumentMapper) ToModel(sess *entity.Session) (*model.SessionDocument, error) {
	if sess == nil {
		return nil, nil
	}

	searchResult, err := json.Marshal(sess.SearchResult)
	if err != nil {
		return nil, fmt.Errorf("marshal search_result: %w", err)
	}
	metadata, err := json.Marshal(sess.Metadata)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}
	vendors, err := json.Marshal(sess.Vendors)
	if err != nil {
		return nil, fmt.Errorf("marshal vendors: %w", err)
	}

	return &model.SessionDocument{
		Id:                sess.Id,
		JobText:           sess.JobText,
		CvText:            sess.CvText,
		StyleInstructions: sess.StyleInstructions,
		SearchResult:      searchResult,
		Metadata:          metadata,
		Vendors:           vendors,
		CreatedAt:         sess.CreatedAt,
		UpdatedAt:         sess.UpdatedAt,
	}, nil
}
