package service

import (
	"context"
	"encoding/json"
	"fmt"

	"ai-coverletter-be/internal/dto"
	"ai-coverletter-be/internal/entity"
	"ai-coverletter-be/internal/pkg/logger"
	"ai-coverletter-be/internal/repository/contract"
	"ai-coverletter-be/internal/repository/specification"
	"ai-coverletter-be/pkg/events"
	"ai-coverletter-be/pkg/retrieval"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type ICorpusService interface {
	Create(ctx context.Context, req *dto.CreateCorpusDocumentRequest) (*dto.CorpusDocumentResponse, error)
	Show(ctx context.Context, id uuid.UUID) (*dto.CorpusDocumentResponse, error)
	List(ctx context.Context, language string) ([]*dto.CorpusDocumentResponse, error)
	Count(ctx context.Context) (*dto.CorpusCountResponse, error)
	Search(ctx context.Context, query string) ([]*dto.CorpusSearchResultResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type corpusService struct {
	corpusRepository contract.CorpusRepository
	engine           *retrieval.Engine
	pubSub           *gochannel.GoChannel
	embedTopic       string
	publisher        IPublisherService
	logger           logger.ILogger
}

func NewCorpusService(
	corpusRepository contract.CorpusRepository,
	engine *retrieval.Engine,
	pubSub *gochannel.GoChannel,
	embedTopic string,
	publisher IPublisherService,
	log logger.ILogger,
) ICorpusService {
	return &corpusService{
		corpusRepository: corpusRepository,
		engine:           engine,
		pubSub:           pubSub,
		embedTopic:       embedTopic,
		publisher:        publisher,
		logger:           log,
	}
}

// Create stores the document and queues its embedding. The vector is computed
// asynchronously; until then the document exists but is not retrievable.
func (s *corpusService) Create(ctx context.Context, req *dto.CreateCorpusDocumentRequest) (*dto.CorpusDocumentResponse, error) {
	doc := &entity.CorpusDocument{
		Id:          uuid.New(),
		CompanyName: req.CompanyName,
		JobText:     req.JobText,
		LetterText:  req.LetterText,
		Language:    req.Language,
	}

	if err := s.corpusRepository.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to create corpus document: %w", err)
	}

	if err := s.queueEmbedding(doc.Id); err != nil {
		// Document exists without a vector; surface rather than hide it.
		return nil, fmt.Errorf("failed to queue embedding for %s: %w", doc.Id, err)
	}

	s.publisher.Publish(ctx, events.NewCorpusDocumentCreated(doc.Id.String()))

	return s.toResponse(doc), nil
}

func (s *corpusService) queueEmbedding(documentId uuid.UUID) error {
	payload, err := json.Marshal(dto.EmbedCorpusDocumentMessage{DocumentId: documentId})
	if err != nil {
		return err
	}
	return s.pubSub.Publish(s.embedTopic, message.NewMessage(watermill.NewUUID(), payload))
}

func (s *corpusService) Show(ctx context.Context, id uuid.UUID) (*dto.CorpusDocumentResponse, error) {
	doc, err := s.corpusRepository.FindById(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}
	return s.toResponse(doc), nil
}

func (s *corpusService) List(ctx context.Context, language string) ([]*dto.CorpusDocumentResponse, error) {
	var specs []specification.Specification
	if language != "" {
		specs = append(specs, specification.ByLanguage{Language: language})
	}

	docs, err := s.corpusRepository.List(ctx, specs...)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.CorpusDocumentResponse, len(docs))
	for i, doc := range docs {
		responses[i] = s.toResponse(doc)
	}
	return responses, nil
}

func (s *corpusService) Count(ctx context.Context) (*dto.CorpusCountResponse, error) {
	count, err := s.corpusRepository.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.CorpusCountResponse{Count: count}, nil
}

// Search runs a raw nearest-neighbour lookup against the corpus. This is the
// curation view of the index, without the rerank step the letter pipeline adds.
func (s *corpusService) Search(ctx context.Context, query string) ([]*dto.CorpusSearchResultResponse, error) {
	refs, err := s.engine.FindSimilar(ctx, query)
	if err != nil {
		return nil, err
	}

	docs, err := s.engine.Hydrate(ctx, refs)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.CorpusSearchResultResponse, len(docs))
	for i, doc := range docs {
		responses[i] = &dto.CorpusSearchResultResponse{
			CompanyName: doc.CompanyName,
			LetterText:  doc.LetterText,
			Score:       doc.Score,
		}
	}
	return responses, nil
}

func (s *corpusService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.corpusRepository.Delete(ctx, id)
}

func (s *corpusService) toResponse(doc *entity.CorpusDocument) *dto.CorpusDocumentResponse {
	return &dto.CorpusDocumentResponse{
		Id:          doc.Id,
		CompanyName: doc.CompanyName,
		Language:    doc.Language,
		Embedded:    len(doc.Embedding) > 0,
		CreatedAt:   doc.CreatedAt,
	}
}
