package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"ai-coverletter-be/internal/dto"
	"ai-coverletter-be/internal/repository/unitofwork"
	"ai-coverletter-be/pkg/embedding"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService embeds corpus documents off the request path. Document
// creation publishes onto the queue and returns immediately; this worker
// computes the vector and upserts it into the index.
type consumerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.Provider
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.Provider,
) IConsumerService {
	return &consumerService{
		pubSub:            pubSub,
		topicName:         topicName,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.EmbedCorpusDocumentMessage
	err := json.Unmarshal(msg.Payload, &payload)
	if err != nil {
		log.Printf("[ERROR] Failed to unmarshal message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Embedding corpus document %s", payload.DocumentId)

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	repo := uow.CorpusRepository()

	doc, err := repo.FindById(ctx, payload.DocumentId)
	if err != nil {
		log.Printf("[ERROR] Failed to get corpus document %s: %v", payload.DocumentId, err)
		msg.Nack() // Nack for retriable errors
		return
	}
	if doc == nil {
		log.Printf("[ERROR] Corpus document not found: %s", payload.DocumentId)
		msg.Ack() // Document deleted? Ack.
		return
	}

	// Queries embed the job posting, so the index holds job-text vectors.
	content := fmt.Sprintf("Company: %s\n\n%s", doc.CompanyName, doc.JobText)

	vector, err := cs.embeddingProvider.Generate(ctx, content, embedding.TaskDocument)
	if err != nil {
		log.Printf("[ERROR] Failed to generate embedding for %s: %v", payload.DocumentId, err)
		msg.Nack()
		return
	}

	if err := repo.Upsert(ctx, doc.Id, vector); err != nil {
		log.Printf("[ERROR] Failed to upsert embedding for %s: %v", payload.DocumentId, err)
		msg.Nack()
		return
	}

	log.Printf("[INFO] Corpus document %s embedded (%d dims)", payload.DocumentId, len(vector))
	msg.Ack()
}
