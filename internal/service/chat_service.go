package service

import (
	"context"
	"fmt"

	"waconsole/internal/models"

	"github.com/sirupsen/logrus"
)

// ChatStore is the read surface backing the console views.
type ChatStore interface {
	GetChatSummaries(ctx context.Context) ([]models.ChatSummary, error)
	GetConversation(ctx context.Context, contactID string) ([]models.Message, error)
	MarkInboundSeen(ctx context.Context, contactID string) error
}

// ChatService derives the conversation-list and conversation-history views.
type ChatService struct {
	store  ChatStore
	logger *logrus.Logger
}

func NewChatService(store ChatStore, logger *logrus.Logger) *ChatService {
	return &ChatService{
		store:  store,
		logger: logger,
	}
}

// ListChats returns per-contact summaries, most recently active first. An
// empty store yields an empty slice.
func (s *ChatService) ListChats(ctx context.Context) ([]models.ChatSummary, error) {
	summaries, err := s.store.GetChatSummaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}
	return summaries, nil
}

// GetConversation marks the contact's inbound messages seen, then returns the
// full history oldest-first. The seen-marking is idempotent; reading an
// already-seen conversation mutates nothing.
func (s *ChatService) GetConversation(ctx context.Context, contactID string) ([]models.Message, error) {
	if err := s.store.MarkInboundSeen(ctx, contactID); err != nil {
		return nil, fmt.Errorf("failed to mark conversation seen: %w", err)
	}

	messages, err := s.store.GetConversation(ctx, contactID)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"contact":  contactID,
		"messages": len(messages),
	}).Debug("Conversation read")

	return messages, nil
}
