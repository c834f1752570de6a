package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	cacheport "github.com/akashwav/ConnectGo/internal/infrastructure/cache/port"
	repository "github.com/akashwav/ConnectGo/internal/pkg/chat/persistence/repository/port"
)

// ListParticipantsInput wraps the conversation identifier.
type ListParticipantsInput struct {
	ConversationID string
}

// ListParticipantsUseCase returns user IDs for all participants in the
// conversation, read through the cache when one is configured. Membership
// changes rarely, so a short TTL keeps the join-chat hot path off Postgres.
type ListParticipantsUseCase struct {
	Repo  repository.ChatRepository
	Cache cacheport.Cache // optional
	TTL   time.Duration
}

func NewListParticipantsUseCase(repo repository.ChatRepository, cache cacheport.Cache, ttl time.Duration) *ListParticipantsUseCase {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ListParticipantsUseCase{Repo: repo, Cache: cache, TTL: ttl}
}

func membershipKey(conversationID string) string {
	return "chat:members:" + conversationID
}

func (uc *ListParticipantsUseCase) Execute(ctx context.Context, in ListParticipantsInput) ([]string, error) {
	if in.ConversationID == "" {
		return nil, fmt.Errorf("conversation_id is required")
	}

	if uc.Cache != nil {
		raw, err := uc.Cache.Get(ctx, membershipKey(in.ConversationID))
		if err == nil {
			var ids []string
			if jerr := json.Unmarshal([]byte(raw), &ids); jerr == nil {
				return ids, nil
			}
			// Corrupt entry: fall through and rewrite it.
		} else if !errors.Is(err, cacheport.ErrMiss) {
			// Cache trouble is not fatal; serve from the repository.
			_ = err
		}
	}

	ids, err := uc.Repo.ListParticipantIDs(ctx, in.ConversationID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if uc.Cache != nil {
		if b, err := json.Marshal(ids); err == nil {
			_ = uc.Cache.Set(ctx, membershipKey(in.ConversationID), string(b), uc.TTL)
		}
	}
	return ids, nil
}
