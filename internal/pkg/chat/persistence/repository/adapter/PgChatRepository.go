package adapter

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	chat "github.com/akashwav/ConnectGo/internal/pkg/chat/application/domain"
	repository "github.com/akashwav/ConnectGo/internal/pkg/chat/persistence/repository/port"
)

type PgChatRepository struct {
	pool *pgxpool.Pool
}

func NewPgChatRepository(pool *pgxpool.Pool) *PgChatRepository {
	return &PgChatRepository{pool: pool}
}

// Ensure interface compliance at compile time
var _ repository.ChatRepository = (*PgChatRepository)(nil)

func (r *PgChatRepository) CreateConversation(ctx context.Context, c chat.Conversation, memberIDs []string) (string, error) {
	if r == nil || r.pool == nil {
		return "", errors.New("PgChatRepository: nil pool")
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var id string
	err = tx.QueryRow(ctx,
		"INSERT INTO chat.conversation (name, is_group, created_at) VALUES ($1, $2, $3) RETURNING id::text",
		c.Name, c.IsGroup, c.CreatedAt,
	).Scan(&id)
	if err != nil {
		return "", err
	}

	for _, uid := range memberIDs {
		if uid == "" {
			continue
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO chat.participant (conversation_id, user_id, unread)
			VALUES ($1::uuid, $2::uuid, 0)
			ON CONFLICT (conversation_id, user_id) DO NOTHING
		`, id, uid)
		if err != nil {
			return "", err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return id, nil
}

func (r *PgChatRepository) FindDirectConversation(ctx context.Context, userA, userB string) (*chat.Conversation, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}
	var (
		c      chat.Conversation
		latest *string
	)
	err := r.pool.QueryRow(ctx, `
		SELECT c.id::text, c.name, c.is_group, c.created_at, c.latest_message::text
		FROM chat.conversation c
		WHERE c.is_group = FALSE
		  AND EXISTS (SELECT 1 FROM chat.participant p WHERE p.conversation_id = c.id AND p.user_id = $1::uuid)
		  AND EXISTS (SELECT 1 FROM chat.participant p WHERE p.conversation_id = c.id AND p.user_id = $2::uuid)
		LIMIT 1
	`, userA, userB).Scan(&c.ID, &c.Name, &c.IsGroup, &c.CreatedAt, &latest)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, chat.ErrChatNotFound
	}
	if err != nil {
		return nil, err
	}
	c.LatestMessageID = latest
	return &c, nil
}

func (r *PgChatRepository) SaveMessage(ctx context.Context, m chat.Message) (string, error) {
	if r == nil || r.pool == nil {
		return "", errors.New("PgChatRepository: nil pool")
	}
	var id string
	err := r.pool.QueryRow(ctx, `
		INSERT INTO chat.message (conversation_id, sender_id, content, created_at)
		VALUES ($1::uuid, $2::uuid, $3, $4)
		RETURNING id::text
	`, m.ConversationID, m.SenderID, m.Content, m.CreatedAt).Scan(&id)
	return id, err
}

func (r *PgChatRepository) GetMessagesByConversation(ctx context.Context, conversationID string, limit int) ([]chat.Message, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}
	if limit <= 0 {
		limit = 200
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, conversation_id::text, sender_id::text, content, created_at
		FROM chat.message
		WHERE conversation_id = $1::uuid
		ORDER BY created_at ASC
		LIMIT $2
	`, conversationID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []chat.Message
	for rows.Next() {
		var msg chat.Message
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.SenderID, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}

func (r *PgChatRepository) ListConversationsForUser(ctx context.Context, userID string) ([]chat.Overview, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT c.id::text, c.name, c.is_group, c.created_at, c.latest_message::text,
		       p.unread,
		       m.id::text, m.sender_id::text, m.content, m.created_at,
		       (SELECT array_agg(p2.user_id::text ORDER BY p2.user_id)
		        FROM chat.participant p2 WHERE p2.conversation_id = c.id)
		FROM chat.conversation c
		JOIN chat.participant p ON p.conversation_id = c.id AND p.user_id = $1::uuid
		LEFT JOIN chat.message m ON m.id = c.latest_message
		ORDER BY COALESCE(m.created_at, c.created_at) DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []chat.Overview
	for rows.Next() {
		var (
			ov        chat.Overview
			latestID  *string
			msgID     *string
			msgSender *string
			msgBody   *string
			msgAt     *time.Time
			members   []string
		)
		if err := rows.Scan(
			&ov.ID, &ov.Name, &ov.IsGroup, &ov.CreatedAt, &latestID,
			&ov.Unread,
			&msgID, &msgSender, &msgBody, &msgAt,
			&members,
		); err != nil {
			return nil, err
		}
		ov.LatestMessageID = latestID
		ov.MemberIDs = members
		if msgID != nil {
			ov.Latest = &chat.Message{
				ID:             *msgID,
				ConversationID: ov.ID,
				SenderID:       deref(msgSender),
				Content:        deref(msgBody),
			}
			if msgAt != nil {
				ov.Latest.CreatedAt = *msgAt
			}
		}
		out = append(out, ov)
	}
	return out, rows.Err()
}

func (r *PgChatRepository) ListParticipantIDs(ctx context.Context, conversationID string) ([]string, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}
	rows, err := r.pool.Query(ctx,
		"SELECT user_id::text FROM chat.participant WHERE conversation_id = $1::uuid",
		conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *PgChatRepository) IsParticipant(ctx context.Context, conversationID, userID string) (bool, error) {
	if r == nil || r.pool == nil {
		return false, errors.New("PgChatRepository: nil pool")
	}
	var ok bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM chat.participant
			WHERE conversation_id = $1::uuid AND user_id = $2::uuid
		)
	`, conversationID, userID).Scan(&ok)
	return ok, err
}

func (r *PgChatRepository) SetLatestMessage(ctx context.Context, conversationID, messageID string) error {
	if r == nil || r.pool == nil {
		return errors.New("PgChatRepository: nil pool")
	}
	_, err := r.pool.Exec(ctx,
		"UPDATE chat.conversation SET latest_message = $2::uuid WHERE id = $1::uuid",
		conversationID, messageID)
	return err
}

func (r *PgChatRepository) BumpUnread(ctx context.Context, conversationID, exceptUserID string) error {
	if r == nil || r.pool == nil {
		return errors.New("PgChatRepository: nil pool")
	}
	_, err := r.pool.Exec(ctx, `
		UPDATE chat.participant SET unread = unread + 1
		WHERE conversation_id = $1::uuid AND user_id <> $2::uuid
	`, conversationID, exceptUserID)
	return err
}

func (r *PgChatRepository) ClearUnread(ctx context.Context, conversationID, userID string) error {
	if r == nil || r.pool == nil {
		return errors.New("PgChatRepository: nil pool")
	}
	// Zero rows means the user is not a participant; clearing is a no-op.
	_, err := r.pool.Exec(ctx, `
		UPDATE chat.participant SET unread = 0
		WHERE conversation_id = $1::uuid AND user_id = $2::uuid
	`, conversationID, userID)
	return err
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
