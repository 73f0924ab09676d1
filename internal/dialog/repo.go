package dialog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/woodflow/woodflow-bot/internal/forms"
)

// Store хранит текущий шаг диалога по chat_id.
type Store interface {
	Get(ctx context.Context, chatID int64) (*Item, error)
	Set(ctx context.Context, item *Item) error
	Reset(ctx context.Context, chatID int64) error
}

// MemoryStore: хранилище по умолчанию. Item сериализуется на записи и
// чтении, поэтому обработчики никогда не делят одну карту payload.
type MemoryStore struct {
	mu    sync.Mutex
	items map[int64][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: map[int64][]byte{}}
}

type record struct {
	State   State      `json:"state"`
	Payload Payload    `json:"payload"`
	Form    forms.Form `json:"form"`
}

func (s *MemoryStore) Get(_ context.Context, chatID int64) (*Item, error) {
	s.mu.Lock()
	raw, ok := s.items[chatID]
	s.mu.Unlock()
	if !ok {
		return NewItem(chatID), nil
	}
	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode dialog %d: %w", chatID, err)
	}
	if rec.Payload == nil {
		rec.Payload = Payload{}
	}
	return &Item{ChatID: chatID, State: rec.State, Payload: rec.Payload, Form: rec.Form}, nil
}

func (s *MemoryStore) Set(_ context.Context, item *Item) error {
	raw, err := json.Marshal(record{State: item.State, Payload: item.Payload, Form: item.Form})
	if err != nil {
		return fmt.Errorf("encode dialog %d: %w", item.ChatID, err)
	}
	s.mu.Lock()
	s.items[item.ChatID] = raw
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Reset(_ context.Context, chatID int64) error {
	s.mu.Lock()
	delete(s.items, chatID)
	s.mu.Unlock()
	return nil
}

// Repo: то же в Postgres, чтобы диалоги переживали рестарт бота.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

func (r *Repo) Get(ctx context.Context, chatID int64) (*Item, error) {
	row := r.pool.QueryRow(ctx, `SELECT state, payload, form FROM dialog_states WHERE chat_id = $1`, chatID)
	var state string
	var rawPayload, rawForm []byte
	if err := row.Scan(&state, &rawPayload, &rawForm); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// строки нет, значит диалог ещё не начат
			return NewItem(chatID), nil
		}
		return nil, err
	}
	it := &Item{ChatID: chatID, State: State(state), Payload: Payload{}}
	if err := json.Unmarshal(rawPayload, &it.Payload); err != nil {
		return nil, fmt.Errorf("decode payload %d: %w", chatID, err)
	}
	if it.Payload == nil {
		it.Payload = Payload{}
	}
	if err := json.Unmarshal(rawForm, &it.Form); err != nil {
		return nil, fmt.Errorf("decode form %d: %w", chatID, err)
	}
	return it, nil
}

func (r *Repo) Set(ctx context.Context, item *Item) error {
	payload, err := json.Marshal(item.Payload)
	if err != nil {
		return err
	}
	form, err := json.Marshal(item.Form)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO dialog_states (chat_id, state, payload, form, updated_at)
		VALUES ($1,$2,$3,$4,now())
		ON CONFLICT (chat_id) DO UPDATE SET
		  state=$2, payload=$3, form=$4, updated_at=now()
	`, item.ChatID, string(item.State), payload, form)
	return err
}

func (r *Repo) Reset(ctx context.Context, chatID int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM dialog_states WHERE chat_id = $1`, chatID)
	return err
}
