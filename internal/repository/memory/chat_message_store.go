package memory

import (
	"sort"
	"sync"

	"chat-archive/internal/entity"

	"github.com/patrickmn/go-cache"
)

// ChatMessageStore is the shared backing map for the in-memory repository.
// Entries never expire. Keys combine id and created_at, the same composite
// key the database enforces.
type ChatMessageStore struct {
	mu    sync.RWMutex
	cache *cache.Cache
}

func NewChatMessageStore() *ChatMessageStore {
	return &ChatMessageStore{
		cache: cache.New(cache.NoExpiration, 0),
	}
}

func storeKey(msg *entity.ChatMessage) string {
	return msg.Id.String() + "|" + msg.CreatedAt.UTC().Format("20060102T150405.000000")
}

func clone(msg *entity.ChatMessage) *entity.ChatMessage {
	c := *msg
	return &c
}

// insert returns false when the key is already taken.
func (s *ChatMessageStore) insert(msg *entity.ChatMessage) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Add(storeKey(msg), clone(msg), cache.NoExpiration) == nil
}

func (s *ChatMessageStore) remove(msg *entity.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Delete(storeKey(msg))
}

func (s *ChatMessageStore) restore(msg *entity.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Set(storeKey(msg), clone(msg), cache.NoExpiration)
}

// removeWhere deletes every matching message and returns copies of them.
func (s *ChatMessageStore) removeWhere(match func(*entity.ChatMessage) bool) []*entity.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed []*entity.ChatMessage
	for key, item := range s.cache.Items() {
		msg := item.Object.(*entity.ChatMessage)
		if match(msg) {
			s.cache.Delete(key)
			removed = append(removed, clone(msg))
		}
	}
	return removed
}

// selectWhere returns copies of the matching messages, newest first.
func (s *ChatMessageStore) selectWhere(match func(*entity.ChatMessage) bool) []*entity.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*entity.ChatMessage
	for _, item := range s.cache.Items() {
		msg := item.Object.(*entity.ChatMessage)
		if match(msg) {
			out = append(out, clone(msg))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NewerThan(out[j]) })
	return out
}

func (s *ChatMessageStore) Len() int {
	return s.cache.ItemCount()
}
