package connector

import "sync"

// Channel is a snapshot of one platform's routing state: where outbound calls
// go and which bot identity signs them.
type Channel struct {
	ServiceURL string
	Bot        Identity
}

type channelState struct {
	serviceURL    string
	bot           Identity
	conversations map[string]*ConversationRef
}

// Registry maps platform channel ids to their routing state and caches the
// most recent conversation per user. Safe for concurrent use; the lock is
// never held across network I/O.
type Registry struct {
	mu       sync.RWMutex
	channels map[string]*channelState
}

func NewRegistry() *Registry {
	return &Registry{channels: map[string]*channelState{}}
}

// GetChannel returns a snapshot of the channel's routing state.
func (r *Registry) GetChannel(channelID string) (Channel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ch, ok := r.channels[channelID]
	if !ok {
		return Channel{}, false
	}
	return Channel{ServiceURL: ch.serviceURL, Bot: ch.bot}, true
}

// UpsertChannel registers the channel if absent. Service URLs can legitimately
// change between deployments of the remote platform, so an existing entry with
// a different serviceURL is overwritten, last write wins. The bot identity is
// only touched when one is passed.
func (r *Registry) UpsertChannel(channelID, serviceURL string, bot *Identity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch, ok := r.channels[channelID]
	if !ok {
		ch = &channelState{conversations: map[string]*ConversationRef{}}
		r.channels[channelID] = ch
	}
	ch.serviceURL = serviceURL
	if bot != nil {
		ch.bot = *bot
	}
}

// CacheConversation stores the conversation for a channel/user pair,
// overwriting any prior entry. The channel must already be registered.
func (r *Registry) CacheConversation(channelID, userID string, ref *ConversationRef) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch, ok := r.channels[channelID]
	if !ok {
		return &ChannelUnknownError{ChannelID: channelID}
	}
	ch.conversations[userID] = ref
	return nil
}

// LookupConversation returns the cached conversation for a channel/user pair.
func (r *Registry) LookupConversation(channelID, userID string) (*ConversationRef, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ch, ok := r.channels[channelID]
	if !ok {
		return nil, false
	}
	ref, ok := ch.conversations[userID]
	return ref, ok
}

// Len returns the number of registered channels.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.channels)
}
