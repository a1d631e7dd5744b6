package connector

import "encoding/json"

// NotFound is the placeholder for subject fields absent from an inbound
// payload. Identity construction never fails; missing fields get this value.
const NotFound = "<not found>"

// Identity is a channel-scoped actor (user or bot) parsed from an activity
// subject. Immutable after construction.
type Identity struct {
	ID      string
	Name    string
	Channel string
}

// ParseIdentity builds an Identity from a wire account, scoped to the channel
// it was seen on. A nil account or empty fields fall back to NotFound.
func ParseIdentity(account *ChannelAccount, channelID string) Identity {
	id := Identity{ID: NotFound, Name: NotFound, Channel: channelID}
	if account == nil {
		return id
	}
	if account.ID != "" {
		id.ID = account.ID
	}
	if account.Name != "" {
		id.Name = account.Name
	}
	return id
}

// Canonical returns the deterministic serialized form used for equality
// comparisons across instances.
func (id Identity) Canonical() string {
	var channel *string
	if id.Channel != "" {
		channel = &id.Channel
	}
	b, _ := json.Marshal(struct {
		ID      string  `json:"id"`
		Name    string  `json:"name"`
		Channel *string `json:"channel"`
	}{id.ID, id.Name, channel})
	return string(b)
}

// Equal reports whether two identities have the same canonical form.
func (id Identity) Equal(other Identity) bool {
	return id.Canonical() == other.Canonical()
}

// Subject returns the wire form used in outbound activity payloads. Sentinel
// values are omitted so synthesized identities serialize only what was known.
func (id Identity) Subject() ChannelAccount {
	account := ChannelAccount{}
	if id.ID != NotFound {
		account.ID = id.ID
	}
	if id.Name != NotFound {
		account.Name = id.Name
	}
	return account
}
