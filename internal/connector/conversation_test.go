package connector

import (
	"errors"
	"testing"
)

func validActivity() *Activity {
	return &Activity{
		Type:         ActivityMessage,
		ID:           "act1",
		ChannelID:    "msteams",
		ServiceURL:   "https://smba.trafficmanager.net/emea/",
		From:         &ChannelAccount{ID: "u1", Name: "Alice"},
		Recipient:    &ChannelAccount{ID: "bot1", Name: "Bridge"},
		Conversation: &ConversationAccount{ID: "conv1"},
		Text:         "hello",
	}
}

func TestNewConversationRefRequiredFields(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Activity)
		field  string
	}{
		{"missing conversation", func(a *Activity) { a.Conversation = nil }, "conversation.id"},
		{"empty conversation id", func(a *Activity) { a.Conversation.ID = "" }, "conversation.id"},
		{"missing activity id", func(a *Activity) { a.ID = "" }, "id"},
		{"missing service url", func(a *Activity) { a.ServiceURL = "" }, "serviceUrl"},
		{"missing from", func(a *Activity) { a.From = nil }, "from"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			act := validActivity()
			tc.mutate(act)
			_, err := NewConversationRef(act)
			var malformed *MalformedActivityError
			if !errors.As(err, &malformed) {
				t.Fatalf("expected MalformedActivityError, got %v", err)
			}
			if malformed.Field != tc.field {
				t.Fatalf("expected field %s, got %s", tc.field, malformed.Field)
			}
		})
	}
}

func TestConversationRefURLs(t *testing.T) {
	ref, err := NewConversationRef(validActivity())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantReply := "https://smba.trafficmanager.net/emea/v3/conversations/conv1/activities/act1"
	if got := ref.ReplyURL(); got != wantReply {
		t.Fatalf("ReplyURL = %s, want %s", got, wantReply)
	}
	wantSend := "https://smba.trafficmanager.net/emea/v3/conversations/conv1/activities"
	if got := ref.SendURL(); got != wantSend {
		t.Fatalf("SendURL = %s, want %s", got, wantSend)
	}

	// Derivation is pure: repeated calls agree.
	if ref.ReplyURL() != wantReply || ref.SendURL() != wantSend {
		t.Fatal("URL derivation is not stable")
	}
}

func TestConversationRefURLsEscapeIDs(t *testing.T) {
	act := validActivity()
	act.Conversation.ID = "a/b c"
	ref, err := NewConversationRef(act)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "https://smba.trafficmanager.net/emea/v3/conversations/a%2Fb%20c/activities"
	if got := ref.SendURL(); got != want {
		t.Fatalf("SendURL = %s, want %s", got, want)
	}
}
