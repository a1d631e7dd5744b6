package connector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

func testMessage() *Message {
	act := validActivity()
	ref, _ := NewConversationRef(act)
	return &Message{
		ID:           "m1",
		Channel:      "msteams",
		Body:         "the answer",
		From:         ParseIdentity(act.From, act.ChannelID),
		To:           ParseIdentity(act.Recipient, act.ChannelID),
		Conversation: ref,
	}
}

func TestBuildReplySwapsParties(t *testing.T) {
	d := NewDispatcher(nil, nil, true)
	msg := testMessage()

	act, err := d.BuildReply(msg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if act.URL != msg.Conversation.ReplyURL() {
		t.Fatalf("URL = %s, want reply endpoint", act.URL)
	}
	if act.Payload.Type != ActivityMessage {
		t.Fatalf("type = %s", act.Payload.Type)
	}
	// The reply is framed from the bot: from is the inbound recipient, the
	// original sender becomes the recipient.
	if act.Payload.From.ID != "bot1" {
		t.Fatalf("from = %+v, want bot", act.Payload.From)
	}
	if act.Payload.Recipient == nil || act.Payload.Recipient.ID != "u1" {
		t.Fatalf("recipient = %+v, want user", act.Payload.Recipient)
	}
	if act.Payload.ReplyToID != "conv1" {
		t.Fatalf("replyToId = %s, want conversation id", act.Payload.ReplyToID)
	}
	if act.Payload.Text != "the answer" {
		t.Fatalf("text = %s", act.Payload.Text)
	}
}

func TestBuildReplyIdempotent(t *testing.T) {
	d := NewDispatcher(nil, nil, true)
	msg := testMessage()

	first, err := d.BuildReply(msg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := d.BuildReply(msg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("repeated builds differ: %+v vs %+v", first, second)
	}
}

func TestBuildSendKeepsParties(t *testing.T) {
	d := NewDispatcher(nil, nil, true)
	msg := testMessage()

	act, err := d.BuildSend(msg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if act.URL != msg.Conversation.SendURL() {
		t.Fatalf("URL = %s, want send endpoint", act.URL)
	}
	// Proactive sends keep the caller's framing: no swap.
	if act.Payload.From.ID != "u1" {
		t.Fatalf("from = %+v, want message From", act.Payload.From)
	}
	if act.Payload.Recipient == nil || act.Payload.Recipient.ID != "bot1" {
		t.Fatalf("recipient = %+v, want message To", act.Payload.Recipient)
	}
}

func TestBuildFeedbackShape(t *testing.T) {
	d := NewDispatcher(nil, nil, true)
	msg := testMessage()

	act, err := d.BuildFeedback(msg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if act.Payload.Type != ActivityTyping {
		t.Fatalf("type = %s, want typing", act.Payload.Type)
	}
	if act.Payload.Recipient != nil {
		t.Fatalf("typing payload must not carry a recipient, got %+v", act.Payload.Recipient)
	}
	if act.Payload.Text != "" {
		t.Fatalf("typing payload must not carry text, got %q", act.Payload.Text)
	}

	raw, err := json.Marshal(act.Payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var wire map[string]any
	if err := json.Unmarshal(raw, &wire); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := wire["recipient"]; ok {
		t.Fatal("recipient key must be omitted from the wire form")
	}
	if _, ok := wire["text"]; ok {
		t.Fatal("text key must be omitted from the wire form")
	}
}

func TestBuildersRequireConversation(t *testing.T) {
	d := NewDispatcher(nil, nil, true)
	msg := testMessage()
	msg.Conversation = nil

	if _, err := d.BuildReply(msg); !errors.Is(err, ErrNoConversation) {
		t.Fatalf("BuildReply err = %v", err)
	}
	if _, err := d.BuildSend(msg); !errors.Is(err, ErrNoConversation) {
		t.Fatalf("BuildSend err = %v", err)
	}
	if _, err := d.BuildFeedback(msg); !errors.Is(err, ErrNoConversation) {
		t.Fatalf("BuildFeedback err = %v", err)
	}
}

func TestDispatcherSendEmulatorOmitsAuth(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := NewDispatcher(srv.Client(), nil, true)
	err := d.Send(context.Background(), &OutboundActivity{
		URL:     srv.URL,
		Payload: ActivityPayload{Type: ActivityMessage},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "" {
		t.Fatalf("emulator mode must not attach Authorization, got %q", gotAuth)
	}
}

func TestDispatcherSendAttachesBearer(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"tok","expires_in":3600}`)
	}))
	defer tokenSrv.Close()

	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tokens := NewTokenSource(tokenSrv.Client(), tokenSrv.URL, "app", "secret")
	d := NewDispatcher(srv.Client(), tokens, false)
	err := d.Send(context.Background(), &OutboundActivity{
		URL:     srv.URL,
		Payload: ActivityPayload{Type: ActivityMessage},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "Bearer tok" {
		t.Fatalf("Authorization = %q, want Bearer tok", gotAuth)
	}
}

func TestDispatcherSendDeliveryError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	d := NewDispatcher(srv.Client(), nil, true)
	err := d.Send(context.Background(), &OutboundActivity{
		URL:     srv.URL,
		Payload: ActivityPayload{Type: ActivityMessage},
	})
	var delivery *DeliveryError
	if !errors.As(err, &delivery) {
		t.Fatalf("expected DeliveryError, got %v", err)
	}
	if delivery.Status != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", delivery.Status)
	}
}
