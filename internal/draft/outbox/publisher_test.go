package outbox

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// startEmbeddedNATS runs an in-process NATS server with JetStream on a
// random port so the publisher can be exercised without external
// infrastructure.
func startEmbeddedNATS(t *testing.T) *server.Server {
	t.Helper()
	opts := &server.Options{
		Port:      -1,
		JetStream: true,
		StoreDir:  t.TempDir(),
		NoLog:     true,
		NoSigs:    true,
	}
	ns, err := server.NewServer(opts)
	if err != nil {
		t.Fatalf("failed to create embedded NATS server: %v", err)
	}
	go ns.Start()
	if !ns.ReadyForConnections(10 * time.Second) {
		ns.Shutdown()
		t.Fatal("embedded NATS server failed to start within timeout")
	}
	t.Cleanup(ns.Shutdown)
	return ns
}

func testJetStreamConfig(url string) JetStreamConfig {
	cfg := DefaultJetStreamConfig()
	cfg.URL = url
	cfg.StreamName = "DRAFT_EVENTS_TEST"
	cfg.DuplicateWindow = time.Minute
	return cfg
}

func TestJetStreamPublisherCreatesStream(t *testing.T) {
	ns := startEmbeddedNATS(t)

	pub, err := NewJetStreamPublisher(testJetStreamConfig(ns.ClientURL()))
	if err != nil {
		t.Fatalf("NewJetStreamPublisher() failed: %v", err)
	}
	defer pub.Close()

	nc, err := nats.Connect(ns.ClientURL())
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer nc.Close()
	js, err := jetstream.New(nc)
	if err != nil {
		t.Fatalf("failed to create JetStream context: %v", err)
	}
	if _, err := js.Stream(context.Background(), "DRAFT_EVENTS_TEST"); err != nil {
		t.Fatalf("stream not created: %v", err)
	}
}

func TestJetStreamPublisherEnvelope(t *testing.T) {
	ns := startEmbeddedNATS(t)
	cfg := testJetStreamConfig(ns.ClientURL())

	pub, err := NewJetStreamPublisher(cfg)
	if err != nil {
		t.Fatalf("NewJetStreamPublisher() failed: %v", err)
	}
	defer pub.Close()

	draftID := uuid.New()
	event := NewEvent(draftID, "pick_accepted", []byte(`{"pick_number":1}`))
	if err := pub.Publish(context.Background(), event); err != nil {
		t.Fatalf("Publish() failed: %v", err)
	}

	nc, err := nats.Connect(ns.ClientURL())
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer nc.Close()
	js, err := jetstream.New(nc)
	if err != nil {
		t.Fatalf("failed to create JetStream context: %v", err)
	}
	stream, err := js.Stream(context.Background(), cfg.StreamName)
	if err != nil {
		t.Fatalf("failed to get stream: %v", err)
	}
	msg, err := stream.GetLastMsgForSubject(context.Background(), cfg.SubjectPrefix+".pick_accepted")
	if err != nil {
		t.Fatalf("failed to read published message: %v", err)
	}

	var env struct {
		ID      string          `json:"id"`
		DraftID string          `json:"draft_id"`
		Type    string          `json:"type"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(msg.Data, &env); err != nil {
		t.Fatalf("failed to unmarshal envelope: %v", err)
	}
	if env.ID != event.ID.String() {
		t.Fatalf("envelope id %s, want %s", env.ID, event.ID)
	}
	if env.DraftID != draftID.String() {
		t.Fatalf("envelope draft_id %s, want %s", env.DraftID, draftID)
	}
	if env.Type != "pick_accepted" {
		t.Fatalf("envelope type %s, want pick_accepted", env.Type)
	}
	if string(env.Data) != `{"pick_number":1}` {
		t.Fatalf("envelope data %s", env.Data)
	}
	if got := msg.Header.Get("Event-Type"); got != "pick_accepted" {
		t.Fatalf("Event-Type header %s", got)
	}
}

func TestJetStreamPublisherDeduplicatesByEventID(t *testing.T) {
	ns := startEmbeddedNATS(t)
	cfg := testJetStreamConfig(ns.ClientURL())

	pub, err := NewJetStreamPublisher(cfg)
	if err != nil {
		t.Fatalf("NewJetStreamPublisher() failed: %v", err)
	}
	defer pub.Close()

	event := NewEvent(uuid.New(), "pick_accepted", []byte(`{}`))
	// The worker may republish after a crash between publish and mark.
	for i := 0; i < 3; i++ {
		if err := pub.Publish(context.Background(), event); err != nil {
			t.Fatalf("Publish() attempt %d failed: %v", i+1, err)
		}
	}

	nc, err := nats.Connect(ns.ClientURL())
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer nc.Close()
	js, err := jetstream.New(nc)
	if err != nil {
		t.Fatalf("failed to create JetStream context: %v", err)
	}
	stream, err := js.Stream(context.Background(), cfg.StreamName)
	if err != nil {
		t.Fatalf("failed to get stream: %v", err)
	}
	info, err := stream.Info(context.Background())
	if err != nil {
		t.Fatalf("failed to get stream info: %v", err)
	}
	if info.State.Msgs != 1 {
		t.Fatalf("stream holds %d messages, want 1 after duplicate publishes", info.State.Msgs)
	}
}
