package queue

import (
	"testing"
)

func TestNewWatermillMessage_EnvelopeAndMetadata(t *testing.T) {
	payload := FileIngestedPayload{
		File: FileRef{
			ContentDigest: "9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08",
			StorageKey:    "9f/86/9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08.csv",
			Size:          42,
			FileName:      "export.csv",
		},
		FileID:   7,
		OriginID: 10021,
		SenderID: 4471,
	}

	msg, err := NewWatermillMessage(TopicFileIngested, payload,
		WithProducer("sentinel"), WithTraceID("trace-1"))
	if err != nil {
		t.Fatalf("build message: %v", err)
	}

	if msg.UUID == "" {
		t.Error("message must carry a uuid")
	}

	for key, want := range map[string]string{
		"topic":    TopicFileIngested,
		"producer": "sentinel",
		"trace_id": "trace-1",
		"version":  PayloadVersionV1,
	} {
		if got := msg.Metadata.Get(key); got != want {
			t.Errorf("metadata %s = %q, want %q", key, got, want)
		}
	}

	env, err := ParseFileIngested(msg)
	if err != nil {
		t.Fatalf("parse envelope: %v", err)
	}

	if env.Header.Topic != TopicFileIngested {
		t.Errorf("header topic = %q", env.Header.Topic)
	}

	if env.Header.OccurredAt.IsZero() {
		t.Error("occurred_at must be set")
	}

	if env.Payload.File.FileName != "export.csv" || env.Payload.FileID != 7 {
		t.Errorf("payload mismatch: %+v", env.Payload)
	}
}
