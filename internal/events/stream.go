package events

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

const (
	// StreamName holds every platform event under the events.> subject space.
	StreamName    = "EVENTS"
	subjectPrefix = "events"
)

// EnsureStream creates the shared event stream if it does not exist yet.
// Both producers and consumers call this on startup so ordering between
// services does not matter.
func EnsureStream(ctx context.Context, js jetstream.JetStream) error {
	_, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      StreamName,
		Subjects:  []string{subjectPrefix + ".>"},
		Retention: jetstream.LimitsPolicy,
		MaxMsgs:   100000,
		MaxAge:    7 * 24 * time.Hour,
		Storage:   jetstream.FileStorage,
	})
	if err != nil {
		return fmt.Errorf("failed to create/update %s stream: %w", StreamName, err)
	}
	return nil
}

// subjectFor maps (topic, partitionKey) onto a subject. The key is the final
// token, so all events for one entity land on one subject and stay ordered,
// while different entities fan out across the stream.
func subjectFor(topic, partitionKey string) string {
	return subjectPrefix + "." + topic + "." + sanitizeToken(partitionKey)
}

// topicFilter is the subject filter a consumer uses to receive every
// partition of a topic.
func topicFilter(topic string) string {
	return subjectPrefix + "." + topic + ".>"
}

// sanitizeToken makes an arbitrary entity id safe as a single subject token.
// Entity ids are normally UUIDs; this guards against keys that would otherwise
// split or wildcard the subject.
func sanitizeToken(key string) string {
	if key == "" {
		return "_"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ', '\t', '\n':
			return '_'
		}
		return r
	}, key)
}
