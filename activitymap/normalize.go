// Package activitymap flattens auth activity events into audit records.
package activitymap

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/osnetwork/go-auth"
)

const (
	// MetadataKeyActorType carries auth.ActorRef.Type
	MetadataKeyActorType = "actor_type"
	// MetadataKeyRole carries the role of the identity the event is about
	MetadataKeyRole = "role"

	// Channel is the audit channel every record is written to
	Channel = "auth"
	// ObjectType is the kind of object auth events act on
	ObjectType = "user"
	// SystemActor stands in when neither an actor nor a subject is known
	SystemActor = "system"
)

// Record is one audit line: who did what to which identity.
type Record struct {
	ActorID    string         `json:"actor_id"`
	Verb       string         `json:"verb"`
	ObjectType string         `json:"object_type"`
	ObjectID   string         `json:"object_id,omitempty"`
	Channel    string         `json:"channel"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Normalize maps event to a Record. Ids of zero count as absent, and an
// event without an actor is attributed to its subject.
func Normalize(event auth.ActivityEvent) Record {
	actor := idString(event.Actor.ID)
	if actor == "" {
		actor = idString(event.UserID)
	}
	if actor == "" {
		actor = SystemActor
	}

	at := event.OccurredAt
	if at.IsZero() {
		at = time.Now().UTC()
	}

	return Record{
		ActorID:    actor,
		Verb:       string(event.EventType),
		ObjectType: ObjectType,
		ObjectID:   idString(event.UserID),
		Channel:    Channel,
		Metadata:   metadata(event),
		OccurredAt: at,
	}
}

// Sink returns an ActivitySink handing every record to emit. A nil emit
// drops events.
func Sink(emit func(ctx context.Context, record Record) error) auth.ActivitySink {
	return auth.ActivitySinkFunc(func(ctx context.Context, event auth.ActivityEvent) error {
		if emit == nil {
			return nil
		}
		return emit(ctx, Normalize(event))
	})
}

// metadata copies the event metadata so the caller's map is never mutated.
func metadata(event auth.ActivityEvent) map[string]any {
	actorType := strings.TrimSpace(event.Actor.Type)
	if len(event.Metadata) == 0 && actorType == "" && event.Role == "" {
		return nil
	}

	out := make(map[string]any, len(event.Metadata)+2)
	for k, v := range event.Metadata {
		out[k] = v
	}
	if _, set := out[MetadataKeyActorType]; !set && actorType != "" {
		out[MetadataKeyActorType] = actorType
	}
	if event.Role != "" {
		out[MetadataKeyRole] = event.Role.String()
	}
	return out
}

func idString(id int64) string {
	if id <= 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}
