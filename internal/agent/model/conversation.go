package model

import (
	"strings"
	"time"

	"github.com/google/uuid"

	errx "github.com/nekochat-companion/server/internal/core/error"
)

// Category is a bucket of conversational intent.
type Category string

const (
	CategoryGreeting Category = "greeting"
	CategoryMorning  Category = "morning"
	CategoryNight    Category = "night"
	CategoryQuestion Category = "question"
	CategoryEmotion  Category = "emotion"
	CategoryName     Category = "name"
	CategoryHappy    Category = "happy"
	CategoryFood     Category = "food"
	CategorySleep    Category = "sleep"
	CategoryGame     Category = "game"
	CategoryLove     Category = "love"
	CategoryWeather  Category = "weather"
	CategoryWork     Category = "work"
	CategoryPetCat   Category = "pet_cat"
	CategoryPet      Category = "pet"
	CategoryThanks   Category = "thanks"
	CategoryGeneric  Category = "generic"
)

// CategoryRule pairs a category with its trigger substrings and reply pool.
type CategoryRule struct {
	Category Category
	Triggers []string
	Pool     []string
}

// Turn is a single submitted message. It lives only until a reply is produced.
type Turn struct {
	ID   string
	Text string
	At   time.Time
}

// NewTurn stamps a trimmed message with an id and the current time.
func NewTurn(text string) Turn {
	return Turn{
		ID:   uuid.NewString(),
		Text: strings.TrimSpace(text),
		At:   time.Now(),
	}
}

// ReplySource says which path produced a reply.
type ReplySource string

const (
	SourceRule    ReplySource = "rule"
	SourceBackend ReplySource = "backend"
	SourceSystem  ReplySource = "system"
)

// EventKind discriminates Event payloads.
type EventKind string

const (
	EventReply     EventKind = "reply"
	EventReadiness EventKind = "readiness"
)

// Event is what the engine hands to the presentation layer.
type Event struct {
	Kind EventKind `json:"kind"`
	At   time.Time `json:"at"`

	// reply
	TurnID string      `json:"turn_id,omitempty"`
	Text   string      `json:"text,omitempty"`
	Source ReplySource `json:"source,omitempty"`

	// readiness
	Success bool   `json:"success,omitempty"`
	Model   string `json:"model,omitempty"`
}

// OverlapPolicy decides what happens to a backend submission while another
// generate call is still pending.
type OverlapPolicy string

const (
	OverlapQueue  OverlapPolicy = "queue"
	OverlapReject OverlapPolicy = "reject"
)

func ParseOverlapPolicy(v string) (OverlapPolicy, error) {
	switch p := OverlapPolicy(strings.ToLower(strings.TrimSpace(v))); p {
	case OverlapQueue, OverlapReject:
		return p, nil
	case "":
		return OverlapQueue, nil
	default:
		return "", errx.Config("unknown overlap policy %q", v)
	}
}

// RuleReply is the output of the rule-based path.
type RuleReply struct {
	Category Category
	Text     string
}
