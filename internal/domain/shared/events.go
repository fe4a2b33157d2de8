// Package shared contains common domain types, errors, and events that are
// used across all domain packages.
package shared

import (
	"time"
)

// EventType names a kind of domain event.
type EventType string

// Domain event types. Events are produced by ingestion and onboarding and
// returned to callers as part of command results; there is no out-of-process
// event bus in this service.
const (
	// Family events
	EventParentOnboarded EventType = "family.parent_onboarded"
	EventChildCreated    EventType = "family.child_created"
	EventChildDeleted    EventType = "family.child_deleted"

	// Progress events
	EventAttemptRecorded EventType = "progress.attempt_recorded"
	EventWordMastered    EventType = "progress.word_mastered"
	EventXPGained        EventType = "progress.xp_gained"
	EventLevelUp         EventType = "progress.level_up"
	EventStreakExtended  EventType = "progress.streak_extended"
	EventStreakReset     EventType = "progress.streak_reset"

	// Achievement events
	EventAchievementUnlocked EventType = "achievement.unlocked"
)

// Event is what every domain event exposes to consumers.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent carries the fields shared by all events.
type BaseEvent struct {
	Type          EventType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggregateId   string    `json:"aggregate_id"`
	Version       int       `json:"version"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent stamps a new event with the current UTC time.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now().UTC(),
		AggregateId: aggregateID,
		Version:     1,
	}
}

// WithCorrelationID tags the event with a request correlation ID.
func (e BaseEvent) WithCorrelationID(id string) BaseEvent {
	e.CorrelationID = id
	return e
}

// ═══════════════════════════════════════════════════════════════════════════
// Progress Events
// ═══════════════════════════════════════════════════════════════════════════

// AttemptRecordedEvent is emitted when a new attempt is persisted.
type AttemptRecordedEvent struct {
	BaseEvent
	AttemptID string  `json:"attempt_id"`
	WordID    int     `json:"word_id"`
	Accuracy  float64 `json:"accuracy"`
	Status    string  `json:"status"`
}

// Payload implements Event interface.
func (e AttemptRecordedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"attempt_id": e.AttemptID,
		"word_id":    e.WordID,
		"accuracy":   e.Accuracy,
		"status":     e.Status,
	}
}

// NewAttemptRecordedEvent creates an AttemptRecordedEvent.
func NewAttemptRecordedEvent(childID, attemptID string, wordID int, accuracy float64, status string) AttemptRecordedEvent {
	return AttemptRecordedEvent{
		BaseEvent: NewBaseEvent(EventAttemptRecorded, childID),
		AttemptID: attemptID,
		WordID:    wordID,
		Accuracy:  accuracy,
		Status:    status,
	}
}

// WordMasteredEvent is emitted when a word first reaches mastered status.
type WordMasteredEvent struct {
	BaseEvent
	WordID int `json:"word_id"`
	Streak int `json:"streak"`
}

// Payload implements Event interface.
func (e WordMasteredEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"word_id": e.WordID,
		"streak":  e.Streak,
	}
}

// NewWordMasteredEvent creates a WordMasteredEvent.
func NewWordMasteredEvent(childID string, wordID, streak int) WordMasteredEvent {
	return WordMasteredEvent{
		BaseEvent: NewBaseEvent(EventWordMastered, childID),
		WordID:    wordID,
		Streak:    streak,
	}
}

// XPGainedEvent is emitted when a child earns XP.
type XPGainedEvent struct {
	BaseEvent
	Amount   int    `json:"amount"`
	NewTotal int    `json:"new_total"`
	Source   string `json:"source"` // attempt, achievement
}

// Payload implements Event interface.
func (e XPGainedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"amount":    e.Amount,
		"new_total": e.NewTotal,
		"source":    e.Source,
	}
}

// NewXPGainedEvent creates an XPGainedEvent.
func NewXPGainedEvent(childID string, amount, newTotal int, source string) XPGainedEvent {
	return XPGainedEvent{
		BaseEvent: NewBaseEvent(EventXPGained, childID),
		Amount:    amount,
		NewTotal:  newTotal,
		Source:    source,
	}
}

// LevelUpEvent is emitted when a child's level increases.
type LevelUpEvent struct {
	BaseEvent
	OldLevel int `json:"old_level"`
	NewLevel int `json:"new_level"`
	TotalXP  int `json:"total_xp"`
}

// Payload implements Event interface.
func (e LevelUpEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"old_level": e.OldLevel,
		"new_level": e.NewLevel,
		"total_xp":  e.TotalXP,
	}
}

// NewLevelUpEvent creates a LevelUpEvent.
func NewLevelUpEvent(childID string, oldLevel, newLevel, totalXP int) LevelUpEvent {
	return LevelUpEvent{
		BaseEvent: NewBaseEvent(EventLevelUp, childID),
		OldLevel:  oldLevel,
		NewLevel:  newLevel,
		TotalXP:   totalXP,
	}
}

// AchievementUnlockedEvent is emitted when an achievement is granted.
type AchievementUnlockedEvent struct {
	BaseEvent
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	XPReward    int    `json:"xp_reward"`
}

// Payload implements Event interface.
func (e AchievementUnlockedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"name":         e.Name,
		"display_name": e.DisplayName,
		"xp_reward":    e.XPReward,
	}
}

// NewAchievementUnlockedEvent creates an AchievementUnlockedEvent.
func NewAchievementUnlockedEvent(childID, name, displayName string, xpReward int) AchievementUnlockedEvent {
	return AchievementUnlockedEvent{
		BaseEvent:   NewBaseEvent(EventAchievementUnlocked, childID),
		Name:        name,
		DisplayName: displayName,
		XPReward:    xpReward,
	}
}
