// Package events provides the in-process notification registry for ladder
// state changes. Services publish; the WebSocket layer and tests subscribe.
// Delivery is fan-out with no ordering guarantees across subscribers; a
// subscriber that falls behind loses events rather than blocking publishers.
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sprintduel/ladder-server/internal/domain"
)

type EventType string

const (
	TypeTierChanged            EventType = "tier_changed"
	TypeProgressionChanged     EventType = "progression_changed"
	TypePrestigeAvailable      EventType = "prestige_available"
	TypePrestigeCompleted      EventType = "prestige_completed"
	TypeSeasonChanged          EventType = "season_changed"
	TypeSeasonEndingSoon       EventType = "season_ending_soon"
	TypeSeasonRewardCalculated EventType = "season_reward_calculated"
)

// Event is the envelope delivered to subscribers. PlayerID is uuid.Nil for
// global events (season lifecycle).
type Event struct {
	Type     EventType   `json:"type"`
	PlayerID uuid.UUID   `json:"playerId,omitempty"`
	Payload  interface{} `json:"payload"`
}

type TierChangedPayload struct {
	OldTier domain.Tier `json:"oldTier"`
	NewTier domain.Tier `json:"newTier"`
}

type ProgressionChangedPayload struct {
	Trophies      int         `json:"trophies"`
	PrestigeLevel int         `json:"prestigeLevel"`
	Tier          domain.Tier `json:"tier"`
}

type PrestigeAvailablePayload struct {
	NextLevel int `json:"nextLevel"`
}

type PrestigeCompletedPayload struct {
	NewLevel int `json:"newLevel"`
}

type SeasonChangedPayload struct {
	Season *domain.SeasonInfo `json:"season"`
}

type SeasonEndingSoonPayload struct {
	Season    *domain.SeasonInfo `json:"season"`
	Remaining time.Duration      `json:"remainingNs"`
}

type SeasonRewardCalculatedPayload struct {
	Gems        int    `json:"gems"`
	SeasonID    string `json:"seasonId"`
	EndedSeason string `json:"endedSeason"`
}

// Bus is a subscription registry. Subscribers receive events on buffered
// channels; publishing never blocks.
type Bus struct {
	mu     sync.RWMutex
	subs   map[int]chan Event
	nextID int
	closed bool
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan Event)}
}

// Subscribe registers a subscriber and returns its channel plus a cancel
// function. Cancel is safe to call more than once.
func (b *Bus) Subscribe(buffer int) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if buffer < 1 {
		buffer = 16
	}
	id := b.nextID
	b.nextID++
	ch := make(chan Event, buffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	b.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if c, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(c)
			}
		})
	}
	return ch, cancel
}

// Publish fans the event out to every subscriber. Full buffers are skipped.
func (b *Bus) Publish(evt Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}
	for _, ch := range b.subs {
		select {
		case ch <- evt:
		default:
			// Buffer full, skip
		}
	}
}

// Close drops all subscribers and closes their channels.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
