package service

import (
	"sync"
	"time"

	"chat-agent-be/internal/websocket"
)

// MonitorStats is a running aggregate over processed turns since startup.
type MonitorStats struct {
	TurnsProcessed int64            `json:"turns_processed"`
	DegradedTurns  int64            `json:"degraded_turns"`
	AvgDurationMs  int64            `json:"avg_duration_ms"`
	ByRoute        map[string]int64 `json:"by_route"`
}

// MonitorService forwards turn outcomes to the operations dashboard feed
// and keeps running counters. It implements the controller's Observer
// contract.
type MonitorService struct {
	hub *websocket.Hub

	mu         sync.Mutex
	turns      int64
	degraded   int64
	totalTook  time.Duration
	routeCount map[string]int64
}

func NewMonitorService(hub *websocket.Hub) *MonitorService {
	return &MonitorService{
		hub:        hub,
		routeCount: map[string]int64{},
	}
}

func (s *MonitorService) TurnProcessed(threadID, userID, route, reply string, degraded bool, took time.Duration) {
	s.mu.Lock()
	s.turns++
	if degraded {
		s.degraded++
	}
	s.totalTook += took
	s.routeCount[route]++
	s.mu.Unlock()

	s.hub.Broadcast(websocket.MonitorEvent{
		Kind:       "turn_processed",
		ThreadID:   threadID,
		UserID:     userID,
		Route:      route,
		Reply:      reply,
		Degraded:   degraded,
		DurationMs: took.Milliseconds(),
		At:         time.Now(),
	})
}

// Stats returns a snapshot of the running counters.
func (s *MonitorService) Stats() MonitorStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := MonitorStats{
		TurnsProcessed: s.turns,
		DegradedTurns:  s.degraded,
		ByRoute:        map[string]int64{},
	}
	if s.turns > 0 {
		stats.AvgDurationMs = (s.totalTook / time.Duration(s.turns)).Milliseconds()
	}
	for route, n := range s.routeCount {
		stats.ByRoute[route] = n
	}
	return stats
}
