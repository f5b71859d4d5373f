package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/lorrc/ticket-board/internal/core/ports"
)

// RegistryConfig holds board registry configuration
type RegistryConfig struct {
	Board           BoardOptions
	IdleTTL         time.Duration // How long an unused board is kept
	CleanupInterval time.Duration // How often idle boards are evicted
}

type boardEntry struct {
	board  *Board
	loaded chan struct{}
}

// BoardRegistry maps user ids to their boards, creating them lazily.
type BoardRegistry struct {
	deps   BoardDeps
	cfg    RegistryConfig
	logger *slog.Logger

	mu     sync.Mutex
	boards map[string]*boardEntry

	stop     chan struct{}
	stopOnce sync.Once
}

var _ ports.BoardRegistry = (*BoardRegistry)(nil)

// NewBoardRegistry creates a registry and starts idle eviction.
func NewBoardRegistry(deps BoardDeps, cfg RegistryConfig) *BoardRegistry {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	r := &BoardRegistry{
		deps:   deps,
		cfg:    cfg,
		logger: logger.With("component", "board_registry"),
		boards: make(map[string]*boardEntry),
		stop:   make(chan struct{}),
	}

	if cfg.IdleTTL > 0 && cfg.CleanupInterval > 0 {
		go r.evictIdle(cfg.CleanupInterval, cfg.IdleTTL)
	}

	return r
}

// Board returns the user's board. The first call loads the directory and
// the ticket list; concurrent callers wait for that load. A failed load
// still yields a usable, empty board.
func (r *BoardRegistry) Board(ctx context.Context, userID string) (ports.BoardService, error) {
	r.mu.Lock()
	entry, exists := r.boards[userID]
	if !exists {
		entry = &boardEntry{
			board:  NewBoard(userID, r.deps, r.cfg.Board),
			loaded: make(chan struct{}),
		}
		r.boards[userID] = entry
	}
	r.mu.Unlock()

	if exists {
		select {
		case <-entry.loaded:
			return entry.board, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	defer close(entry.loaded)
	// Refresh also loads the directory, and keeps retrying it on later
	// refreshes until it succeeds.
	if err := entry.board.Refresh(ctx); err != nil {
		r.logger.WarnContext(ctx, "board tickets not loaded", "user_id", userID, "error", err)
	}
	r.logger.InfoContext(ctx, "board created", "user_id", userID, "total_boards", r.Len())

	return entry.board, nil
}

// Len returns the number of live boards.
func (r *BoardRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.boards)
}

// Evict drops boards idle for longer than ttl and returns how many went.
func (r *BoardRegistry) Evict(ttl time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for userID, entry := range r.boards {
		select {
		case <-entry.loaded:
		default:
			continue // still loading
		}
		if time.Since(entry.board.LastUsed()) > ttl {
			delete(r.boards, userID)
			evicted++
		}
	}
	return evicted
}

func (r *BoardRegistry) evictIdle(interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := r.Evict(ttl); n > 0 {
				r.logger.Info("evicted idle boards", "count", n, "remaining", r.Len())
			}
		case <-r.stop:
			return
		}
	}
}

// Shutdown stops idle eviction.
func (r *BoardRegistry) Shutdown() {
	r.stopOnce.Do(func() { close(r.stop) })
}
