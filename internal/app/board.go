package app

import (
	"context"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hylla/shootdesk/internal/domain"
)

// BoardSessionConfig holds configuration for one board session.
type BoardSessionConfig struct {
	ProjectID   string
	Mode        domain.TransitionMode
	GraceWindow time.Duration
	Logger      *log.Logger
}

// BoardSession is a caller-side board view that applies moves optimistically,
// rolls back failed writes, and shields recent local writes from stale refreshes.
type BoardSession struct {
	mu        sync.Mutex
	board     domain.Board
	writer    TaskStatusWriter
	clock     Clock
	projectID string
	mode      domain.TransitionMode
	grace     time.Duration
	recent    map[string]time.Time
	logger    *log.Logger
}

// NewBoardSession constructs a new value for this package.
func NewBoardSession(board domain.Board, writer TaskStatusWriter, clock Clock, cfg BoardSessionConfig) *BoardSession {
	if clock == nil {
		clock = time.Now
	}
	if cfg.GraceWindow <= 0 {
		cfg.GraceWindow = DefaultBoardWriteGrace
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}
	return &BoardSession{
		board:     board.Clone(),
		writer:    writer,
		clock:     clock,
		projectID: cfg.ProjectID,
		mode:      cfg.Mode,
		grace:     cfg.GraceWindow,
		recent:    map[string]time.Time{},
		logger:    cfg.Logger,
	}
}

// ProjectID returns the project the session shows.
func (s *BoardSession) ProjectID() string {
	return s.projectID
}

// Department returns the department the session shows.
func (s *BoardSession) Department() domain.Department {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.Department
}

// Snapshot returns a copy of the current view.
func (s *BoardSession) Snapshot() domain.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.Clone()
}

// Move applies a move locally, then issues one status write. A same-column
// move issues no write. When the write fails the prior placement is restored
// and the storage error is returned unchanged.
func (s *BoardSession) Move(ctx context.Context, taskID string, target domain.TaskStatus, force bool) (domain.MoveResult, error) {
	s.mu.Lock()
	now := s.clock()
	res, err := s.board.Move(taskID, target, domain.TransitionOptions{Mode: s.mode, Force: force}, now)
	if err != nil || !res.Changed {
		s.mu.Unlock()
		return res, err
	}
	s.recent[res.Task.ID] = now
	s.mu.Unlock()

	if err := s.writer.UpdateTaskStatus(ctx, res.Task.ID, res.To, res.Task.UpdatedAt); err != nil {
		s.rollback(res)
		s.logger.Warn("board move rolled back", "task_id", res.Task.ID, "from", res.From, "to", res.To, "err", err)
		return res, err
	}
	return res, nil
}

// rollback restores a failed move unless a later move already replaced it.
func (s *BoardSession) rollback(res domain.MoveResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.board.Task(res.Task.ID)
	if ok && (current.Status != res.To || !current.UpdatedAt.Equal(res.Task.UpdatedAt)) {
		return
	}
	s.board.Revert(res)
	delete(s.recent, res.Task.ID)
}

// Reconcile replaces the view with a refreshed snapshot. Tasks written locally
// within the grace window keep their local state. It returns the ids whose
// refreshed copy was suppressed.
func (s *BoardSession) Reconcile(fresh []domain.Task) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := domain.BuildBoard(s.board.Department, fresh)
	if err != nil {
		return nil
	}
	now := s.clock()
	suppressed := []string{}
	for taskID, writtenAt := range s.recent {
		if now.Sub(writtenAt) >= s.grace {
			delete(s.recent, taskID)
			continue
		}
		local, ok := s.board.Task(taskID)
		if !ok {
			continue
		}
		next.Replace(local)
		suppressed = append(suppressed, taskID)
	}
	s.board = next
	slices.Sort(suppressed)
	return suppressed
}
