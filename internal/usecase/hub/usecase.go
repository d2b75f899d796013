package hub

import (
	"context"
	"sync"
	"time"

	"github.com/kiryu-dev/tic-tac-toe-web/internal/domain"
	"github.com/kiryu-dev/tic-tac-toe-web/internal/usecase/game"
	"github.com/kiryu-dev/tic-tac-toe-web/pkg/utils"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

var errUnexpectedMessage = errors.New("unexpected message type")

const profileTimeout = 3 * time.Second

type Options struct {
	AIDelay     time.Duration
	SessionTTL  time.Duration
	SweepPeriod time.Duration
}

type entry struct {
	session  *game.Session
	clients  map[domain.Client]struct{}
	lastSeen time.Time
}

type useCase struct {
	repo     domain.ProfileRepository
	opts     Options
	sessions map[string]*entry
	saving   map[string]chan struct{}
	stopped  bool
	clients  *atomic.Int64
	live     *atomic.Int64
	mu       *sync.Mutex
	done     chan struct{}
	stopOnce sync.Once
	logger   *zap.Logger
}

func New(repo domain.ProfileRepository, opts Options, logger *zap.Logger) *useCase {
	u := &useCase{
		repo:     repo,
		opts:     opts,
		sessions: make(map[string]*entry),
		saving:   make(map[string]chan struct{}),
		clients:  atomic.NewInt64(0),
		live:     atomic.NewInt64(0),
		mu:       &sync.Mutex{},
		done:     make(chan struct{}),
		logger:   logger,
	}
	if opts.SweepPeriod > 0 {
		go u.sweepSessions()
	}
	return u
}

func (u *useCase) Handle(ctx context.Context, client domain.Client) error {
	u.clients.Inc()
	defer u.clients.Dec()
	key := client.Key()
	session, err := u.attach(ctx, key, client)
	if err != nil {
		return errors.WithMessage(err, "attach client")
	}
	defer u.detach(key, client)

	if err := client.WriteMessage(domain.Message{
		Type:    domain.Hello,
		Payload: domain.HelloPayload{ClientKey: key},
	}); err != nil {
		return errors.WithMessage(err, "send hello message")
	}
	if err := client.WriteMessage(domain.NewMessage(domain.WithState(session.Snapshot()))); err != nil {
		return errors.WithMessage(err, "send state message")
	}
	for {
		msg, err := client.ReadMessage()
		switch {
		case errors.Is(err, domain.ErrConnectionClosed):
			return nil
		case errors.Is(err, domain.ErrEmptyMessage), errors.Is(err, domain.ErrMalformedMessage):
			if err := client.WriteMessage(domain.NewMessage(domain.WithError(err))); err != nil {
				return errors.WithMessage(err, "send error message")
			}
			continue
		case err != nil:
			return errors.WithMessage(err, "read message from client")
		}
		if err := dispatch(session, msg); err != nil {
			u.logger.Info("rejected client message",
				zap.String("client", key),
				zap.Any("type", msg.Type),
				zap.Error(err),
			)
			if err := client.WriteMessage(domain.NewMessage(domain.WithError(err))); err != nil {
				return errors.WithMessage(err, "send error message")
			}
		}
	}
}

func dispatch(session *game.Session, msg domain.Message) error {
	switch msg.Type {
	case domain.Click:
		v, err := utils.UnmarshalJson[domain.ClickPayload](msg.Payload)
		if err != nil {
			return errors.WithMessage(err, "unmarshal json to 'ClickPayload' type")
		}
		return session.Click(v.Position)
	case domain.Restart:
		return session.Restart()
	case domain.ChangeMode:
		v, err := utils.UnmarshalJson[domain.ChangeModePayload](msg.Payload)
		if err != nil {
			return errors.WithMessage(err, "unmarshal json to 'ChangeModePayload' type")
		}
		return session.ChangeMode(v.Mode)
	default:
		return errors.WithMessagef(errUnexpectedMessage, "%d", msg.Type)
	}
}

// attach registers client on the session for key, creating it from the stored profile when needed.
// A session still being saved after eviction is awaited so the reload sees its final profile.
func (u *useCase) attach(ctx context.Context, key string, client domain.Client) (*game.Session, error) {
	for {
		u.mu.Lock()
		if u.stopped {
			u.mu.Unlock()
			return nil, domain.ErrHubStopped
		}
		if e, ok := u.sessions[key]; ok {
			u.registerLocked(key, e, client)
			u.mu.Unlock()
			return e.session, nil
		}
		pending, saving := u.saving[key]
		u.mu.Unlock()
		if saving {
			select {
			case <-pending:
				continue
			case <-ctx.Done():
				return nil, errors.WithMessage(ctx.Err(), "wait for session save")
			}
		}

		profile := u.loadProfile(ctx, key)
		u.mu.Lock()
		if _, ok := u.sessions[key]; ok || u.saving[key] != nil || u.stopped {
			u.mu.Unlock()
			continue
		}
		e := &entry{
			session: game.NewSession(profile, u.opts.AIDelay, u.logger.With(zap.String("client", key))),
			clients: make(map[domain.Client]struct{}),
		}
		u.sessions[key] = e
		u.live.Inc()
		u.logger.Info("created session", zap.String("client", key), zap.String("mode", string(profile.Mode)))
		u.registerLocked(key, e, client)
		u.mu.Unlock()
		return e.session, nil
	}
}

func (u *useCase) registerLocked(key string, e *entry, client domain.Client) {
	e.clients[client] = struct{}{}
	e.lastSeen = time.Now()
	u.bindListenerLocked(key, e)
}

func (u *useCase) detach(key string, client domain.Client) {
	u.mu.Lock()
	e, ok := u.sessions[key]
	if !ok {
		u.mu.Unlock()
		return
	}
	delete(e.clients, client)
	e.lastSeen = time.Now()
	u.bindListenerLocked(key, e)
	profile := e.session.Profile()
	u.mu.Unlock()
	u.saveProfile(key, profile)
}

// bindListenerLocked points the session listener at the clients attached right now.
func (u *useCase) bindListenerLocked(key string, e *entry) {
	if len(e.clients) == 0 {
		e.session.SetListener(nil)
		return
	}
	clients := make([]domain.Client, 0, len(e.clients))
	for c := range e.clients {
		clients = append(clients, c)
	}
	e.session.SetListener(func(state domain.State) {
		msg := domain.NewMessage(domain.WithState(state))
		for _, c := range clients {
			if err := c.WriteMessage(msg); err != nil {
				u.logger.Warn("failed to push state", zap.String("client", key), zap.Error(err))
			}
		}
	})
}

func (u *useCase) loadProfile(ctx context.Context, key string) domain.Profile {
	ctx, cancel := context.WithTimeout(ctx, profileTimeout)
	defer cancel()
	profile, err := u.repo.Load(ctx, key)
	switch {
	case errors.Is(err, domain.ErrProfileNotFound):
		return domain.DefaultProfile()
	case err != nil:
		u.logger.Warn("failed to load profile", zap.String("client", key), zap.Error(err))
		return domain.DefaultProfile()
	}
	return profile
}

func (u *useCase) saveProfile(key string, profile domain.Profile) {
	ctx, cancel := context.WithTimeout(context.Background(), profileTimeout)
	defer cancel()
	if err := u.repo.Save(ctx, key, profile); err != nil {
		u.logger.Warn("failed to save profile", zap.String("client", key), zap.Error(err))
	}
}

func (u *useCase) sweepSessions() {
	ticker := time.NewTicker(u.opts.SweepPeriod)
	defer ticker.Stop()
	for {
		select {
		case now := <-ticker.C:
			if n := u.removeIdleSessions(now); n > 0 {
				u.logger.Info("removed idle sessions", zap.Int("count", n))
			}
		case <-u.done:
			return
		}
	}
}

// removeIdleSessions evicts sessions without clients that were last used more than SessionTTL before now.
// Until an evicted profile is saved, attach for the same key waits.
func (u *useCase) removeIdleSessions(now time.Time) int {
	u.mu.Lock()
	evicted := make(map[string]*entry)
	for key, e := range u.sessions {
		if len(e.clients) == 0 && now.Sub(e.lastSeen) > u.opts.SessionTTL {
			evicted[key] = e
			delete(u.sessions, key)
			u.saving[key] = make(chan struct{})
		}
	}
	u.mu.Unlock()
	for key, e := range evicted {
		u.closeSession(key, e)
		u.mu.Lock()
		close(u.saving[key])
		delete(u.saving, key)
		u.mu.Unlock()
	}
	return len(evicted)
}

func (u *useCase) closeSession(key string, e *entry) {
	e.session.Close()
	u.live.Dec()
	u.saveProfile(key, e.session.Profile())
}

func (u *useCase) Stats() domain.HubStats {
	return domain.HubStats{
		Clients:  u.clients.Load(),
		Sessions: u.live.Load(),
	}
}

// Stop ends the sweeper, then saves and closes every session. Later connections are refused.
func (u *useCase) Stop() {
	u.stopOnce.Do(func() {
		close(u.done)
	})
	u.mu.Lock()
	u.stopped = true
	sessions := u.sessions
	u.sessions = make(map[string]*entry)
	u.mu.Unlock()
	for key, e := range sessions {
		u.closeSession(key, e)
	}
}
