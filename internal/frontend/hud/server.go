// Package hud serves the per-player websocket feed: combat notifications go
// out as JSON frames and input actions come back in.
package hud

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cory-johannsen/gunfire/internal/game/event"
	"github.com/cory-johannsen/gunfire/internal/game/geom"
	"github.com/cory-johannsen/gunfire/internal/game/input"
)

// Frame kinds that are not event kinds.
const (
	FrameWelcome = "welcome"
	FrameError   = "error"
)

// SendBuffer is the number of frames queued per connection before new
// frames are dropped.
const SendBuffer = 64

// Frame is the envelope of every server-to-client message.
type Frame struct {
	Kind  string `json:"kind"`
	Event any    `json:"event"`
}

// Command is a client-to-server message. Exactly one of Action and Aim is set.
type Command struct {
	// Action is an input line such as "fire" or "reload".
	Action string `json:"action,omitempty"`
	Aim    *Aim   `json:"aim,omitempty"`
}

// Aim moves the character and points it along Forward.
type Aim struct {
	Position geom.Vec3 `json:"position"`
	Forward  geom.Vec3 `json:"forward"`
}

// ErrorMessage is the payload of an error frame.
type ErrorMessage struct {
	Message string `json:"message"`
}

// Subscriber is the subscribe side of an event.Bus.
type Subscriber interface {
	Subscribe(l event.Listener) (unsubscribe func())
}

// Server is the HUD HTTP server.
type Server struct {
	game     Game
	bus      Subscriber
	registry *input.Registry
	logger   *zap.Logger
	http     *http.Server
}

// NewServer creates a Server listening on addr.
//
// Precondition: game and bus must not be nil.
func NewServer(addr string, game Game, bus Subscriber, logger *zap.Logger) *Server {
	if game == nil || bus == nil {
		panic("hud: NewServer: game and bus must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{game: game, bus: bus, registry: input.DefaultRegistry(), logger: logger}
	s.http = &http.Server{Addr: addr, Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	return s
}

// Handler returns the routes: /ws?name=<player> and /healthz.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /ws", s.serveWS)
	return mux
}

// Serve accepts connections on ln until Shutdown.
//
// Postcondition: returns nil after a clean Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("hud listening", zap.String("addr", ln.Addr().String()))
	if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for handlers to return.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		s.logger.Warn("websocket accept failed", zap.Error(err))
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()
	welcome, err := s.game.Join(ctx, name)
	if err != nil {
		s.logger.Warn("join failed", zap.String("name", name), zap.Error(err))
		conn.Close(websocket.StatusTryAgainLater, "arena busy")
		return
	}
	id := welcome.CharacterID
	defer s.game.Leave(id)
	logger := s.logger.With(zap.String("character", id), zap.String("name", name))

	out := make(chan Frame, SendBuffer)
	out <- Frame{Kind: FrameWelcome, Event: welcome}
	send := func(f Frame) {
		select {
		case out <- f:
		default:
			logger.Debug("hud send buffer full, dropping frame", zap.String("kind", f.Kind))
		}
	}
	unsubscribe := s.bus.Subscribe(event.ListenerFunc(func(ev event.Event) {
		if ev.Subject() == id {
			send(Frame{Kind: ev.Kind().String(), Event: ev})
		}
	}))
	defer unsubscribe()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for {
			var cmd Command
			if err := wsjson.Read(gctx, conn, &cmd); err != nil {
				return err
			}
			if err := s.handle(id, cmd); err != nil {
				send(Frame{Kind: FrameError, Event: ErrorMessage{Message: err.Error()}})
			}
		}
	})
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case f := <-out:
				if err := wsjson.Write(gctx, conn, f); err != nil {
					return err
				}
			}
		}
	})

	err = g.Wait()
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		logger.Info("hud client disconnected")
	default:
		logger.Debug("hud connection ended", zap.Error(err))
	}
}

func (s *Server) handle(id string, cmd Command) error {
	switch {
	case cmd.Aim != nil:
		s.game.Aim(id, cmd.Aim.Position, cmd.Aim.Forward)
		return nil
	case cmd.Action != "":
		k, err := s.registry.Interpret(cmd.Action)
		if err != nil {
			return err
		}
		s.game.Input(id, k)
		return nil
	default:
		return errors.New("empty command")
	}
}
