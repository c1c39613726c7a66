package lobby

import (
	"context"

	"go.uber.org/zap"

	"github.com/DoyleJ11/quiz-buzzer-backend/internal/engine"
	"github.com/DoyleJ11/quiz-buzzer-backend/internal/event"
	"github.com/DoyleJ11/quiz-buzzer-backend/internal/metrics"
	"github.com/DoyleJ11/quiz-buzzer-backend/internal/types"
)

var _ event.Event = engine.Event{}

type Msg interface{ isLobbyMsg() }

type FromClient struct {
	Cmd   engine.Command
	AckID string
}

func (FromClient) isLobbyMsg() {}

type Join struct {
	Conn   engine.ConnID
	Outbox chan types.ServerMessage // where this connection receives everything we send it
}

func (Join) isLobbyMsg() {}

type Leave struct{ Conn engine.ConnID }

func (Leave) isLobbyMsg() {}

type Shutdown struct{}

func (Shutdown) isLobbyMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isLobbyMsg() {}

type View struct {
	Version    int
	NumClients int
	Projection engine.Projection
}

// Lobby owns the session. Every mutation happens on its loop goroutine, one
// message at a time, so the session needs no locking.
type Lobby struct {
	inbox   chan Msg
	session *engine.Session
	version int
	clients map[engine.ConnID]chan types.ServerMessage
	log     *zap.Logger
	bus     *event.Bus
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewLobby starts the loop. bus may be nil.
func NewLobby(parent context.Context, session *engine.Session, log *zap.Logger, bus *event.Bus) *Lobby {
	ctx, cancel := context.WithCancel(parent)

	l := &Lobby{
		inbox:   make(chan Msg, 64), // Small buffer
		session: session,
		clients: make(map[engine.ConnID]chan types.ServerMessage),
		log:     log,
		bus:     bus,
		ctx:     ctx,
		cancel:  cancel,
	}

	go l.loop()
	return l
}

func (l *Lobby) loop() {
	for {
		select {
		case <-l.ctx.Done():
			l.shutdown()
			return

		case m := <-l.inbox:
			switch msg := m.(type) {
			case Join:
				// nothing is pushed until the connection logs in
				l.clients[msg.Conn] = msg.Outbox

			case Leave:
				l.drop(msg.Conn)
				if _, err := l.session.Apply(engine.Command{Type: engine.CmdDisconnect, Conn: msg.Conn}); err == nil {
					l.version++
					l.broadcast()
				}

			case FromClient:
				l.handle(msg)

			case GetState:
				// test-only: reflect internal state without data races
				msg.Reply <- View{
					Version:    l.version,
					NumClients: len(l.clients),
					Projection: engine.Project(l.session),
				}

			case Shutdown:
				l.shutdown()
				return
			}
		}
	}
}

func (l *Lobby) handle(msg FromClient) {
	cmd := msg.Cmd
	// Dropped connections may still have frames in flight; their Leave is
	// all that is left to apply.
	if _, ok := l.clients[cmd.Conn]; !ok {
		l.log.Debug("command from dropped connection ignored",
			zap.String("cmd", string(cmd.Type)),
			zap.String("conn", string(cmd.Conn)),
		)
		return
	}

	events, err := l.session.Apply(cmd)
	metrics.ObserveCommand(string(cmd.Type), err)

	if err != nil {
		l.log.Debug("command rejected",
			zap.String("cmd", string(cmd.Type)),
			zap.String("conn", string(cmd.Conn)),
			zap.Error(err),
		)
		if cmd.Type == engine.CmdLogin {
			l.send(cmd.Conn, types.ServerMessage{Type: types.MsgLoginResult, OK: types.Bool(false), Message: err.Error()})
		}
		l.ack(cmd.Conn, msg.AckID, err)
		return
	}

	l.dispatch(events)
	l.ack(cmd.Conn, msg.AckID, nil)
	l.version++
	l.broadcast()
	l.publish(events)
}

// dispatch delivers the side-channel messages an event implies. State
// snapshots go out separately in broadcast.
func (l *Lobby) dispatch(events []engine.Event) {
	for _, e := range events {
		switch e.Type {
		case engine.EvtLoggedIn:
			_, active := l.session.CurrentQuestion()
			l.send(e.Conn, types.ServerMessage{
				Type:           types.MsgLoginResult,
				OK:             types.Bool(true),
				Role:           e.Role,
				QuestionActive: types.Bool(active),
			})

		case engine.EvtNameClaimed:
			l.send(e.Conn, types.ServerMessage{Type: types.MsgNameClaimed, Name: e.Name})

		case engine.EvtForcedLogout:
			l.log.Info("name taken over", zap.String("name", e.Name), zap.String("conn", string(e.Conn)))
			l.send(e.Conn, types.ServerMessage{Type: types.MsgForcedLogout, Reason: e.Reason})
			l.drop(e.Conn)

		case engine.EvtLobbyReset:
			l.log.Info("lobby reset")
			for conn := range l.clients {
				l.send(conn, types.ServerMessage{Type: types.MsgLobbyReset})
			}

		case engine.EvtGameWon:
			metrics.GamesWon.Inc()
			l.log.Info("game won", zap.String("name", e.Name), zap.Int("score", e.Score), zap.Int("target", e.Target))
		}
	}
}

func (l *Lobby) ack(conn engine.ConnID, ackID string, err error) {
	if ackID == "" {
		return
	}
	msg := types.ServerMessage{Type: types.MsgAck, AckID: ackID, OK: types.Bool(err == nil)}
	if err != nil {
		msg.Message = err.Error()
	}
	l.send(conn, msg)
}

func (l *Lobby) publish(events []engine.Event) {
	if l.bus == nil {
		return
	}
	for _, e := range events {
		l.bus.Publish(l.ctx, e)
	}
}

// broadcast pushes a fresh view to every logged-in connection. The host view
// is built once; player views are per connection.
func (l *Lobby) broadcast() {
	metrics.Broadcasts.Inc()
	proj := engine.Project(l.session)
	for conn := range l.clients {
		var view any
		switch l.session.Roles[conn] {
		case engine.RoleHost:
			view = proj.Host
		case engine.RolePlayer:
			view = proj.Players[conn]
		default:
			continue
		}
		l.send(conn, types.ServerMessage{Type: types.MsgState, Version: l.version, State: view})
	}
}

func (l *Lobby) send(conn engine.ConnID, msg types.ServerMessage) {
	ch, ok := l.clients[conn]
	if !ok {
		return
	}
	select {
	case ch <- msg:
		//ok
	default:
		// Client is slow/full - drop them. Its Leave cleans up the session.
		metrics.DroppedClients.Inc()
		l.log.Warn("dropping slow client", zap.String("conn", string(conn)))
		l.drop(conn)
	}
}

// drop closes the connection's outbox; the transport hangs up once it has
// written what was already queued.
func (l *Lobby) drop(conn engine.ConnID) {
	if ch, ok := l.clients[conn]; ok {
		close(ch)
		delete(l.clients, conn)
	}
}

func (l *Lobby) shutdown() {
	for id, ch := range l.clients {
		close(ch) // Tell client no more messages
		delete(l.clients, id)
	}
	l.cancel()
}

// Inbox exposes the inbox so tests or the WS layer can send messages.
func (l *Lobby) Inbox() chan<- Msg { return l.inbox }

// Send delivers m unless the lobby has stopped.
func (l *Lobby) Send(m Msg) bool {
	select {
	case l.inbox <- m:
		return true
	case <-l.ctx.Done():
		return false
	}
}

func (l *Lobby) Done() <-chan struct{} { return l.ctx.Done() }
