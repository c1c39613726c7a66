package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DoyleJ11/quiz-buzzer-backend/internal/auth"
	"github.com/DoyleJ11/quiz-buzzer-backend/internal/engine"
	"github.com/DoyleJ11/quiz-buzzer-backend/internal/lobby"
	"github.com/DoyleJ11/quiz-buzzer-backend/internal/metrics"
	"github.com/DoyleJ11/quiz-buzzer-backend/internal/types"
)

const (
	outboxSize   = 16
	writeTimeout = 3 * time.Second
	readLimit    = 8 << 10
)

type Options struct {
	Credentials    auth.Credentials
	OriginPatterns []string
	// PingInterval defaults to 25s. Negative disables keepalive pings.
	PingInterval time.Duration
}

func Handler(lb *lobby.Lobby, opts Options, log *zap.Logger) http.HandlerFunc {
	if opts.PingInterval == 0 {
		opts.PingInterval = 25 * time.Second
	}

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: opts.OriginPatterns,
		})
		if err != nil {
			log.Debug("websocket accept failed", zap.Error(err))
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")
		conn.SetReadLimit(readLimit)

		id := engine.ConnID(uuid.NewString())
		log := log.With(zap.String("conn", string(id)))
		out := make(chan types.ServerMessage, outboxSize)

		if !lb.Send(lobby.Join{Conn: id, Outbox: out}) {
			conn.Close(websocket.StatusGoingAway, "server shutting down")
			return
		}
		defer lb.Send(lobby.Leave{Conn: id})

		metrics.Connections.Inc()
		defer metrics.Connections.Dec()
		log.Info("client connected", zap.String("remote", r.RemoteAddr))
		defer log.Info("client disconnected")

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// Writer goroutine. Once the lobby closes out we flush what's queued
		// and hang up.
		go func() {
			for msg := range out {
				wctx, wcancel := context.WithTimeout(ctx, writeTimeout)
				err := wsjson.Write(wctx, conn, msg)
				wcancel()
				if err != nil {
					log.Debug("write failed", zap.Error(err))
					cancel()
					break
				}
			}
			conn.Close(websocket.StatusNormalClosure, "closed by server")
		}()

		if opts.PingInterval > 0 {
			go keepalive(ctx, conn, opts.PingInterval, log)
		}

		// Reader loop
		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					log.Debug("client closed")
				default:
					log.Debug("read failed", zap.Error(err))
				}
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				writeError(ctx, conn, "", "bad json")
				continue
			}

			var cmd engine.Command
			if cm.Type == types.MsgLogin {
				// bcrypt is slow; keep it off the lobby loop.
				role, _ := opts.Credentials.Check(cm.Username, cm.Password)
				cmd = engine.Command{Type: engine.CmdLogin, Conn: id, Role: role}
			} else {
				var ok bool
				cmd, ok = types.ToCommand(id, cm)
				if !ok {
					metrics.ObserveCommand("unknown", engine.ErrUnsupportedCommand)
					writeError(ctx, conn, cm.AckID, "unknown type")
					continue
				}
			}

			if !lb.Send(lobby.FromClient{Cmd: cmd, AckID: cm.AckID}) {
				return
			}
		}
	}
}

func keepalive(ctx context.Context, conn *websocket.Conn, every time.Duration, log *zap.Logger) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			pctx, cancel := context.WithTimeout(ctx, every)
			err := conn.Ping(pctx)
			cancel()
			if err != nil {
				log.Debug("ping failed", zap.Error(err))
				conn.Close(websocket.StatusPolicyViolation, "ping timeout")
				return
			}
		}
	}
}

func writeError(ctx context.Context, conn *websocket.Conn, ackID, msg string) {
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	_ = wsjson.Write(wctx, conn, types.ServerMessage{Type: types.MsgError, AckID: ackID, Message: msg})
}
