package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"voxelkeep.ai/internal/auth"
	"voxelkeep.ai/internal/protocol"
	"voxelkeep.ai/internal/sim/world"
)

const maxMessageBytes = 64 * 1024

// Server bridges host connections to the world loop. Each connection carries
// one player session: HELLO, WELCOME, then ACT frames in and STATUS frames out.
type Server struct {
	world  *world.World
	log    *log.Logger
	signer *auth.Signer

	// ACT frames per second allowed per connection, and the burst.
	ActRate  rate.Limit
	ActBurst int
	// JoinTimeout bounds the wait for the world to answer a HELLO.
	JoinTimeout time.Duration

	upgrader websocket.Upgrader

	connections atomic.Int64
	rateLimited atomic.Uint64
}

// NewServer builds the transport. A nil signer accepts the player name from
// HELLO unauthenticated and never grants admin.
func NewServer(w *world.World, signer *auth.Signer, logger *log.Logger) *Server {
	return &Server{
		world:       w,
		log:         logger,
		signer:      signer,
		ActRate:     rate.Limit(20),
		ActBurst:    40,
		JoinTimeout: 10 * time.Second,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  maxMessageBytes,
			WriteBufferSize: maxMessageBytes,
			CheckOrigin:     func(r *http.Request) bool { return true }, // host-to-server, no browsers
		},
	}
}

type Stats struct {
	Connections int64
	RateLimited uint64
}

func (s *Server) Stats() Stats {
	return Stats{Connections: s.connections.Load(), RateLimited: s.rateLimited.Load()}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		conn.SetReadLimit(maxMessageBytes)

		sess, ok := s.handshake(conn)
		if !ok {
			return
		}
		s.connections.Add(1)
		defer s.connections.Add(-1)
		s.logf("session %s player=%s admin=%v", sess.id, sess.player, sess.admin)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case b, ok := <-sess.out:
					if !ok {
						return
					}
					if err := writeRaw(conn, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		limiter := rate.NewLimiter(s.ActRate, s.ActBurst)
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				break
			}
			base, err := protocol.DecodeBase(msg)
			if err != nil || base.Type != protocol.TypeAct {
				sess.reply(protocol.ErrProtoBadRequest, "expected ACT")
				continue
			}
			var act protocol.ActMsg
			if err := json.Unmarshal(msg, &act); err != nil {
				sess.reply(protocol.ErrProtoBadRequest, "bad ACT: "+err.Error())
				continue
			}
			if act.ProtocolVersion != protocol.Version {
				sess.reply(protocol.ErrProtoBadRequest, "bad protocol_version")
				continue
			}
			if !limiter.Allow() {
				s.rateLimited.Add(1)
				sess.reply(protocol.ErrRateLimit, "too many ACT frames")
				continue
			}
			select {
			case s.world.Inbox() <- world.ActionEnvelope{Player: sess.player, Act: act}:
			default:
				sess.reply(protocol.ErrWorldBusy, "world inbox full")
			}
		}
		cancel()

		// Leave by session id so a stale socket cannot end a resumed session.
		s.leave(sess.id)
		s.logf("session %s closed", sess.id)
	}
}

type session struct {
	id     string
	player string
	admin  bool
	out    chan []byte
}

// reply queues an ERROR frame on the session's outbound queue.
func (sess *session) reply(code, message string) {
	b, err := json.Marshal(protocol.NewError(code, message))
	if err != nil {
		return
	}
	select {
	case sess.out <- b:
	default:
	}
}

func (s *Server) handshake(conn *websocket.Conn) (session, bool) {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return session{}, false
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		s.reject(conn, protocol.ErrProtoBadRequest, "expected HELLO")
		return session{}, false
	}
	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		s.reject(conn, protocol.ErrProtoBadRequest, "bad HELLO")
		return session{}, false
	}
	if hello.ProtocolVersion != protocol.Version {
		s.reject(conn, protocol.ErrProtoBadRequest, "bad protocol_version")
		return session{}, false
	}

	name := strings.TrimSpace(hello.PlayerName)
	admin := false
	resumeToken := ""
	if hello.Auth != nil {
		resumeToken = strings.TrimSpace(hello.Auth.ResumeToken)
	}
	if s.signer != nil {
		if hello.Auth == nil || hello.Auth.Token == "" {
			s.reject(conn, protocol.ErrUnauthorized, "identity token required")
			return session{}, false
		}
		claims, err := s.signer.Validate(hello.Auth.Token)
		if err != nil {
			s.reject(conn, protocol.ErrUnauthorized, err.Error())
			return session{}, false
		}
		if name != "" && name != claims.PlayerName {
			s.reject(conn, protocol.ErrNoPermission, "player_name does not match token")
			return session{}, false
		}
		name = claims.PlayerName
		admin = claims.Admin
	}
	if name == "" {
		s.reject(conn, protocol.ErrProtoBadRequest, "missing player_name")
		return session{}, false
	}

	maxQ := hello.Capabilities.MaxQueue
	if maxQ <= 0 {
		maxQ = 8
	}
	if maxQ > 64 {
		maxQ = 64
	}
	out := make(chan []byte, maxQ)

	respCh := make(chan world.JoinResponse, 1)
	timeout := time.NewTimer(s.JoinTimeout)
	defer timeout.Stop()
	select {
	case s.world.Join() <- world.JoinRequest{
		Name:        name,
		Admin:       admin,
		ResumeToken: resumeToken,
		Out:         out,
		Resp:        respCh,
	}:
	case <-s.world.Done():
		s.reject(conn, protocol.ErrWorldBusy, "world stopped")
		return session{}, false
	case <-timeout.C:
		s.reject(conn, protocol.ErrWorldBusy, "join timed out")
		return session{}, false
	}
	var resp world.JoinResponse
	select {
	case resp = <-respCh:
	case <-s.world.Done():
		s.reject(conn, protocol.ErrWorldBusy, "world stopped")
		return session{}, false
	case <-timeout.C:
		s.reject(conn, protocol.ErrWorldBusy, "join timed out")
		// The request is queued; end the session it opens.
		go s.leaveLate(respCh)
		return session{}, false
	}
	if resp.Err != "" {
		s.reject(conn, protocol.ErrConflict, resp.Err)
		return session{}, false
	}

	if err := writeJSON(conn, resp.Welcome); err != nil {
		s.leave(resp.Welcome.SessionID)
		return session{}, false
	}
	return session{
		id:     resp.Welcome.SessionID,
		player: resp.Welcome.PlayerName,
		admin:  resp.Welcome.Admin,
		out:    out,
	}, true
}

// leave hands a session id to the world unless the loop has stopped.
func (s *Server) leave(sessionID string) {
	select {
	case s.world.Leave() <- sessionID:
	case <-s.world.Done():
	}
}

// leaveLate waits for the answer to an abandoned join and ends the session
// it opened, if any.
func (s *Server) leaveLate(respCh <-chan world.JoinResponse) {
	select {
	case resp := <-respCh:
		if resp.Err == "" {
			s.logf("late join %s for %s closed", resp.Welcome.SessionID, resp.Welcome.PlayerName)
			s.leave(resp.Welcome.SessionID)
		}
	case <-s.world.Done():
	}
}

// reject sends an ERROR frame and closes with a policy violation.
func (s *Server) reject(conn *websocket.Conn, code, message string) {
	_ = writeJSON(conn, protocol.NewError(code, message))
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, code), time.Now().Add(time.Second))
	s.logf("handshake rejected: %s %s", code, message)
}

func (s *Server) logf(format string, args ...any) {
	if s.log != nil {
		s.log.Printf(format, args...)
	}
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return writeRaw(conn, b)
}

func writeRaw(conn *websocket.Conn, b []byte) error {
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
