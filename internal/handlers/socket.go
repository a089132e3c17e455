// internal/handlers/socket.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/jason-s-yu/munchkin/internal/auth"
	"github.com/jason-s-yu/munchkin/internal/game"
	"github.com/jason-s-yu/munchkin/internal/middleware"
	"github.com/jason-s-yu/munchkin/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	socketPrefix = "/socket/"
	outBuffer    = 256
	writeTimeout = 5 * time.Second
	pingInterval = 30 * time.Second
)

var namePattern = regexp.MustCompile(`^\w{1,32}$`)

// socketPath is the parsed form of /socket/{player}/{session}[/{passphrase}].
type socketPath struct {
	Player     string
	Session    string
	Passphrase string
}

func parseSocketPath(path string) (socketPath, error) {
	parts := strings.Split(strings.Trim(strings.TrimPrefix(path, socketPrefix), "/"), "/")
	if len(parts) < 2 || len(parts) > 3 {
		return socketPath{}, fmt.Errorf("expected %s{player}/{session}[/{passphrase}]", socketPrefix)
	}
	for _, part := range parts {
		if !namePattern.MatchString(part) {
			return socketPath{}, fmt.Errorf("invalid path segment %q", part)
		}
	}
	sp := socketPath{Player: parts[0], Session: parts[1]}
	if len(parts) == 3 {
		sp.Passphrase = parts[2]
	}
	return sp, nil
}

// socketConn is the game.Conn of one websocket client. Send queues the event for
// the write pump; a client that lets the queue fill is cut off, and so is one
// whose seat is taken over by a newer connection.
type socketConn struct {
	out  chan game.Event
	done chan struct{}
	once sync.Once
	log  *logrus.Entry

	// set once, before done is closed
	code   websocket.StatusCode
	reason string
}

func newSocketConn(log *logrus.Entry) *socketConn {
	return &socketConn{
		out:  make(chan game.Event, outBuffer),
		done: make(chan struct{}),
		log:  log,
	}
}

// Send implements game.Conn.
func (sc *socketConn) Send(ev game.Event) {
	if sc.stopped() {
		return
	}
	select {
	case sc.out <- ev:
	default:
		sc.log.WithField("type", ev.Type).Warn("outbound queue full, dropping client")
		sc.cutOff(SlowConsumerError, "outbound queue overflow")
	}
}

// Replaced implements game.Replaceable.
func (sc *socketConn) Replaced() {
	sc.log.Info("seat taken over by another connection")
	sc.cutOff(SeatTakenError, "seat taken over by another connection")
}

// cutOff stops the conn and has the write pump close the socket with code.
func (sc *socketConn) cutOff(code websocket.StatusCode, reason string) {
	sc.once.Do(func() {
		sc.code, sc.reason = code, reason
		close(sc.done)
	})
}

// stop ends the conn without closing the socket.
func (sc *socketConn) stop() {
	sc.once.Do(func() { close(sc.done) })
}

// stopped reports whether the conn was stopped or cut off.
func (sc *socketConn) stopped() bool {
	select {
	case <-sc.done:
		return true
	default:
		return false
	}
}

// SocketHandler upgrades /socket/{player}/{session}[/{passphrase}] to a websocket
// and seats the client in the named session, creating it on first use.
//
// Query parameters:
//   - token: a resume token from an earlier welcome; reclaims that seat.
//   - observer: when set, also seats an observer so one player can start a game.
func SocketHandler(logger *logrus.Logger, store *game.SessionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sp, err := parseSocketPath(r.URL.Path)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{subprotocol},
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			logger.Warnf("WebSocket accept error for session %s: %v", sp.Session, err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "Internal server error during handler exit.")
		middleware.LogWebSocketConnect(logger, r.RemoteAddr, r.URL.Path)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		s, _, err := store.Open(sp.Session, sp.Passphrase)
		if err != nil {
			closeWithError(ctx, c, logger, err)
			return
		}

		log := logger.WithFields(logrus.Fields{"session": s.Name, "player": sp.Player})
		conn := newSocketConn(log)
		p, err := seat(s, sp.Player, r.URL.Query(), conn)
		if err != nil {
			closeWithError(ctx, c, logger, err)
			return
		}

		go writePump(ctx, c, conn, log)

		token, err := auth.CreateResumeToken(s.ID.String(), s.Name, p.Name)
		if err != nil {
			log.WithError(err).Warn("could not issue resume token")
		}
		s.Welcome(p, token)

		readErr := readPump(ctx, c, s, p, conn, log)

		s.HandleDisconnect(p, conn)
		conn.stop()
		middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, r.URL.Path, readErr)
	}
}

// seat joins or resumes the player named in the URL, honouring the token and
// observer query parameters.
func seat(s *game.Session, name string, q url.Values, conn game.Conn) (*game.Player, error) {
	var (
		p   *game.Player
		err error
	)
	if tok := q.Get("token"); tok != "" {
		claims, perr := auth.ParseResumeToken(tok)
		if perr != nil {
			return nil, fmt.Errorf("%w: %v", errInvalidToken, perr)
		}
		if claims.Session != s.Name || claims.ID != s.ID.String() {
			return nil, errInvalidToken
		}
		p, err = s.Resume(claims.Subject, conn)
	} else {
		p, err = s.Join(name, conn)
	}
	if err != nil {
		return nil, err
	}
	if q.Get("observer") != "" {
		if _, err := s.AddObserver(); err != nil && !errors.Is(err, game.ErrSessionStarted) {
			return nil, err
		}
	}
	return p, nil
}

var errInvalidToken = errors.New("invalid resume token")

// closeCode maps a seating error to the close code sent to the client.
func closeCode(err error) websocket.StatusCode {
	switch {
	case errors.Is(err, errInvalidToken), errors.Is(err, game.ErrUnresolvable):
		return InvalidResumeTokenError
	case errors.Is(err, game.ErrWrongPassword):
		return WrongPasswordError
	case errors.Is(err, game.ErrSessionStarted):
		return SessionStartedError
	case errors.Is(err, game.ErrNameTaken):
		return NameTakenError
	case errors.Is(err, game.ErrSessionClosed):
		return SessionClosedError
	default:
		return websocket.StatusInternalError
	}
}

// closeWithError reports err as an error event and closes the socket.
func closeWithError(ctx context.Context, c *websocket.Conn, logger *logrus.Logger, err error) {
	logger.Infof("Refusing websocket client: %v", err)
	sendWsMessage(ctx, c, game.Event{Type: game.EventError, Reason: err.Error()})
	c.Close(closeCode(err), err.Error())
}

// readPump decodes requests until the client goes away or conn is cut off and
// hands each to the session. It returns the error that ended the loop, nil on a
// normal close.
func readPump(ctx context.Context, c *websocket.Conn, s *game.Session, p *game.Player, conn *socketConn, log *logrus.Entry) error {
	for {
		typ, msg, err := c.Read(ctx)
		if conn.stopped() {
			return nil
		}
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		if typ != websocket.MessageText {
			s.SendError(p, "expected a text message")
			continue
		}

		var req models.Request
		if err := json.Unmarshal(msg, &req); err != nil {
			log.WithError(err).Debug("malformed request")
			s.SendError(p, "malformed request")
			continue
		}
		if err := handleRequest(s, p, req); err != nil {
			log.WithError(err).WithField("request", req.Type).Debug("request rejected")
			s.SendError(p, err.Error())
		}
	}
}

func handleRequest(s *game.Session, p *game.Player, req models.Request) error {
	switch req.Type {
	case models.RequestAction:
		if req.Action == nil {
			return errors.New("ACTION without action")
		}
		return s.HandleAction(p, *req.Action)
	case models.RequestReady:
		return s.Ready(p)
	case models.RequestChat:
		if text := strings.TrimSpace(req.Text); text != "" {
			s.Chat(p, text)
		}
		return nil
	default:
		return fmt.Errorf("unknown request type %q", req.Type)
	}
}

// writePump drains the connection's queue onto the socket and keeps it alive
// with pings. It closes the socket when the client is cut off.
func writePump(ctx context.Context, c *websocket.Conn, conn *socketConn, log *logrus.Entry) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-conn.done:
			if conn.code != 0 && ctx.Err() == nil {
				c.Close(conn.code, conn.reason)
			}
			return
		case ev := <-conn.out:
			if err := sendWsMessage(ctx, c, ev); err != nil {
				log.WithError(err).Warn("failed to write to websocket")
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				log.WithError(err).Warn("ping failed, assuming disconnect")
				return
			}
		}
	}
}

// sendWsMessage marshals v and writes it with a short timeout.
func sendWsMessage(ctx context.Context, c *websocket.Conn, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal outbound message: %w", err)
	}
	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return c.Write(writeCtx, websocket.MessageText, data)
}
