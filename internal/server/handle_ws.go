package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"golang.org/x/time/rate"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/playperu/tambola/internal/game"
	"github.com/playperu/tambola/internal/tambola"
)

// Command types accepted over the WebSocket.
const (
	cmdTicket  = "ticket"
	cmdStart   = "start"
	cmdCalling = "calling"
	cmdPause   = "pause"
	cmdResume  = "resume"
	cmdDraw    = "draw"
	cmdStop    = "stop"
	cmdClaim   = "claim"
	cmdStrike  = "strike"
	cmdChat    = "chat"
	cmdLeave   = "leave"
)

var errChatRateLimited = errors.New("chat rate limit exceeded")

// wsCommand is a client request. Only the fields its type needs are read.
type wsCommand struct {
	Type        string `json:"type"`
	Prize       string `json:"prize,omitempty"`
	Struck      []int  `json:"struck,omitempty"`
	Number      int    `json:"number,omitempty"`
	Text        string `json:"text,omitempty"`
	IntervalMs  *int64 `json:"intervalMs,omitempty"`
	AutoCalling *bool  `json:"autoCalling,omitempty"`
}

// wsReply answers a command. Room events are sent as game.Event values and
// are told apart by their own type field.
type wsReply struct {
	Type     string            `json:"type"`
	Command  string            `json:"command,omitempty"`
	PlayerID string            `json:"playerId,omitempty"`
	Snapshot *game.Snapshot    `json:"snapshot,omitempty"`
	Ticket   *tambola.Ticket   `json:"ticket,omitempty"`
	Number   int               `json:"number,omitempty"`
	Claim    *game.ClaimResult `json:"claim,omitempty"`
	Status   int               `json:"status,omitempty"`
	Error    string            `json:"error,omitempty"`
}

type ChatLimit struct {
	Rate  rate.Limit
	Burst int
}

// handleWS serves a player's duplex connection to a room. ?player=
// reconnects an existing player; otherwise ?name= (with an optional
// autoStrike flag) joins a new one.
func handleWS(logger *slog.Logger, games *game.Service, broker *Broker, chat ChatLimit) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := roomID(r)
		q := r.URL.Query()

		events := broker.Subscribe(id)
		defer broker.Unsubscribe(id, events)

		player := q.Get("player")
		if player == "" {
			res, err := games.JoinRoom(id, q.Get("name"), game.JoinOptions{
				AutoStrike: q.Get("autoStrike") == "true",
			})
			if err != nil {
				writeGameError(w, logger, err)
				return
			}
			player = res.PlayerID
		}
		if err := games.Connect(id, player); err != nil {
			writeGameError(w, logger, err)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			logger.Error("websocket accept failed", "room", id, "error", err)
			_ = games.Disconnect(id, player)
			return
		}
		defer conn.CloseNow()

		sess := &wsSession{
			games:    games,
			roomID:   id,
			playerID: player,
			chat:     rate.NewLimiter(chat.Rate, chat.Burst),
			logger:   logger.With("room", id, "player", player),
		}
		if left := sess.serve(r.Context(), conn, events); !left {
			_ = games.Disconnect(id, player)
		}
	}
}

type wsSession struct {
	games    *game.Service
	roomID   string
	playerID string
	chat     *rate.Limiter
	logger   *slog.Logger
}

// serve runs the connection until either side ends it and reports whether
// the player left the room.
func (s *wsSession) serve(ctx context.Context, conn *websocket.Conn, events <-chan Message) bool {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	snap, err := s.games.Snapshot(s.roomID)
	if err != nil {
		conn.Close(websocket.StatusGoingAway, "room closed")
		return false
	}
	if err := wsjson.Write(ctx, conn, wsReply{Type: "welcome", PlayerID: s.playerID, Snapshot: &snap}); err != nil {
		s.logger.Debug("websocket write failed", "error", err)
		return false
	}

	go func() {
		defer cancel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-events:
				if err := conn.Write(ctx, websocket.MessageText, msg.Data); err != nil {
					s.logger.Debug("websocket write failed", "error", err)
					return
				}
			}
		}
	}()

	for {
		var cmd wsCommand
		if err := wsjson.Read(ctx, conn, &cmd); err != nil {
			s.logger.Debug("websocket read ended", "error", err)
			return false
		}

		reply, left := s.dispatch(cmd)
		if err := wsjson.Write(ctx, conn, reply); err != nil {
			s.logger.Debug("websocket write failed", "error", err)
			return left
		}
		if left {
			conn.Close(websocket.StatusNormalClosure, "left room")
			return true
		}
	}
}

func (s *wsSession) dispatch(cmd wsCommand) (wsReply, bool) {
	reply := wsReply{Type: "reply", Command: cmd.Type}
	var err error

	switch cmd.Type {
	case cmdTicket:
		var t tambola.Ticket
		if t, err = s.games.RequestTicket(s.roomID, s.playerID); err == nil {
			reply.Ticket = &t
		}
	case cmdStart:
		err = s.games.StartGame(s.roomID, s.playerID)
	case cmdCalling:
		err = s.games.SetCallingConfig(s.roomID, s.playerID, game.CallingUpdate{
			IntervalMs:  cmd.IntervalMs,
			AutoCalling: cmd.AutoCalling,
		})
	case cmdPause:
		err = s.games.PauseCalling(s.roomID, s.playerID)
	case cmdResume:
		err = s.games.ResumeCalling(s.roomID, s.playerID)
	case cmdDraw:
		reply.Number, err = s.games.ManualDraw(s.roomID, s.playerID)
	case cmdStop:
		err = s.games.StopGame(s.roomID, s.playerID)
	case cmdClaim:
		var res game.ClaimResult
		if res, err = s.games.ClaimPrize(s.roomID, s.playerID, cmd.Prize, cmd.Struck); err == nil {
			reply.Claim = &res
		}
	case cmdStrike:
		err = s.games.StrikeNumber(s.roomID, s.playerID, cmd.Number)
	case cmdChat:
		if !s.chat.Allow() {
			return errorReply(cmd.Type, http.StatusTooManyRequests, errChatRateLimited), false
		}
		_, err = s.games.Chat(s.roomID, s.playerID, cmd.Text)
	case cmdLeave:
		if err = s.games.LeaveRoom(s.roomID, s.playerID); err == nil {
			return reply, true
		}
	default:
		return errorReply(cmd.Type, http.StatusBadRequest, errors.New("unknown command")), false
	}

	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			s.logger.Error("websocket command failed", "command", cmd.Type, "error", err)
			err = errors.New("internal error")
		}
		return errorReply(cmd.Type, status, err), false
	}
	return reply, false
}

func errorReply(command string, status int, err error) wsReply {
	return wsReply{Type: "error", Command: command, Status: status, Error: err.Error()}
}
