package api

import (
	"encoding/json"
	"net/http"
	"slices"

	"github.com/gorilla/websocket"

	"github.com/jaeholee/decotree/internal/channel"
	"github.com/jaeholee/decotree/internal/types"
)

// decorationCatalog is the fixed set of assets a client may place.
var decorationCatalog = []string{
	"/decos/bauble.png",
	"/decos/bauble3.png",
	"/decos/bauble4.png",
	"/decos/buable2.png",
	"/decos/candy-cane.svg",
	"/decos/candy-cane2.svg",
	"/decos/christmas-bell.svg",
	"/decos/christmas-bell2.svg",
	"/decos/christmas-candle-clipart.svg",
	"/decos/christmas-candle.svg",
	"/decos/christmas-stocking2.svg",
	"/decos/christmas-stocking3.svg",
	"/decos/christmas-wreath.svg",
	"/decos/Picture1.png",
	"/decos/red-stocking.png",
}

type ChannelResponse struct {
	Id      string           `json:"id"`
	Objects []types.Object   `json:"objects"`
	Users   []types.UserInfo `json:"users"`
}

func (s *App) writeJson(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if v == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Printf("json encode: %v", err)
	}
}

// getChannel returns a point-in-time snapshot of a channel's objects
// and roster for transcript consumers.
func (s *App) getChannel(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("channel")

	ch, ok := s.controller.GetChannel(name)
	if !ok {
		errResp := NewNotFoundError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	objects, users, err := ch.Snapshot()
	if err != nil {
		s.log.Printf("snapshot of %q: %v", name, err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}
	s.writeJson(w, http.StatusOK, ChannelResponse{
		Id:      ch.Id(),
		Objects: objects,
		Users:   users,
	})
}

func (s *App) decorations(w http.ResponseWriter, _ *http.Request) {
	s.writeJson(w, http.StatusOK, decorationCatalog)
}

// serveWs upgrades the connection, binds the caller's identity to the
// named channel and runs the socket pumps until disconnect.
func (s *App) serveWs(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFrom(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	name := r.PathValue("channel")
	if name == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			// only allow connections from allowed origins
			origin := r.Header.Get("Origin")
			if origin == "" {
				// if no origin header, allow the request
				return true
			}

			return slices.Contains(s.allowedOrigins, origin)
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Println("error upgrading connection:", err)
		return
	}

	ch := s.controller.CreateChannel(name)
	client := channel.NewClient(conn, ch, types.UserInfo{
		Id:       identity.Id,
		Nickname: identity.Nickname,
	}, identity.Session, s.log)

	go client.Write()
	ch.Join(client.User())
	go client.Read()
}
