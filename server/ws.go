package server

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message is one websocket frame in either direction.
type Message struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// handleWebSocket streams query answers over a websocket connection.
// Each inbound message is treated as a question; the answer arrives as
// a sequence of "stream" frames terminated by a "done" frame.
func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("error reading websocket message: %v", err)
			}
			return
		}

		s.handleWSMessage(c, conn, msg)
	}
}

func (s *Server) handleWSMessage(c *gin.Context, conn *websocket.Conn, msg Message) {
	if msg.Content == "" {
		sendMessage(conn, "error", "empty message")
		return
	}

	err := s.service.QueryStream(c.Request.Context(), msg.Content, func(chunk string) error {
		return conn.WriteJSON(Message{Type: "stream", Content: chunk})
	})
	if err != nil {
		sendMessage(conn, "error", err.Error())
		return
	}
	sendMessage(conn, "done", "")
}

func sendMessage(conn *websocket.Conn, msgType, content string) {
	if err := conn.WriteJSON(Message{Type: msgType, Content: content}); err != nil {
		log.Printf("error sending websocket message: %v", err)
	}
}
