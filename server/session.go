package server

import (
	"context"
	"log"

	"github.com/alimasry/deltadoc/delta"
	"github.com/alimasry/deltadoc/ot"
	"github.com/alimasry/deltadoc/presence"
	"github.com/alimasry/deltadoc/store"
)

type opMessage struct {
	client *Client
	msg    ClientMessage
}

// Session manages collaboration for a single document.
// All operations are serialized through a single goroutine.
type Session struct {
	docID   string
	doc     *ot.Document
	engine  ot.Engine
	store   store.DocumentStore
	embeds  *delta.Registry
	presence *presence.Tracker
	clients map[*Client]bool

	incoming chan opMessage
	join     chan *Client
	leave    chan *Client
	stop     chan struct{}
}

func newSession(docID string, doc *ot.Document, engine ot.Engine, st store.DocumentStore, embeds *delta.Registry, tracker *presence.Tracker) *Session {
	return &Session{
		docID:    docID,
		doc:      doc,
		engine:   engine,
		store:    st,
		embeds:   embeds,
		presence: tracker,
		clients:  make(map[*Client]bool),
		incoming: make(chan opMessage, 64),
		join:     make(chan *Client, 16),
		leave:    make(chan *Client, 16),
		stop:     make(chan struct{}),
	}
}

// Run is the session's main loop. It serializes all operations.
func (s *Session) Run() {
	for {
		select {
		case c := <-s.join:
			s.handleJoin(c)
		case c := <-s.leave:
			s.handleLeave(c)
		case om := <-s.incoming:
			s.handleOp(om)
		case <-s.stop:
			return
		}
	}
}

func (s *Session) handleJoin(c *Client) {
	s.clients[c] = true
	c.mu.Lock()
	c.session = s
	c.mu.Unlock()

	if s.presence != nil {
		if err := s.presence.Heartbeat(context.Background(), s.docID, c.ID, c.Name); err != nil {
			log.Printf("session %s: presence heartbeat error: %v", s.docID, err)
		}
	}

	// Send current document state to the joining client.
	clients := s.clientInfos()
	c.sendMsg(ServerMessage{
		Type:     MsgDoc,
		DocID:    s.docID,
		Content:  s.doc.Content,
		Revision: s.doc.Version,
		Clients:  clients,
	})

	// Notify other clients about the new user.
	for other := range s.clients {
		if other != c {
			other.sendMsg(ServerMessage{
				Type:     MsgJoin,
				ClientID: c.ID,
				Name:     c.Name,
				Color:    c.Color,
			})
		}
	}
}

func (s *Session) handleLeave(c *Client) {
	if _, ok := s.clients[c]; !ok {
		return
	}
	delete(s.clients, c)
	c.mu.Lock()
	c.session = nil
	c.mu.Unlock()
	close(c.send)

	if s.presence != nil {
		if err := s.presence.Leave(context.Background(), s.docID, c.ID); err != nil {
			log.Printf("session %s: presence leave error: %v", s.docID, err)
		}
	}

	// Notify others.
	for other := range s.clients {
		other.sendMsg(ServerMessage{
			Type:     MsgLeave,
			ClientID: c.ID,
		})
	}
}

func (s *Session) handleOp(om opMessage) {
	// Transform the client's change against server history.
	transformed, err := s.engine.TransformIncoming(om.msg.Change, om.msg.Revision, s.doc.History, s.embeds)
	if err != nil {
		log.Printf("session %s: transform error: %v", s.docID, err)
		om.client.sendError("transform error: " + err.Error())
		return
	}

	// Apply to the document.
	if err := s.doc.Apply(transformed, s.embeds); err != nil {
		log.Printf("session %s: apply error: %v", s.docID, err)
		om.client.sendError("apply error: " + err.Error())
		return
	}

	// Persist.
	ctx := context.Background()
	s.store.UpdateContent(ctx, s.docID, s.doc.Content, s.doc.Version)
	s.store.AppendChange(ctx, s.docID, transformed, s.doc.Version)

	if s.presence != nil {
		if err := s.presence.Heartbeat(ctx, s.docID, om.client.ID, om.client.Name); err != nil {
			log.Printf("session %s: presence heartbeat error: %v", s.docID, err)
		}
	}

	// Ack the sender.
	om.client.sendMsg(ServerMessage{
		Type:     MsgAck,
		Revision: s.doc.Version,
	})

	// Broadcast to other clients.
	for c := range s.clients {
		if c != om.client {
			c.sendMsg(ServerMessage{
				Type:     MsgOp,
				DocID:    s.docID,
				Revision: s.doc.Version,
				Change:   transformed,
				ClientID: om.client.ID,
			})
		}
	}
}

func (s *Session) clientInfos() []ClientInfo {
	infos := make([]ClientInfo, 0, len(s.clients))
	for c := range s.clients {
		infos = append(infos, c.Info())
	}
	return infos
}
