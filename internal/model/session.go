package model

import "time"

// ChatSession is the server-side state of one conversation
type ChatSession struct {
	ID         string
	Messages   []Message
	Collected  VehicleAttributes
	DarkMode   bool
	Processing bool // a turn is in flight
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Clone returns a copy that shares no slices with s
func (s *ChatSession) Clone() *ChatSession {
	c := *s
	c.Messages = append([]Message(nil), s.Messages...)
	return &c
}
