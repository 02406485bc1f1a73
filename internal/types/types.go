package types

import (
	"time"
)

// Position is a point on the shared canvas.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Object is a decoration placed on a channel's canvas. Objects are
// immutable once pushed; they only disappear through eviction.
type Object struct {
	Id        string    `json:"id"`
	Url       string    `json:"url"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	Position  Position  `json:"position"`
}

// UserInfo is the externally visible identity of a participant.
type UserInfo struct {
	Id       string `json:"id"`
	Nickname string `json:"nickname"`
}
