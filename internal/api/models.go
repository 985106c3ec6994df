package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// ID is a timeline item identifier. Ids increase monotonically, so a
// larger id is a newer item. The server sends them as strings.
type ID uint64

func ParseID(s string) (ID, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return ID(n), nil
}

func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if 0 < len(b) && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		parsed, err := ParseID(s)
		if err != nil {
			return err
		}
		*id = parsed
		return nil
	}
	var n uint64
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid id %s", b)
	}
	*id = ID(n)
	return nil
}

// Cursor is the exclusive upper bound of a backward page. The zero Cursor
// asks for the newest page.
type Cursor struct {
	before ID
	set    bool
}

func Newest() Cursor {
	return Cursor{}
}

func Before(id ID) Cursor {
	return Cursor{before: id, set: true}
}

// Before returns the bound and whether there is one.
func (c Cursor) Before() (ID, bool) {
	return c.before, c.set
}

func (c Cursor) IsNewest() bool {
	return !c.set
}

// String is the query form; the server reads 0 as "from the newest".
func (c Cursor) String() string {
	if !c.set {
		return "0"
	}
	return c.before.String()
}

type User struct {
	ID        string  `json:"id,omitempty"`
	Username  string  `json:"username"`
	AvatarURL *string `json:"avatarURL"`
}

type UserProfile struct {
	ID             string  `json:"id,omitempty"`
	Email          string  `json:"email,omitempty"`
	Username       string  `json:"username"`
	AvatarURL      *string `json:"avatarURL"`
	FollowersCount int     `json:"followersCount"`
	FolloweesCount int     `json:"followeesCount"`
	Me             bool    `json:"me"`
	Following      bool    `json:"following"`
	Followeed      bool    `json:"followeed"`
}

type Post struct {
	ID            string    `json:"id"`
	Content       string    `json:"content"`
	SpoilerOf     *string   `json:"spoilerOf"`
	NSFW          bool      `json:"NSFW"`
	LikesCount    int       `json:"likesCount"`
	CommentsCount int       `json:"commentsCount"`
	CreatedAt     time.Time `json:"createdAt"`
	User          *User     `json:"user,omitempty"`
	Mine          bool      `json:"mine"`
	Liked         bool      `json:"liked"`
	Subscribed    bool      `json:"subscribed"`
}

type TimelineItem struct {
	ID   ID    `json:"id"`
	Post *Post `json:"post,omitempty"`
}

type Comment struct {
	ID         string    `json:"id"`
	Content    string    `json:"content"`
	LikesCount int       `json:"likesCount"`
	CreatedAt  time.Time `json:"createdAt"`
	User       *User     `json:"user,omitempty"`
	Mine       bool      `json:"mine"`
	Liked      bool      `json:"liked"`
}

type AuthOutput struct {
	User      User      `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type ToggleFollowOutput struct {
	Following      bool `json:"following"`
	FollowersCount int  `json:"followersCount"`
}
