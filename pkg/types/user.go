package types

// User is a registered platform account.
type User struct {
	Base
	Nickname     string  `json:"nickname" validate:"required,max=64"`
	Phone        string  `json:"phone" validate:"omitempty,max=32"`
	Level        int     `json:"level" validate:"gte=0"`
	IsAnchor     bool    `json:"is_anchor"`
	Balance      float64 `json:"balance" validate:"gte=0"`
	RegisteredAt string  `json:"registered_at"` // ISO-8601 date or date-time.
}

// Room is a live-streaming room hosted by an anchor.
type Room struct {
	Base
	Title     string `json:"title" validate:"required,max=128"`
	AnchorID  string `json:"anchor_id" validate:"required"`
	Category  string `json:"category"`
	Online    int    `json:"online" validate:"gte=0"`
	StartedAt string `json:"started_at"`
}

// Gift is a virtual gift viewers can send in a room.
type Gift struct {
	Base
	Name    string  `json:"name" validate:"required,max=64"`
	Price   float64 `json:"price" validate:"gte=0"`
	Effect  string  `json:"effect"`
	IconURL string  `json:"icon_url" validate:"omitempty,url"`
}
