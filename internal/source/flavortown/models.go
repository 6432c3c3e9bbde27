package flavortown

// API response shapes. Validated and coerced into domain types at the
// boundary; nothing downstream touches raw JSON.
type projectResponse struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	ShipStatus  string  `json:"ship_status"`
	DevlogIDs   []int64 `json:"devlog_ids"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

type devlogResponse struct {
	ID              int64  `json:"id"`
	Body            string `json:"body"`
	DurationSeconds int    `json:"duration_seconds"`
	LikesCount      int    `json:"likes_count"`
	CommentsCount   int    `json:"comments_count"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
}
