package models

type LoginSuccessResponse struct {
	Message string `json:"message" example:"Login successful"`
	Token   string `json:"token" example:"v2.local.Ft9QcxZhJXEYyb7-bMM..."`
	AdminID string `json:"admin_id" example:"507f1f77bcf86cd799439011"`
	Role    string `json:"role" example:"super_admin"`
}

type ErrorResponse struct {
	Error   string `json:"error" example:"Invalid request body"`
	Details string `json:"details,omitempty" example:"validation failed"`
}

type UnauthorizedErrorResponse struct {
	Error string `json:"error" example:"Invalid or missing token"`
}

type ForbiddenErrorResponse struct {
	Error string `json:"error" example:"Admin access required"`
}

type TimeStatusResponse struct {
	ServerTime string `json:"server_time" example:"2024-06-01T08:00:00Z"`
	OffsetMS   int64  `json:"offset_ms" example:"-42"`
	Synced     bool   `json:"synced" example:"true"`
	Degraded   bool   `json:"degraded" example:"false"`
	LastSource string `json:"last_source,omitempty" example:"time.google.com"`
}

type SyncStatusResponse struct {
	Connected bool           `json:"connected" example:"true"`
	Tables    map[string]int `json:"tables"`
}
