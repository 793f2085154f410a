package domain

import "time"

// ImportRun is the stored result of one CSV discount upload. When the client
// supplies an Idempotency-Key, (user_id, key) is unique and a retry within
// ExpiresAt replays the stored report instead of importing again.
type ImportRun struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	UserID    string    `json:"user_id"    gorm:"type:varchar(64);not null;uniqueIndex:ux_import_user_key,priority:1"`
	Key       *string   `json:"-"          gorm:"type:varchar(200);uniqueIndex:ux_import_user_key,priority:2"`
	Filename  string    `json:"filename"   gorm:"type:varchar(255);not null"`
	Delimiter string    `json:"delimiter"  gorm:"type:varchar(8);not null"`
	Total     int       `json:"total"      gorm:"not null"`
	OK        int       `json:"ok"         gorm:"column:ok_count;not null"`
	Skipped   int       `json:"skipped"    gorm:"not null"`
	Failed    int       `json:"failed"     gorm:"not null"`
	Outcomes  string    `json:"-"          gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;autoCreateTime"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null;index"`
}

// TableName implements the GORM tabler interface.
func (ImportRun) TableName() string { return "import_runs" }
