package models

import "time"

const (
	// DefaultTaskDescription fills the description when the client omits it.
	DefaultTaskDescription = "Testing"
	MinTaskTitleLength     = 3
)

// Task is a unit of work owned by exactly one user.
type Task struct {
	ID          uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Title       string    `json:"title" gorm:"type:varchar(255);not null"`
	Description string    `json:"description" gorm:"type:varchar(255);not null;default:Testing"`
	UserID      uint      `json:"userId" gorm:"column:userId;not null;index"`
	User        *User     `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Task) TableName() string { return "tasks" }
