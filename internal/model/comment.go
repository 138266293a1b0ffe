package model

import "time"

// Comment is a user's remark on a module. UserName is copied from the
// author's token at creation time and is not updated afterwards.
type Comment struct {
	ID          string    `json:"id"`
	ModuleID    string    `json:"moduleId"`
	UserID      string    `json:"userId"`
	UserName    string    `json:"userName"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}
