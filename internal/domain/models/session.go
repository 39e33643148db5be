package models

import "time"

// Session is the persisted login state of a terminal: the bearer token issued
// by the remote auth service plus the role and display name that came with
// it. Cleared on logout.
type Session struct {
	Token     string    `bson:"_id" json:"token"`
	Role      Role      `bson:"role" json:"role"`
	Name      string    `bson:"name" json:"name"`
	Email     string    `bson:"email" json:"email"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}
