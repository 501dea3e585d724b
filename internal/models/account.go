package models

import "time"

type Account struct {
	ID           string        `db:"id" json:"id"`
	Username     string        `db:"username" json:"username"`
	PasswordHash string        `db:"password_hash" json:"-"`
	Balance      int64         `db:"balance" json:"balance"`
	Status       AccountStatus `db:"status" json:"status"`
	Role         string        `db:"role" json:"role"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
}

type AccountStatus string

const (
	AccountActive AccountStatus = "active"
	AccountLocked AccountStatus = "locked"
)

const RoleUser = "user"

func (a *Account) IsLocked() bool {
	return a.Status == AccountLocked
}
