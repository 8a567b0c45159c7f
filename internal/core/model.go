package core

import "time"

// Store is a tenant: one physical shop in the chain. Every back-office record
// is scoped to a store.
type Store struct {
	ID        int       `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	City      string    `json:"city"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

type Role string

const (
	RoleAdmin   Role = "admin"   // sees every store
	RoleManager Role = "manager" // full access within their store
	RoleClerk   Role = "clerk"   // day-to-day operations within their store
)

type User struct {
	ID           int       `json:"id"`
	StoreID      int       `json:"store_id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}
