// Package domain holds the entities and value types of the loyalty program.
package domain

import "time"

// Roles a user can hold. ADMIN manages users and sees every store;
// MANAGER and ATTENDANT are normally locked to a single store.
const (
	RoleAdmin     = "ADMIN"
	RoleManager   = "MANAGER"
	RoleAttendant = "ATTENDANT"
)

// Store is a physical shop of the chain. GoalThreshold is the number of
// visits a client needs before a gift can be redeemed at that store.
type Store struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	Name          string `gorm:"type:varchar(120);uniqueIndex;not null" json:"name"`
	GoalThreshold int    `gorm:"not null;default:10" json:"goal_threshold"`
}

func (Store) TableName() string { return "stores" }

// User is a system operator. StoreID nil means the user may act across all
// stores, which is only allowed when StoreLocked is false.
type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Name         string `gorm:"type:varchar(120);not null" json:"name"`
	Email        string `gorm:"type:varchar(120);uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"type:varchar(255);not null" json:"-"`
	Role         string `gorm:"type:varchar(20);not null;default:ATTENDANT" json:"role"`
	StoreLocked  bool   `gorm:"not null;default:true" json:"store_locked"`
	StoreID      *uint  `json:"store_id"`
}

func (User) TableName() string { return "users" }

// Client is a loyalty-program member. CPF is optional but unique when set.
// StoreID is the store where the client was first registered.
type Client struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Name      string     `gorm:"type:varchar(120);not null" json:"name"`
	CPF       *string    `gorm:"column:cpf;type:varchar(20);uniqueIndex" json:"cpf"`
	Phone     string     `gorm:"type:varchar(30)" json:"phone"`
	Email     *string    `gorm:"type:varchar(255)" json:"email"`
	Birthday  *time.Time `gorm:"type:date" json:"birthday"`
	StoreID   *uint      `json:"store_id"`
	CreatedAt time.Time  `json:"created_at"`
}

func (Client) TableName() string { return "clients" }

// Visit is one recorded visit. Rows are never updated; they are deleted in
// bulk when a redemption resets the client's progress. The client's current
// visit count is always the number of these rows, never a stored counter.
type Visit struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ClientID  uint      `gorm:"not null;index" json:"client_id"`
	StoreID   *uint     `json:"store_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (Visit) TableName() string { return "visits" }

// Redemption records a gift hand-over. Immutable, never deleted.
type Redemption struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ClientID  uint      `gorm:"not null;index" json:"client_id"`
	StoreID   *uint     `json:"store_id"`
	GiftName  string    `gorm:"type:varchar(120);not null" json:"gift_name"`
	CreatedAt time.Time `json:"created_at"`
}

func (Redemption) TableName() string { return "redemptions" }

// AllModels lists every entity for migration, in dependency order.
func AllModels() []any {
	return []any{&Store{}, &User{}, &Client{}, &Visit{}, &Redemption{}}
}
