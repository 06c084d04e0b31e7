package domain

// Identity is the authenticated actor resolved from a bearer token.
// It is re-derived on every request; nothing about authorization is
// persisted between requests.
type Identity struct {
	UserID      uint
	Role        string
	StoreLocked bool
	StoreID     *uint
}

// IsAdmin reports whether the identity holds the ADMIN role.
func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

// ScopedStore returns the store the identity is restricted to, or nil when
// the identity may act across all stores.
func (i Identity) ScopedStore() *uint {
	if i.StoreLocked && i.StoreID != nil {
		return i.StoreID
	}
	return nil
}

// AllowsStore is the single authorization predicate for store-scoped data:
// an unlocked identity reaches everything, a locked one only its own store.
func (i Identity) AllowsStore(storeID uint) bool {
	scope := i.ScopedStore()
	return scope == nil || *scope == storeID
}

// LoginRequest is the POST /api/auth/login body.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserProfile is the public view of a User (no password hash).
type UserProfile struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	StoreLocked bool   `json:"store_locked"`
	StoreID     *uint  `json:"store_id"`
}

// ProfileOf projects a stored user into its public view.
func ProfileOf(u *User) UserProfile {
	return UserProfile{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Role:        u.Role,
		StoreLocked: u.StoreLocked,
		StoreID:     u.StoreID,
	}
}

// LoginResponse carries the signed token and the logged-in user.
type LoginResponse struct {
	Token string      `json:"token"`
	User  UserProfile `json:"user"`
}

// CreateUserRequest is the ADMIN body for POST /api/admin/users.
type CreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	StoreID  *uint  `json:"store_id"`
}

// UpdateUserRequest is the ADMIN body for PUT /api/admin/users/{id}.
// Pointer fields distinguish "absent" from "set to zero value".
type UpdateUserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Role     *string `json:"role"`
	StoreID  *uint   `json:"store_id"`
	Password *string `json:"password"`
}
