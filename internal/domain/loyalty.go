package domain

import "time"

// ClientCard is the compact client view embedded in a VisitOutcome.
type ClientCard struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	CPF   string `json:"cpf"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// VisitOutcome is the result of registering one visit: the derived count,
// the goal it is measured against, and the WhatsApp handoff link.
type VisitOutcome struct {
	VisitID       uint       `json:"visit_id"`
	VisitsCount   int64      `json:"visits_count"`
	GoalThreshold int        `json:"goal_threshold"`
	Eligible      bool       `json:"eligible"`
	Remaining     int64      `json:"remaining"`
	StoreID       *uint      `json:"store_id"`
	Client        ClientCard `json:"client"`
	WhatsAppURL   string     `json:"whatsapp_url,omitempty"`
}

// RedemptionOutcome is the result of a successful gift redemption.
type RedemptionOutcome struct {
	RedemptionID uint      `json:"redemption_id"`
	GiftName     string    `json:"gift_name"`
	When         time.Time `json:"when"`
	StoreID      *uint     `json:"store_id"`
}

// ClientSummary is the list/detail view of a client with the birthday
// rendered as an ISO date.
type ClientSummary struct {
	ID       uint    `json:"id"`
	Name     string  `json:"name"`
	CPF      string  `json:"cpf"`
	Phone    string  `json:"phone"`
	Email    *string `json:"email"`
	Birthday *string `json:"birthday"`
	StoreID  *uint   `json:"store_id"`
}

// SummaryOf projects a client row into its API view.
func SummaryOf(c *Client) ClientSummary {
	s := ClientSummary{
		ID:      c.ID,
		Name:    c.Name,
		Phone:   c.Phone,
		Email:   c.Email,
		StoreID: c.StoreID,
	}
	if c.CPF != nil {
		s.CPF = *c.CPF
	}
	if c.Birthday != nil {
		b := c.Birthday.Format("2006-01-02")
		s.Birthday = &b
	}
	return s
}

// ClientPage is a paginated client listing.
type ClientPage struct {
	Total int64           `json:"total"`
	Items []ClientSummary `json:"items"`
}

// ClientQuery narrows a client listing. A non-empty CPF bypasses the store
// scope (exact lookups are allowed across stores).
type ClientQuery struct {
	CPF        string
	StoreScope *uint
	Page       int
	PerPage    int
}

// CreateClientRequest is the POST /api/clientes body.
type CreateClientRequest struct {
	Name     string `json:"name"`
	CPF      string `json:"cpf"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Birthday string `json:"birthday"`
	StoreID  *uint  `json:"store_id"`
}

// KPIs are the dashboard counters, store-scoped for locked users.
type KPIs struct {
	Visits30d      int64 `json:"visits_30d"`
	ClientsTotal   int64 `json:"clients_total"`
	Redemptions30d int64 `json:"redemptions_30d"`
}

// BirthdayClient is one entry of the birthday-month listing.
type BirthdayClient struct {
	ID       uint    `json:"id"`
	Name     string  `json:"name"`
	CPF      string  `json:"cpf"`
	Birthday *string `json:"birthday"`
}

// SeedResult reports what the idempotent setup seed left in place.
type SeedResult struct {
	OK         bool   `json:"ok"`
	AdminLogin string `json:"admin_login"`
	Password   string `json:"password"`
}
