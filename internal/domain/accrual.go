package domain

import "time"

const (
	SkipNotMember      = "no_affiliate_program"
	SkipProgramMissing = "affiliate_program_missing"
)

// ClientAccrual is the outcome of point accrual and tier promotion for one
// client of a freshly created order.
type ClientAccrual struct {
	ClientID uint   `json:"client_id"`
	Tier     Tier   `json:"tier,omitempty"`
	Points   int    `json:"points"`
	Promoted bool   `json:"promoted"`
	Skipped  string `json:"skipped,omitempty"`
	Err      error  `json:"-"`
	Error    string `json:"error,omitempty"`
}

func (a ClientAccrual) Failed() bool {
	return a.Err != nil
}

type CreateOrderResult struct {
	Order    Order           `json:"order"`
	Accruals []ClientAccrual `json:"accruals"`
}

func (r CreateOrderResult) Failures() []ClientAccrual {
	var failed []ClientAccrual
	for _, a := range r.Accruals {
		if a.Failed() {
			failed = append(failed, a)
		}
	}
	return failed
}

// AllocationSummary is an allocation enriched with live loyalty figures.
type AllocationSummary struct {
	ClientID     uint    `json:"client_id"`
	Client       *Client `json:"client,omitempty"`
	Quantity     int     `json:"quantity"`
	PointsEarned int     `json:"points_earned"`
	TotalPoints  int     `json:"total_points"`
	TotalOrders  int64   `json:"total_orders"`
}

type OrderSummary struct {
	ID            uint                `json:"id"`
	PointOfSales  *PointOfSales       `json:"point_of_sales"`
	Product       *Product            `json:"product"`
	TotalQuantity int                 `json:"total_quantity"`
	Clients       []AllocationSummary `json:"clients"`
	Status        OrderStatus         `json:"status"`
	Courier       string              `json:"courier"`
	Note          string              `json:"note"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}
