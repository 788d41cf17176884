package domain

import "time"

type Location struct {
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`
	Country string `json:"country"`
}

type Client struct {
	ID               uint              `json:"id"`
	Email            string            `json:"email"`
	FirstName        string            `json:"first_name"`
	LastName         string            `json:"last_name"`
	FiscalCode       string            `json:"fiscal_code"`
	PhoneNumber      string            `json:"phone_number"`
	BirthDate        time.Time         `json:"birth_date"`
	Location         Location          `json:"location"`
	AffiliateProgram *AffiliateProgram `json:"affiliate_program"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

func (c Client) FullName() string {
	return c.FirstName + " " + c.LastName
}

// IsMember reports whether the client is enrolled in the affiliate program.
func (c Client) IsMember() bool {
	return c.AffiliateProgram != nil
}

// ClientOrder is one order seen from a single customer's side.
type ClientOrder struct {
	OrderID      uint          `json:"order_id"`
	PointOfSales *PointOfSales `json:"point_of_sales"`
	Product      *Product      `json:"product"`
	Quantity     int           `json:"quantity"`
	Status       OrderStatus   `json:"status"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

type ClientDetail struct {
	Client
	Orders []ClientOrder `json:"orders"`
}

// ClientUpdate carries a partial update of contact and address fields; nil
// fields are left untouched.
type ClientUpdate struct {
	Email       *string
	FirstName   *string
	LastName    *string
	FiscalCode  *string
	PhoneNumber *string
	BirthDate   *time.Time
	Location    *Location
}

func (u ClientUpdate) Apply(c Client) Client {
	if u.Email != nil {
		c.Email = *u.Email
	}
	if u.FirstName != nil {
		c.FirstName = *u.FirstName
	}
	if u.LastName != nil {
		c.LastName = *u.LastName
	}
	if u.FiscalCode != nil {
		c.FiscalCode = *u.FiscalCode
	}
	if u.PhoneNumber != nil {
		c.PhoneNumber = *u.PhoneNumber
	}
	if u.BirthDate != nil {
		c.BirthDate = *u.BirthDate
	}
	if u.Location != nil {
		c.Location = *u.Location
	}

	return c
}
