package request

import (
	"regexp"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/workhub/orders-api/internal/domain"
)

const birthDateLayout = "2006-01-02"

var (
	phoneRegexp = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)

	// Italian codice fiscale, 16 characters. Omocodia replaces digits with
	// the letters L-V, so digit positions accept both.
	fiscalCodeRegexp = regexp2.MustCompile(
		`^(?=.{16}$)[A-Z]{6}[0-9LMNP-V]{2}[A-EHLMPR-T][0-9LMNP-V]{2}[A-Z][0-9LMNP-V]{3}[A-Z]$`,
		regexp2.IgnoreCase,
	)
)

type LocationRequest struct {
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`
	Country string `json:"country"`
}

func (l LocationRequest) Validate() error {
	return validation.ValidateStruct(
		&l,
		validation.Field(&l.Address, validation.Required, validation.Length(2, 200)),
		validation.Field(&l.City, validation.Required, validation.Length(2, 100)),
		validation.Field(&l.State, validation.Required, validation.Length(2, 100)),
		validation.Field(&l.ZipCode, validation.Required, validation.Length(3, 10)),
		validation.Field(&l.Country, validation.Required, validation.Length(2, 100)),
	)
}

func (l LocationRequest) ToDomain() domain.Location {
	return domain.Location{
		Address: l.Address,
		City:    l.City,
		State:   l.State,
		ZipCode: l.ZipCode,
		Country: l.Country,
	}
}

type RegisterCustomerRequest struct {
	Email         string          `json:"email"`
	FirstName     string          `json:"first_name"`
	LastName      string          `json:"last_name"`
	FiscalCode    string          `json:"fiscal_code"`
	PhoneNumber   string          `json:"phone_number"`
	BirthDate     string          `json:"birth_date" format:"YYYY-MM-DD"`
	Location      LocationRequest `json:"location"`
	AffiliateTier string          `json:"affiliate_tier" enums:"standard,premium,none"`
}

func (req *RegisterCustomerRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.Email, validation.Required, is.Email),
		validation.Field(&req.FirstName, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.LastName, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.FiscalCode, validation.Required, matchRegexp2(fiscalCodeRegexp, "must be a valid fiscal code")),
		validation.Field(&req.PhoneNumber, validation.Required, validation.Match(phoneRegexp)),
		validation.Field(&req.BirthDate, validation.Required, validation.Date(birthDateLayout)),
		validation.Field(&req.Location),
		validation.Field(&req.AffiliateTier, validation.In("standard", "premium", "none")),
	)

	return collect(err)
}

func (req *RegisterCustomerRequest) ToDomain() domain.Client {
	birthDate, _ := time.Parse(birthDateLayout, req.BirthDate)

	return domain.Client{
		Email:       strings.ToLower(req.Email),
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		FiscalCode:  strings.ToUpper(req.FiscalCode),
		PhoneNumber: req.PhoneNumber,
		BirthDate:   birthDate,
		Location:    req.Location.ToDomain(),
	}
}

type UpdateCustomerRequest struct {
	Email       *string          `json:"email"`
	FirstName   *string          `json:"first_name"`
	LastName    *string          `json:"last_name"`
	FiscalCode  *string          `json:"fiscal_code"`
	PhoneNumber *string          `json:"phone_number"`
	BirthDate   *string          `json:"birth_date" format:"YYYY-MM-DD"`
	Location    *LocationRequest `json:"location"`
}

func (req *UpdateCustomerRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.Email, is.Email),
		validation.Field(&req.FirstName, validation.Length(1, 100)),
		validation.Field(&req.LastName, validation.Length(1, 100)),
		validation.Field(&req.FiscalCode, matchRegexp2(fiscalCodeRegexp, "must be a valid fiscal code")),
		validation.Field(&req.PhoneNumber, validation.Match(phoneRegexp)),
		validation.Field(&req.BirthDate, validation.Date(birthDateLayout)),
		validation.Field(&req.Location),
	)

	return collect(err)
}

func (req *UpdateCustomerRequest) ToDomain() domain.ClientUpdate {
	u := domain.ClientUpdate{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
	}
	if req.Email != nil {
		email := strings.ToLower(*req.Email)
		u.Email = &email
	}
	if req.FiscalCode != nil {
		code := strings.ToUpper(*req.FiscalCode)
		u.FiscalCode = &code
	}
	if req.BirthDate != nil {
		if birthDate, err := time.Parse(birthDateLayout, *req.BirthDate); err == nil {
			u.BirthDate = &birthDate
		}
	}
	if req.Location != nil {
		location := req.Location.ToDomain()
		u.Location = &location
	}

	return u
}
