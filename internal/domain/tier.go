package domain

import (
	"strings"
	"time"
)

// Tier is the loyalty level of an affiliate program.
type Tier string

const (
	TierStandard Tier = "standard"
	TierPremium  Tier = "premium"
)

// Tiers lists every known tier, lowest first.
var Tiers = []Tier{TierStandard, TierPremium}

// ParseTier matches name case-insensitively. Unknown names return TierStandard and false.
func ParseTier(name string) (Tier, bool) {
	switch Tier(strings.ToLower(strings.TrimSpace(name))) {
	case TierStandard:
		return TierStandard, true
	case TierPremium:
		return TierPremium, true
	default:
		return TierStandard, false
	}
}

func (t Tier) Valid() bool {
	return t == TierStandard || t == TierPremium
}

func (t Tier) String() string {
	return string(t)
}

// AffiliateTier is a configured tier definition. Promotion only targets tiers that exist.
type AffiliateTier struct {
	ID          uint      `json:"id"`
	Name        Tier      `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type AffiliateProgram struct {
	ID         uint      `json:"id"`
	ClientID   uint      `json:"client_id"`
	Tier       Tier      `json:"tier"`
	Points     int       `json:"points"`
	CardNumber string    `json:"card_number"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
