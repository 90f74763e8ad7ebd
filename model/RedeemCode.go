package model

import "time"

type RedeemCode struct {
	Username   string     `json:"username"`
	Code       string     `json:"redeem_code"`
	Consumed   bool       `json:"consumed"`
	IssuedAt   time.Time  `json:"issued_at"`
	ConsumedAt *time.Time `json:"consumed_at,omitempty"`
}
