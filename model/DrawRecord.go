package model

import "time"

// DrawRecord is one line of the draw ledger. Records are append-only and
// read newest first.
type DrawRecord struct {
	Username   string    `json:"username"`
	PrizeLabel string    `json:"prize_label"`
	PrizeColor string    `json:"prize_color"`
	PrizeImage string    `json:"prize_image,omitempty"`
	DrawnAt    time.Time `json:"drawn_at"`
}
