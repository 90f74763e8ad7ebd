package model

type Prize struct {
	Id     string  `json:"id"`
	Label  string  `json:"label" validate:"required,min=1,max=100"`
	Color  string  `json:"color" validate:"required,max=32"`
	Image  string  `json:"image,omitempty" validate:"max=255"`
	Weight float64 `json:"weight" validate:"gte=0"`
}

// DefaultPrizes is the pool seeded on first startup when no prizes exist.
var DefaultPrizes = []Prize{
	{Label: "1000 Points", Color: "#8B5CF6", Weight: 5},
	{Label: "500 Points", Color: "#F472B6", Weight: 10},
	{Label: "250 Points", Color: "#06B6D4", Weight: 15},
	{Label: "100 Points", Color: "#10B981", Weight: 20},
	{Label: "75 Points", Color: "#F59E0B", Weight: 15},
	{Label: "50 Points", Color: "#EF4444", Weight: 15},
	{Label: "25 Points", Color: "#3B82F6", Weight: 10},
	{Label: "10 Points", Color: "#EC4899", Weight: 10},
}
