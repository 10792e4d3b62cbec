package scorecard

import "time"

type StrategicPerspective struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
}

type DepartmentWeight struct {
	ID                    string    `json:"id"`
	DepartmentID          string    `json:"departmentId"`
	StrategyPerspectiveID string    `json:"strategyPerspectiveId"`
	Weight                float64   `json:"weight"`
	Status                string    `json:"status"`
	CreatedAt             time.Time `json:"createdAt"`
	UpdatedAt             time.Time `json:"updatedAt"`
}

type StrategicObjective struct {
	ID                    string    `json:"id"`
	DepartmentID          string    `json:"departmentId"`
	StrategyPerspectiveID string    `json:"strategyPerspectiveId"`
	Title                 string    `json:"title"`
	Description           string    `json:"description,omitempty"`
	Status                string    `json:"status"`
	CreatedAt             time.Time `json:"createdAt"`
}

// Totals is the per-type sum of active weights for one department window.
type Totals struct {
	Quantitative float64 `json:"quantitativeTotal"`
	Qualitative  float64 `json:"qualitativeTotal"`
}

// WeightForm is the candidate create/update payload. ID is empty on
// create; on edit it is the row under edit, excluded from its own totals.
type WeightForm struct {
	ID                    string `json:"id,omitempty"`
	DepartmentID          string `json:"departmentId"`
	StrategyPerspectiveID string `json:"strategyPerspectiveId"`
	Weight                string `json:"weight"`
}

// Capacity is the live remaining headroom for a perspective-type and
// department pair, recomputed whenever either selection changes.
type Capacity struct {
	Type       string  `json:"type"`
	Ceiling    float64 `json:"ceiling"`
	Used       float64 `json:"used"`
	Remaining  float64 `json:"remaining"`
	StaleTotal bool    `json:"staleTotals,omitempty"`
}
