package storage

import (
	"context"
	"time"
)

// Snapshot is one stored defect forecast for a named project. The dashboard
// re-fetches the latest snapshot per project without re-posting the
// prediction inputs.
type Snapshot struct {
	Project        string    `json:"project"`
	Size           float64   `json:"size"`
	DurationMonths float64   `json:"durationMonths"`
	GeneratedAt    time.Time `json:"generatedAt"`

	// TotalDefects is the estimated total defect count for the project.
	TotalDefects int `json:"totalDefects"`

	// Distribution holds the expected defects per month; Months holds the
	// matching 1-based month numbers. Equal lengths, floor(duration*1.5).
	Distribution []float64 `json:"distribution"`
	Months       []int     `json:"months"`
}

// Store persists the latest forecast snapshot per project.
type Store interface {
	Put(ctx context.Context, snapshot Snapshot) error
	GetLatest(ctx context.Context, project string) (Snapshot, bool, error)
}
