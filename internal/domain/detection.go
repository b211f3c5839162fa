package domain

import (
	"time"

	"github.com/google/uuid"
)

// Detection is a single ML inference result for an uploaded image.
// Produced by the ml-worker; this service only reads them.
type Detection struct {
	ID               uuid.UUID              `json:"id"`
	ImageID          uuid.UUID              `json:"image_id"`
	ModelVersion     string                 `json:"model_version"`
	ConfidenceScore  float64                `json:"confidence_score"`
	IsAnomaly        bool                   `json:"is_anomaly"`
	AnomalyType      *string                `json:"anomaly_type,omitempty"`
	BoundingBox      map[string]interface{} `json:"bounding_box,omitempty"`
	ProcessingTimeMs *int                   `json:"processing_time_ms,omitempty"`
	DetectedAt       time.Time              `json:"detected_at"`
}
