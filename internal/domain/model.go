package domain

import "time"

// Core models used internally and on the wire. The HTTP adapter serializes
// these directly; keep field tags stable.

// ThreatLevel is the classification bucket for an assessment.
type ThreatLevel string

const (
	LevelSafe       ThreatLevel = "SAFE"
	LevelSuspicious ThreatLevel = "SUSPICIOUS"
	LevelHighRisk   ThreatLevel = "HIGH_RISK"
	// LevelUnknown is returned when the scoring engine could not produce a
	// meaningful assessment. It never comes from the rule tables themselves.
	LevelUnknown ThreatLevel = "UNKNOWN"
)

// GeoAttributes holds the enrichment data for a resolved IP. Any string field
// may be "Unknown" when the upstream service omitted it. Lat/Lon are pointers
// because 0,0 is a valid coordinate; nil means absent.
type GeoAttributes struct {
	Country string   `json:"country"`
	Region  string   `json:"region"`
	City    string   `json:"city"`
	Lat     *float64 `json:"lat,omitempty"`
	Lon     *float64 `json:"lon,omitempty"`
	ISP     string   `json:"isp"`
	Org     string   `json:"org"`
	ASN     string   `json:"as"`
}

// Unknown is the sentinel for geo string fields the upstream omitted.
const Unknown = "Unknown"

// ThreatAssessment is the scoring engine's output. Immutable once built.
// Reasons preserve rule evaluation order and are never empty.
type ThreatAssessment struct {
	Level   ThreatLevel `json:"threat_level"`
	Score   int         `json:"threat_score"`
	Reasons []string    `json:"threat_reasons"`
}

// AnalysisResult is one completed pipeline run, handed to the history store
// for persistence and returned to the caller.
type AnalysisResult struct {
	Domain    string           `json:"domain"`
	IP        string           `json:"ip"`
	Geo       GeoAttributes    `json:"geo"`
	Threat    ThreatAssessment `json:"threat"`
	CreatedAt time.Time        `json:"created_at"`
}

// HistoryRecord is the persisted form of an AnalysisResult. ID is assigned by
// the store and increases monotonically with insertion order.
type HistoryRecord struct {
	ID int64 `json:"id"`
	AnalysisResult
}
