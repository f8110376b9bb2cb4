package models

import "time"

// DateLayout is the calendar-day format used for track dates on the wire and in storage.
const DateLayout = "2006-01-02"

// Track holds one user's health metrics for a single UTC calendar day.
// (UserID, Date) is unique.
type Track struct {
	ID              string    `gorm:"primaryKey;type:varchar(36)" bson:"_id"`
	UserID          string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_tracks_user_date,priority:1" bson:"user_id"`
	Date            string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_tracks_user_date,priority:2" bson:"date"`
	Steps           int       `gorm:"not null" bson:"steps"`
	CaloriesBurned  int       `gorm:"not null" bson:"calories_burned"`
	DistanceCovered float64   `gorm:"not null" bson:"distance_covered"`
	Weight          float64   `gorm:"not null" bson:"weight"`
	CreatedAt       time.Time `bson:"created_at"`
	UpdatedAt       time.Time `bson:"updated_at"`
}

// TrackInput is the body of PUT /tracks/:date. Omitted metrics decode as zero,
// so an upsert always replaces all four values.
type TrackInput struct {
	Steps           int     `json:"steps" validate:"gte=0"`
	CaloriesBurned  int     `json:"caloriesBurned" validate:"gte=0"`
	DistanceCovered float64 `json:"distanceCovered" validate:"gte=0"`
	Weight          float64 `json:"weight" validate:"gte=0"`
}

// TrackResponse is the canonical wire shape of a Track.
type TrackResponse struct {
	ID              string  `json:"id"`
	Date            string  `json:"date"`
	Steps           int     `json:"steps"`
	CaloriesBurned  int     `json:"calories_burned"`
	DistanceCovered float64 `json:"distance_covered"`
	Weight          float64 `json:"weight"`
}

// NewTrackResponse maps a stored Track to its wire shape.
func NewTrackResponse(t *Track) TrackResponse {
	return TrackResponse{
		ID:              t.ID,
		Date:            t.Date,
		Steps:           t.Steps,
		CaloriesBurned:  t.CaloriesBurned,
		DistanceCovered: t.DistanceCovered,
		Weight:          t.Weight,
	}
}

// NewTrackResponses maps a slice of tracks, preserving order. It never returns nil.
func NewTrackResponses(tracks []Track) []TrackResponse {
	out := make([]TrackResponse, 0, len(tracks))
	for i := range tracks {
		out = append(out, NewTrackResponse(&tracks[i]))
	}
	return out
}

// Apply copies every metric from the input, replacing existing values.
func (t *Track) Apply(in TrackInput) {
	t.Steps = in.Steps
	t.CaloriesBurned = in.CaloriesBurned
	t.DistanceCovered = in.DistanceCovered
	t.Weight = in.Weight
}

// ParseDate validates a YYYY-MM-DD string as a UTC calendar day and returns
// its normalised form.
func ParseDate(s string) (string, error) {
	d, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return "", err
	}
	return d.Format(DateLayout), nil
}

// TrackEvent is published after a track is written or removed.
type TrackEvent struct {
	Event  string    `json:"event"`
	UserID string    `json:"user_id"`
	Date   string    `json:"date"`
	At     time.Time `json:"at"`
}

// Track event names.
const (
	EventTrackUpserted = "track.upserted"
	EventTrackDeleted  = "track.deleted"
)
