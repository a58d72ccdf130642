package model

import "time"

type Tag struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// EventSummary 活動列表項目
type EventSummary struct {
	ID                   int        `json:"id"`
	Title                string     `json:"title"`
	Description          *string    `json:"description,omitempty"`
	Category             *string    `json:"category,omitempty"`
	Location             *string    `json:"location,omitempty"`
	StartTime            time.Time  `json:"start_time"`
	EndTime              *time.Time `json:"end_time,omitempty"`
	OwnerID              int        `json:"owner_id"`
	OwnerName            *string    `json:"owner_name,omitempty"`
	CoverURL             *string    `json:"cover_url"`
	Tags                 []Tag      `json:"tags"`
	SeatsTaken           int        `json:"seats_taken"`
	MaxSeats             *int       `json:"max_seats,omitempty"`
	RecommendationReason *string    `json:"recommendation_reason,omitempty"`
}

// TagNames 依原順序回傳標籤名稱
func (e *EventSummary) TagNames() []string {
	names := make([]string, 0, len(e.Tags))
	for _, t := range e.Tags {
		names = append(names, t.Name)
	}
	return names
}

// EventDetail 活動詳情，AvailableSeats 由伺服器計算，不限名額時為 nil
type EventDetail struct {
	EventSummary
	IsRegistered   bool `json:"is_registered"`
	IsOwner        bool `json:"is_owner"`
	AvailableSeats *int `json:"available_seats,omitempty"`
}

// Clone 深拷貝，避免共用指標欄位
func (d EventDetail) Clone() EventDetail {
	out := d
	if d.AvailableSeats != nil {
		v := *d.AvailableSeats
		out.AvailableSeats = &v
	}
	if d.MaxSeats != nil {
		v := *d.MaxSeats
		out.MaxSeats = &v
	}
	if d.Tags != nil {
		out.Tags = append([]Tag(nil), d.Tags...)
	}
	return out
}

type PaginatedEvents struct {
	Items    []EventSummary `json:"items"`
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

type Participant struct {
	ID               int       `json:"id"`
	Email            string    `json:"email"`
	FullName         *string   `json:"full_name,omitempty"`
	RegistrationTime time.Time `json:"registration_time"`
	Attended         *bool     `json:"attended,omitempty"`
}

type ParticipantList struct {
	EventID      int           `json:"event_id"`
	Title        string        `json:"title"`
	CoverURL     *string       `json:"cover_url,omitempty"`
	SeatsTaken   int           `json:"seats_taken"`
	MaxSeats     *int          `json:"max_seats,omitempty"`
	Participants []Participant `json:"participants"`
}
