package announce

import "time"

type Announcement struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Date    string `json:"date"` // YYYY-MM-DD
}

// NewAnnouncement carries an announcement submission. The list is
// append-only: announcements are broadcast, never edited or recalled.
type NewAnnouncement struct {
	Title   string `json:"title" validate:"required"`
	Message string `json:"message" validate:"required"`
}

// Announcement builds the broadcast record, stamped with today's date.
func (na NewAnnouncement) Announcement(id string, now time.Time) Announcement {
	return Announcement{
		ID:      id,
		Title:   na.Title,
		Message: na.Message,
		Date:    now.Format("2006-01-02"),
	}
}

// Append adds a new announcement at the head so the latest broadcast lists first.
func Append(list []Announcement, a Announcement) []Announcement {
	return append([]Announcement{a}, list...)
}
