package models

// SeriesPatch is a partial update applied to every member of a series.
// Nil fields are left untouched.
type SeriesPatch struct {
	Title            *string      `json:"title,omitempty"`
	Description      *string      `json:"description,omitempty"`
	Location         *string      `json:"location,omitempty"`
	Category         *string      `json:"category,omitempty"`
	NotificationTime *int         `json:"notificationTime,omitempty"`
	Repeat           *RepeatPatch `json:"repeat,omitempty"`

	// Date is the new date of the reference occurrence. The day offset between
	// the reference's current date and Date is applied to every member.
	Date *string `json:"date,omitempty"`
	// ReferenceID names the occurrence Date refers to. When empty or unknown
	// the earliest member is the reference.
	ReferenceID string `json:"id,omitempty"`
}

type RepeatPatch struct {
	Type     *RepeatType `json:"type,omitempty"`
	Interval *int        `json:"interval,omitempty"`
	EndDate  *string     `json:"endDate,omitempty"`
}

// Validate rejects patches that would break event invariants.
func (p SeriesPatch) Validate() error {
	if p.Title != nil && *p.Title == "" {
		return &ValidationError{Field: "title", Message: "title is required"}
	}
	if p.NotificationTime != nil && *p.NotificationTime < 0 {
		return &ValidationError{Field: "notificationTime", Message: "notification time must not be negative"}
	}
	if p.Date != nil {
		if _, err := ParseDate(*p.Date); err != nil {
			return &ValidationError{Field: "date", Message: "invalid date " + *p.Date}
		}
	}
	if p.Repeat != nil {
		if p.Repeat.Type != nil && (!p.Repeat.Type.Valid() || *p.Repeat.Type == RepeatNone) {
			return &ValidationError{Field: "repeat.type", Message: "series repeat type must be daily, weekly, monthly or yearly"}
		}
		if p.Repeat.Interval != nil && *p.Repeat.Interval < 1 {
			return &ValidationError{Field: "repeat.interval", Message: "interval must be at least 1"}
		}
		if p.Repeat.EndDate != nil && *p.Repeat.EndDate != "" {
			if _, err := ParseDate(*p.Repeat.EndDate); err != nil {
				return &ValidationError{Field: "repeat.endDate", Message: "invalid end date " + *p.Repeat.EndDate}
			}
		}
	}
	return nil
}

// Offset returns the day offset the patch applies to members.
func (p SeriesPatch) Offset(members []Event) (int, error) {
	if p.Date == nil || len(members) == 0 {
		return 0, nil
	}
	ref := members[0]
	found := false
	if p.ReferenceID != "" {
		for _, m := range members {
			if m.ID == p.ReferenceID {
				ref, found = m, true
				break
			}
		}
	}
	if !found {
		for _, m := range members[1:] {
			if m.Date < ref.Date {
				ref = m
			}
		}
	}
	return DaysBetween(ref.Date, *p.Date)
}

// Apply returns copies of members with the patch applied. Every member is
// shifted by the same day offset, so relative spacing is preserved.
func (p SeriesPatch) Apply(members []Event) ([]Event, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	offset, err := p.Offset(members)
	if err != nil {
		return nil, err
	}

	out := make([]Event, len(members))
	for i, m := range members {
		if p.Title != nil {
			m.Title = *p.Title
		}
		if p.Description != nil {
			m.Description = *p.Description
		}
		if p.Location != nil {
			m.Location = *p.Location
		}
		if p.Category != nil {
			m.Category = *p.Category
		}
		if p.NotificationTime != nil {
			m.NotificationTime = *p.NotificationTime
		}
		if p.Repeat != nil {
			if p.Repeat.Type != nil {
				m.Repeat.Type = *p.Repeat.Type
			}
			if p.Repeat.Interval != nil {
				m.Repeat.Interval = *p.Repeat.Interval
			}
			if p.Repeat.EndDate != nil {
				m.Repeat.EndDate = *p.Repeat.EndDate
			}
		}
		if offset != 0 {
			shifted, err := AddDays(m.Date, offset)
			if err != nil {
				return nil, err
			}
			m.Date = shifted
		}
		out[i] = m
	}
	return out, nil
}
