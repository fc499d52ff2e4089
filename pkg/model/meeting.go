package model

import "time"

// MeetingType mirrors Zoom's numeric meeting type.
type MeetingType int

const (
	MeetingTypeInstant          MeetingType = 1
	MeetingTypeScheduled        MeetingType = 2
	MeetingTypeRecurringNoFixed MeetingType = 3
	MeetingTypeRecurringFixed   MeetingType = 8
)

// MeetingListType filters the meetings list endpoint.
type MeetingListType string

const (
	MeetingListScheduled MeetingListType = "scheduled"
	MeetingListLive      MeetingListType = "live"
	MeetingListUpcoming  MeetingListType = "upcoming"
	MeetingListPrevious  MeetingListType = "previous_meetings"
)

// MeetingSettings holds the fields of a meeting the host may edit. It is the body of
// create and update requests.
type MeetingSettings struct {
	Topic     string          `zoom:"required"`
	Type      MeetingType     `json:",omitempty"`
	Agenda    string          `json:",omitempty"`
	StartTime *time.Time      `json:",omitempty"`
	Duration  int             `json:",omitempty"`
	Timezone  string          `json:",omitempty"`
	Password  string          `json:",omitempty"`
	Settings  *MeetingOptions `json:",omitempty"`
}

// MeetingOptions are the in-meeting toggles nested under "settings".
type MeetingOptions struct {
	HostVideo        bool
	ParticipantVideo bool
	JoinBeforeHost   bool
	MuteUponEntry    bool
	WaitingRoom      bool
	AutoRecording    string `json:",omitempty"`
}

// MeetingMetadata holds the server-assigned, read-only fields of a meeting.
type MeetingMetadata struct {
	UUID      string `zoom:"required"`
	ID        uint64 `zoom:"required"`
	HostID    string
	HostEmail string `json:",omitempty"`
	CreatedAt time.Time
	JoinURL   string
	StartURL  string `json:",omitempty"`
	PMI       string `json:",omitempty"`
	Status    string `json:",omitempty"`
}

// Meeting is a full meeting resource: metadata plus editable settings decoded from one
// payload.
type Meeting struct {
	MeetingMetadata
	MeetingSettings
}

// MeetingSummary is an entry of the meetings list endpoint.
type MeetingSummary struct {
	UUID      string `zoom:"required"`
	ID        uint64 `zoom:"required"`
	HostID    string
	Topic     string
	Type      MeetingType
	StartTime *time.Time `json:",omitempty"`
	Duration  int
	Timezone  string
	CreatedAt time.Time
	JoinURL   string
}

// ListMeetingsOptions are the query filters of the meetings list endpoint.
type ListMeetingsOptions struct {
	Type     MeetingListType `url:"type,omitempty"`
	PageSize int             `url:"page_size,omitempty"`
	From     string          `url:"from,omitempty"`
	To       string          `url:"to,omitempty"`
	// NextPageToken selects a later page; list-all helpers manage it themselves.
	NextPageToken string `url:"next_page_token,omitempty"`
}

// DeleteMeetingOptions are sent as query flags on DELETE.
type DeleteMeetingOptions struct {
	OccurrenceID          string `url:"occurrence_id,omitempty"`
	ScheduleForReminder   *bool  `url:"schedule_for_reminder,omitempty"`
	CancelMeetingReminder *bool  `url:"cancel_meeting_reminder,omitempty"`
}
