package zoom

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/zoomkit/zoomapi/internal/codec"
	"github.com/zoomkit/zoomapi/internal/fanout"
	"github.com/zoomkit/zoomapi/internal/pager"
	"github.com/zoomkit/zoomapi/pkg/model"
)

type meetingList struct {
	PageSize      int
	TotalRecords  int
	NextPageToken string
	Meetings      []model.MeetingSummary
}

// CreateMeeting schedules a meeting for userID ("" means the caller).
func (c *Client) CreateMeeting(ctx context.Context, creds CredentialSet, userID string, settings model.MeetingSettings) (model.Meeting, error) {
	target, err := c.endpoint("users", orMe(userID), "meetings")
	if err != nil {
		return model.Meeting{}, err
	}
	var meeting model.Meeting
	err = c.exec.PostJSON(ctx, target, creds, settings, &meeting)
	return meeting, err
}

// GetMeeting returns the full meeting resource.
func (c *Client) GetMeeting(ctx context.Context, creds CredentialSet, meetingID uint64) (model.Meeting, error) {
	settings, metadata, err := c.GetMeetingDetail(ctx, creds, meetingID)
	if err != nil {
		return model.Meeting{}, err
	}
	return model.Meeting{MeetingMetadata: metadata, MeetingSettings: settings}, nil
}

// GetMeetingDetail returns the editable settings and the server-assigned metadata of a
// meeting as two views of one response.
func (c *Client) GetMeetingDetail(ctx context.Context, creds CredentialSet, meetingID uint64) (model.MeetingSettings, model.MeetingMetadata, error) {
	target, err := c.meetingURL(meetingID)
	if err != nil {
		return model.MeetingSettings{}, model.MeetingMetadata{}, err
	}
	body, err := c.exec.Get(ctx, target, creds, nil)
	if err != nil {
		return model.MeetingSettings{}, model.MeetingMetadata{}, err
	}
	settings, metadata, err := codec.DecodePair[model.MeetingSettings, model.MeetingMetadata](body)
	if err != nil {
		c.logger.Warn("zoom.decode_failed",
			zap.Uint64("meeting_id", meetingID),
			zap.Error(err))
	}
	return settings, metadata, err
}

// UpdateMeeting overwrites the editable settings of a meeting.
func (c *Client) UpdateMeeting(ctx context.Context, creds CredentialSet, meetingID uint64, settings model.MeetingSettings) error {
	target, err := c.meetingURL(meetingID)
	if err != nil {
		return err
	}
	_, err = c.exec.Patch(ctx, target, creds, settings)
	return err
}

// DeleteMeeting deletes a meeting, or one occurrence of a recurring meeting.
func (c *Client) DeleteMeeting(ctx context.Context, creds CredentialSet, meetingID uint64, opts model.DeleteMeetingOptions) error {
	target, err := c.meetingURL(meetingID)
	if err != nil {
		return err
	}
	_, err = c.exec.Delete(ctx, target, creds, opts)
	return err
}

// ListMeetings returns one page of userID's meetings.
func (c *Client) ListMeetings(ctx context.Context, creds CredentialSet, userID string, opts model.ListMeetingsOptions) (model.Page[model.MeetingSummary], error) {
	target, err := c.endpoint("users", orMe(userID), "meetings")
	if err != nil {
		return model.Page[model.MeetingSummary]{}, err
	}
	var list meetingList
	if err := c.exec.GetJSON(ctx, target, creds, opts, &list); err != nil {
		return model.Page[model.MeetingSummary]{}, err
	}
	return model.Page[model.MeetingSummary]{
		Items:         list.Meetings,
		NextPageToken: list.NextPageToken,
		PageSize:      list.PageSize,
		TotalRecords:  list.TotalRecords,
	}, nil
}

// ListAllMeetings follows next_page_token until every page of userID's meetings is read.
func (c *Client) ListAllMeetings(ctx context.Context, creds CredentialSet, userID string, opts model.ListMeetingsOptions) ([]model.MeetingSummary, error) {
	return pager.Collect(ctx, func(ctx context.Context, token string) (model.Page[model.MeetingSummary], error) {
		page := opts
		page.NextPageToken = token
		return c.ListMeetings(ctx, creds, userID, page)
	})
}

// ListMeetingDetails lists userID's meetings and fetches every one of them concurrently.
// It fails as a whole if any fetch fails.
func (c *Client) ListMeetingDetails(ctx context.Context, creds CredentialSet, userID string, opts model.ListMeetingsOptions) ([]model.Meeting, error) {
	summaries, err := c.ListAllMeetings(ctx, creds, userID, opts)
	if err != nil {
		return nil, err
	}
	ids := make([]uint64, len(summaries))
	for i, s := range summaries {
		ids[i] = s.ID
	}
	return c.GetMeetings(ctx, creds, ids)
}

// GetMeetings fetches meetings by id concurrently, bounded by Options.FanOutLimit.
func (c *Client) GetMeetings(ctx context.Context, creds CredentialSet, meetingIDs []uint64) ([]model.Meeting, error) {
	return fanout.Fetch(ctx, meetingIDs, c.fanOutLimit, func(ctx context.Context, id uint64) (model.Meeting, error) {
		return c.GetMeeting(ctx, creds, id)
	})
}

func (c *Client) meetingURL(meetingID uint64) (string, error) {
	return c.endpoint("meetings", strconv.FormatUint(meetingID, 10))
}
