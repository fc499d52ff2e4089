package zoom

import (
	"context"

	"github.com/zoomkit/zoomapi/internal/pager"
	"github.com/zoomkit/zoomapi/pkg/model"
)

type userList struct {
	PageSize      int
	TotalRecords  int
	NextPageToken string
	Users         []model.User
}

type createUserRequest struct {
	Action   model.CreateUserAction
	UserInfo model.UserInfo
}

// GetUser returns userID ("" means the caller).
func (c *Client) GetUser(ctx context.Context, creds CredentialSet, userID string) (model.User, error) {
	target, err := c.endpoint("users", orMe(userID))
	if err != nil {
		return model.User{}, err
	}
	var user model.User
	err = c.exec.GetJSON(ctx, target, creds, nil, &user)
	return user, err
}

// CreateUser adds a user to the caller's account. info.Password is sent but never
// returned.
func (c *Client) CreateUser(ctx context.Context, creds CredentialSet, action model.CreateUserAction, info model.UserInfo) (model.CreatedUser, error) {
	target, err := c.endpoint("users")
	if err != nil {
		return model.CreatedUser{}, err
	}
	var created model.CreatedUser
	err = c.exec.PostJSON(ctx, target, creds, createUserRequest{Action: action, UserInfo: info}, &created)
	return created, err
}

// UpdateUser changes the non-nil fields of update.
func (c *Client) UpdateUser(ctx context.Context, creds CredentialSet, userID string, update model.UserUpdate) error {
	target, err := c.endpoint("users", orMe(userID))
	if err != nil {
		return err
	}
	_, err = c.exec.Patch(ctx, target, creds, update)
	return err
}

// DeleteUser disassociates (the default) or deletes userID.
func (c *Client) DeleteUser(ctx context.Context, creds CredentialSet, userID string, opts model.DeleteUserOptions) error {
	target, err := c.endpoint("users", orMe(userID))
	if err != nil {
		return err
	}
	_, err = c.exec.Delete(ctx, target, creds, opts)
	return err
}

// ListUsers returns one page of the account's users.
func (c *Client) ListUsers(ctx context.Context, creds CredentialSet, opts model.ListUsersOptions) (model.Page[model.User], error) {
	target, err := c.endpoint("users")
	if err != nil {
		return model.Page[model.User]{}, err
	}
	var list userList
	if err := c.exec.GetJSON(ctx, target, creds, opts, &list); err != nil {
		return model.Page[model.User]{}, err
	}
	return model.Page[model.User]{
		Items:         list.Users,
		NextPageToken: list.NextPageToken,
		PageSize:      list.PageSize,
		TotalRecords:  list.TotalRecords,
	}, nil
}

func (c *Client) ListAllUsers(ctx context.Context, creds CredentialSet, opts model.ListUsersOptions) ([]model.User, error) {
	return pager.Collect(ctx, func(ctx context.Context, token string) (model.Page[model.User], error) {
		page := opts
		page.NextPageToken = token
		return c.ListUsers(ctx, creds, page)
	})
}
