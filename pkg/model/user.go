package model

import "time"

type UserType int

const (
	UserTypeBasic    UserType = 1
	UserTypeLicensed UserType = 2
	UserTypeNone     UserType = 99
)

type LoginType int

const (
	LoginFacebookOAuth  LoginType = 0
	LoginGoogleOAuth    LoginType = 1
	LoginPhoneNumber    LoginType = 11
	LoginWeChat         LoginType = 21
	LoginAlipay         LoginType = 23
	LoginAppleOAuth     LoginType = 24
	LoginMicrosoftOAuth LoginType = 27
	LoginMobileDevice   LoginType = 97
	LoginRingCentral    LoginType = 98
	LoginAPIUser        LoginType = 99
	LoginZoomWorkEmail  LoginType = 100
	LoginSingleSignOn   LoginType = 101
)

type UserStatus string

const (
	UserStatusPending  UserStatus = "pending"
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
)

type PhoneNumber struct {
	Code     string
	Country  string
	Label    string
	Number   string
	Verified bool
}

// User is the Zoom user resource.
type User struct {
	ID                 string `zoom:"required"`
	Email              string `zoom:"required"`
	Type               UserType
	Status             UserStatus `json:",omitempty"`
	FirstName          string     `json:",omitempty"`
	LastName           string     `json:",omitempty"`
	DisplayName        string     `json:",omitempty"`
	Dept               string     `json:",omitempty"`
	Timezone           string     `json:",omitempty"`
	Language           string     `json:",omitempty"`
	Company            string     `json:",omitempty"`
	JobTitle           string     `json:",omitempty"`
	Location           string     `json:",omitempty"`
	RoleName           string     `json:",omitempty"`
	RoleID             string     `json:",omitempty"`
	AccountID          string     `json:",omitempty"`
	AccountNumber      int64      `json:",omitempty"`
	PMI                int64      `json:",omitempty"`
	UsePMI             bool
	Verified           int
	LastLoginTime      *time.Time    `json:",omitempty"`
	LastClientVersion  string        `json:",omitempty"`
	UserCreatedAt      *time.Time    `json:",omitempty"`
	LoginTypes         []LoginType   `json:",omitempty"`
	PhoneNumbers       []PhoneNumber `json:",omitempty"`
	PersonalMeetingURL string        `json:",omitempty"`
	PicURL             string        `json:",omitempty"`
	VanityURL          string        `json:",omitempty"`
	Pronouns           string        `json:",omitempty"`
	PronounsOption     int           `json:",omitempty"`
}

// CreateUserAction selects how Zoom provisions a new user.
type CreateUserAction string

const (
	CreateUserActionCreate     CreateUserAction = "create"
	CreateUserActionAutoCreate CreateUserAction = "autoCreate"
	CreateUserActionCustCreate CreateUserAction = "custCreate"
	CreateUserActionSSOCreate  CreateUserAction = "ssoCreate"
)

// UserInfo is the payload of a user creation. Password is write-only and never
// returned by the API.
type UserInfo struct {
	Email       string `zoom:"required"`
	Type        UserType
	FirstName   string `json:",omitempty"`
	LastName    string `json:",omitempty"`
	DisplayName string `json:",omitempty"`
	Password    string `json:",omitempty"`
}

// CreatedUser is the response of a user creation.
type CreatedUser struct {
	ID        string `zoom:"required"`
	Email     string
	FirstName string
	LastName  string
	Type      UserType
}

// UserUpdate carries the fields to PATCH; nil fields are left untouched.
type UserUpdate struct {
	FirstName   *string   `json:",omitempty"`
	LastName    *string   `json:",omitempty"`
	DisplayName *string   `json:",omitempty"`
	Dept        *string   `json:",omitempty"`
	Timezone    *string   `json:",omitempty"`
	Language    *string   `json:",omitempty"`
	Company     *string   `json:",omitempty"`
	JobTitle    *string   `json:",omitempty"`
	Location    *string   `json:",omitempty"`
	Type        *UserType `json:",omitempty"`
}

// ListUsersOptions are the query filters of the users list endpoint.
type ListUsersOptions struct {
	Status   UserStatus `url:"status,omitempty"`
	PageSize int        `url:"page_size,omitempty"`
	RoleID   string     `url:"role_id,omitempty"`
	// NextPageToken selects a later page; list-all helpers manage it themselves.
	NextPageToken string `url:"next_page_token,omitempty"`
}

// DeleteUserOptions are sent as query flags on DELETE.
type DeleteUserOptions struct {
	Action            string `url:"action,omitempty"`
	TransferEmail     string `url:"transfer_email,omitempty"`
	TransferMeeting   *bool  `url:"transfer_meeting,omitempty"`
	TransferWebinar   *bool  `url:"transfer_webinar,omitempty"`
	TransferRecording *bool  `url:"transfer_recording,omitempty"`
}
