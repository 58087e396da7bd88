package api

// Team is one membership of the user: a sect and the character the user
// plays in it.
type Team struct {
	SectID         int64   `json:"sectId"`
	SectName       string  `json:"sectName"`
	SectLogo       *string `json:"sectLogo"`
	CharID         int64   `json:"charId"`
	CharName       string  `json:"charName"`
	PortraitURL    *string `json:"portraitUrl"`
	RoleInSect     *string `json:"roleInSect"`
	IsDefault      bool    `json:"isDefault"`
	IsCurrent      bool    `json:"isCurrent"`
	UnreadCount    int     `json:"unreadCount"`
	TodoTaskCount  int     `json:"todoTaskCount"`
	JoinTime       *string `json:"joinTime"`
	LastActiveTime *string `json:"lastActiveTime"`
}

// GlobalTask is a task row in the cross-team view.
type GlobalTask struct {
	TaskID           int64    `json:"taskId"`
	TaskName         string   `json:"taskName"`
	TaskDescription  *string  `json:"taskDescription"`
	TaskType         *string  `json:"taskType"`
	TaskStatus       string   `json:"taskStatus"`
	Priority         *int     `json:"priority"`
	Progress         *float64 `json:"progress"`
	DueDate          *string  `json:"dueDate"`
	ProjectID        *int64   `json:"projectId"`
	ProjectName      *string  `json:"projectName"`
	SectID           int64    `json:"sectId"`
	SectName         string   `json:"sectName"`
	AssigneeCharID   *int64   `json:"assigneeCharId"`
	AssigneeCharName *string  `json:"assigneeCharName"`
	CreatedAt        *string  `json:"createdAt"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Code     string `json:"code"`
}

// TokenPair is returned by login and refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type UserProfile struct {
	UserID       int64   `json:"userId"`
	Username     string  `json:"username"`
	Nickname     *string `json:"nickname"`
	AvatarURL    *string `json:"avatarUrl"`
	Email        *string `json:"email"`
	PhoneNumber  *string `json:"phoneNumber"`
	Gender       *string `json:"gender"`
	Birthday     *string `json:"birthday"`
	Introduction *string `json:"introduction"`
	Status       *string `json:"status"`
	CreatedAt    *string `json:"createdAt"`
	UpdatedAt    *string `json:"updatedAt"`
	LastLogin    *string `json:"lastLogin"`
}

type Permission struct {
	PermissionID   int64  `json:"permissionId"`
	PermissionName string `json:"permissionName"`
	PermissionCode string `json:"permissionCode"`
}

// Captcha types understood by the captcha service.
const (
	CaptchaBlockPuzzle = "blockPuzzle"
	CaptchaClickWord   = "clickWord"
)

// Captcha is a challenge issued by the captcha service.
type Captcha struct {
	// Type is the captchaType the challenge was requested with.
	Type                string   `json:"-"`
	Token               string   `json:"token"`
	SecretKey           string   `json:"secretKey"`
	OriginalImageBase64 string   `json:"originalImageBase64"`
	JigsawImageBase64   string   `json:"jigsawImageBase64,omitempty"`
	WordList            []string `json:"wordList,omitempty"`
}

// Point is a coordinate on the captcha image.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type captchaGetRequest struct {
	CaptchaType string `json:"captchaType"`
}

type captchaCheckRequest struct {
	CaptchaType string `json:"captchaType"`
	PointJSON   string `json:"pointJson"`
	Token       string `json:"token"`
}
