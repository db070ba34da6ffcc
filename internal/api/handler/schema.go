package handler

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// --- Auth ---

type signupRequest struct {
	Username string `json:"username" validate:"required,max=150,username,notme"`
	Email    string `json:"email"    validate:"required,max=254,email"`
}

type signupResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type tokenRequest struct {
	Username         string `json:"username"          validate:"required,max=150"`
	ConfirmationCode string `json:"confirmation_code" validate:"required"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// --- Users ---

type createUserRequest struct {
	Username  string `json:"username"   validate:"required,max=150,username,notme"`
	Email     string `json:"email"      validate:"required,max=254,email"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name"  validate:"max=150"`
	Bio       string `json:"bio"`
	Role      string `json:"role"       validate:"omitempty,oneof=user moderator admin"`
}

type updateUserRequest struct {
	Username  *string `json:"username"   validate:"omitempty,max=150,username,notme"`
	Email     *string `json:"email"      validate:"omitempty,max=254,email"`
	FirstName *string `json:"first_name" validate:"omitempty,max=150"`
	LastName  *string `json:"last_name"  validate:"omitempty,max=150"`
	Bio       *string `json:"bio"`
	Role      *string `json:"role"       validate:"omitempty,oneof=user moderator admin"`
}

// updateMeRequest has no role field: a role in the body is dropped while
// binding, whatever its value.
type updateMeRequest struct {
	Username  *string `json:"username"   validate:"omitempty,max=150,username,notme"`
	Email     *string `json:"email"      validate:"omitempty,max=254,email"`
	FirstName *string `json:"first_name" validate:"omitempty,max=150"`
	LastName  *string `json:"last_name"  validate:"omitempty,max=150"`
	Bio       *string `json:"bio"`
}

// --- Catalog ---

type sluggedRequest struct {
	Name string `json:"name" validate:"required,max=256"`
	Slug string `json:"slug" validate:"required,slug"`
}

type createTitleRequest struct {
	Name        string   `json:"name"        validate:"required,max=256"`
	Year        int      `json:"year"        validate:"required"`
	Description string   `json:"description"`
	Genre       []string `json:"genre"       validate:"required,min=1,dive,slug"`
	Category    string   `json:"category"    validate:"omitempty,slug"`
}

type updateTitleRequest struct {
	Name        *string  `json:"name"        validate:"omitempty,max=256"`
	Year        *int     `json:"year"`
	Description *string  `json:"description"`
	Genre       []string `json:"genre"       validate:"omitempty,min=1,dive,slug"`
	Category    *string  `json:"category"    validate:"omitempty,max=50"`
}

// --- Reviews & comments ---

type createReviewRequest struct {
	Text  string `json:"text"  validate:"required"`
	Score int    `json:"score" validate:"required,min=1,max=10"`
}

type updateReviewRequest struct {
	Text  *string `json:"text"  validate:"omitempty,min=1"`
	Score *int    `json:"score" validate:"omitempty,min=1,max=10"`
}

type commentRequest struct {
	Text string `json:"text" validate:"required"`
}

type updateCommentRequest struct {
	Text *string `json:"text" validate:"omitempty,min=1"`
}
