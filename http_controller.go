package auth

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

// AuthControllerRoutes names the JSON endpoints the controller mounts.
type AuthControllerRoutes struct {
	Login         string
	Logout        string
	Register      string
	Profile       string
	PasswordReset string
	AdminUsers    string
}

// AuthController exposes the platform auth API: login and logout, account
// registration, the identity echo used by dashboards, and the admin only
// user listing.
type AuthController struct {
	Debug         bool
	Logger        Logger
	Repo          RepositoryManager
	Routes        *AuthControllerRoutes
	Auther        *RouteAuthenticator
	register      *RegisterUserHandler
	resetInit     *InitializePasswordResetHandler
	resetFinalize *FinalizePasswordResetHandler
}

type AuthControllerOption func(*AuthController) *AuthController

func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithControllerRepo(repo RepositoryManager) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Repo = repo
		return c
	}
}

func WithControllerAuther(auther *RouteAuthenticator) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = auther
		return c
	}
}

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger: defLogger{},
		Routes: &AuthControllerRoutes{
			Login:         "/auth/login",
			Logout:        "/auth/logout",
			Register:      "/auth/register",
			Profile:       "/auth/me",
			PasswordReset: "/auth/password-reset",
			AdminUsers:    "/admin/users",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in auth controller...")
	}

	if c.Auther == nil {
		panic("Missing RouteAuthenticator in auth controller...")
	}

	c.register = NewRegisterUserHandler(c.Repo)
	c.resetInit = NewInitializePasswordResetHandler(c.Repo).WithLogger(c.Logger)
	c.resetFinalize = NewFinalizePasswordResetHandler(c.Repo).WithLogger(c.Logger)

	return c
}

// RegisterAuthRoutes mounts the auth API. Role sets are static: defined
// here at wiring time and never mutated at runtime.
func RegisterAuthRoutes[T any](app router.Router[T], opts ...AuthControllerOption) {
	controller := NewAuthController(opts...)
	authenticated := controller.Auther.ProtectedRoute()
	adminOnly := controller.Auther.ProtectedRoute(RoleAdmin)

	app.Post(controller.Routes.Login, controller.LoginPost).
		SetName("auth.login")

	app.Post(controller.Routes.Logout, controller.LogoutPost).
		SetName("auth.logout")

	app.Post(controller.Routes.Register, controller.RegistrationCreate).
		SetName("auth.register")

	app.Post(controller.Routes.PasswordReset, controller.PasswordResetPost).
		SetName("auth.pwd-reset")

	app.Post(controller.Routes.PasswordReset+"/:session", controller.PasswordResetExecute).
		SetName("auth.pwd-reset-do")

	app.Get(controller.Routes.Profile, authenticated(controller.Me)).
		SetName("auth.me")

	// Admin listing is role gated here: the upstream platform shipped a
	// variant of this route with no visible check, flagged during policy
	// review. Gating is the safe default.
	app.Get(controller.Routes.AdminUsers, adminOnly(controller.AdminListUsers)).
		SetName("admin.users")
}

// LoginRequest payload
type LoginRequest struct {
	Identifier string `form:"identifier" json:"identifier"`
	Password   string `form:"password" json:"password"`
	RememberMe bool   `form:"remember_me" json:"remember_me"`
}

// GetIdentifier returns the identifier
func (r LoginRequest) GetIdentifier() string {
	return r.Identifier
}

// GetPassword will return the password
func (r LoginRequest) GetPassword() string {
	return r.Password
}

// GetExtendedSession reports whether the client asked to stay signed in
func (r LoginRequest) GetExtendedSession() bool {
	return r.RememberMe
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Identifier,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

func (a *AuthController) LoginPost(ctx router.Context) error {
	payload := new(LoginRequest)

	if err := ctx.Bind(payload); err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"error": "malformed request body",
		})
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"error": err.Error(),
		})
	}

	token, err := a.Auther.Login(ctx, payload)
	if err != nil {
		// credential failures all collapse to one response; detail stays in
		// the server logs
		return ctx.JSON(router.StatusUnauthorized, map[string]string{
			"error": "invalid credentials",
		})
	}

	return ctx.JSON(router.StatusOK, map[string]string{
		"token": token,
	})
}

func (a *AuthController) LogoutPost(ctx router.Context) error {
	a.Auther.Logout(ctx)
	return ctx.JSON(router.StatusOK, map[string]string{
		"status": "signed out",
	})
}

// RegisterRequest payload
type RegisterRequest struct {
	FirstName  string `form:"first_name" json:"first_name"`
	LastName   string `form:"last_name" json:"last_name"`
	Username   string `form:"username" json:"username"`
	Email      string `form:"email" json:"email"`
	Department string `form:"department" json:"department"`
	Role       string `form:"role" json:"role"`
	Password   string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 128)),
		validation.Field(&r.Role, validation.In("", "guest", "student", "faculty", "admin")),
	)
}

func (a *AuthController) RegistrationCreate(ctx router.Context) error {
	payload := new(RegisterRequest)

	if err := ctx.Bind(payload); err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"error": "malformed request body",
		})
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"error": err.Error(),
		})
	}

	user, err := a.register.Execute(ctx.Context(), RegisterUserMessage{
		FirstName:  payload.FirstName,
		LastName:   payload.LastName,
		Username:   payload.Username,
		Email:      payload.Email,
		Department: payload.Department,
		Role:       payload.Role,
		Password:   payload.Password,
		UseHashid:  true,
	})
	if err != nil {
		return a.handleError(ctx, err)
	}

	return ctx.JSON(router.StatusCreated, map[string]any{
		"id":    user.ID.String(),
		"email": user.Email,
		"role":  user.Role.String(),
	})
}

// PasswordResetRequest payload
type PasswordResetRequest struct {
	Email string `form:"email" json:"email"`
}

// Validate will run validation rules
func (r PasswordResetRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

// PasswordResetPost starts a reset flow. The response is identical whether
// or not the email matches an account.
func (a *AuthController) PasswordResetPost(ctx router.Context) error {
	payload := new(PasswordResetRequest)

	if err := ctx.Bind(payload); err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"error": "malformed request body",
		})
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"error": err.Error(),
		})
	}

	if _, err := a.resetInit.Execute(ctx.Context(), InitializePasswordResetMessage{
		Email: payload.Email,
	}); err != nil {
		return a.handleError(ctx, err)
	}

	return ctx.JSON(router.StatusAccepted, map[string]string{
		"status": "email-sent",
	})
}

// PasswordResetExecuteRequest payload
type PasswordResetExecuteRequest struct {
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r PasswordResetExecuteRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Password, validation.Required, validation.Length(8, 128)),
	)
}

// PasswordResetExecute redeems a reset token with the new password.
func (a *AuthController) PasswordResetExecute(ctx router.Context) error {
	session := ctx.Param("session")
	if session == "" {
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"error": "missing reset token",
		})
	}

	payload := new(PasswordResetExecuteRequest)

	if err := ctx.Bind(payload); err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"error": "malformed request body",
		})
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"error": err.Error(),
		})
	}

	if err := a.resetFinalize.Execute(ctx.Context(), FinalizePasswordResetMessage{
		Session:  session,
		Password: payload.Password,
	}); err != nil {
		return a.handleResetError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]string{
		"status": "password-changed",
	})
}

func (a *AuthController) handleResetError(ctx router.Context, err error) error {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		switch richErr.Category {
		case goerrors.CategoryNotFound, goerrors.CategoryValidation, goerrors.CategoryConflict:
			// expired, used, and unknown tokens all answer the same way
			return ctx.JSON(router.StatusBadRequest, map[string]string{
				"error": "invalid or expired reset token",
			})
		}
	}
	return a.handleError(ctx, err)
}

// Me echoes the resolved identity attached by the route guard. Downstream
// dashboards use it to bootstrap the signed in session.
func (a *AuthController) Me(ctx router.Context) error {
	identity, ok := GetRouterIdentity(ctx, a.Auther.cfg.GetContextKey())
	if !ok {
		return ctx.JSON(router.StatusUnauthorized, map[string]string{
			"error": "unauthenticated",
		})
	}

	return ctx.JSON(router.StatusOK, identity)
}

// AdminListUsers lists platform accounts. The route is admin gated; the
// handler itself only projects safe fields.
func (a *AuthController) AdminListUsers(ctx router.Context) error {
	users, err := a.Repo.Users().List(ctx.Context())
	if err != nil {
		return a.handleError(ctx, err)
	}

	out := make([]map[string]any, 0, len(users))
	for _, u := range users {
		out = append(out, map[string]any{
			"id":         u.ID.String(),
			"email":      u.Email,
			"username":   u.Username,
			"role":       u.Role.String(),
			"department": u.Department,
		})
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"users": out,
	})
}

func (a *AuthController) handleError(ctx router.Context, err error) error {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		richErr = goerrors.Wrap(err, goerrors.CategoryInternal, "unexpected server error").
			WithCode(goerrors.CodeInternal)
	}

	a.Logger.Error(
		"auth controller error",
		"message", richErr.Message,
		"category", richErr.Category,
		"text_code", richErr.TextCode,
	)

	switch richErr.Category {
	case goerrors.CategoryValidation, goerrors.CategoryBadInput:
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"error": richErr.Message,
		})
	case goerrors.CategoryConflict:
		return ctx.JSON(router.StatusConflict, map[string]string{
			"error": richErr.Message,
		})
	default:
		return ctx.JSON(router.StatusInternalServerError, map[string]string{
			"error": "internal server error",
		})
	}
}
