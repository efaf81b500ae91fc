package auth

import "github.com/gofiber/fiber/v2"

// ProfileRoles are the roles served by the self-service endpoints
var ProfileRoles = profileRoles()

func profileRoles() []Role {
	var out []Role
	for _, role := range GetAllRoles() {
		if role.OwnsProfile() {
			out = append(out, role)
		}
	}
	return out
}

// RouteOptions configures RegisterRoutes
type RouteOptions struct {
	Prefix  string
	Logger  Logger
	Auth    []AuthControllerOption
	Account []AccountControllerOption
}

// RegisterRoutes mounts the HTTP surface on app:
//
//	POST   {prefix}/auth/register
//	POST   {prefix}/auth/login
//	GET    {prefix}/auth/me
//	GET    {prefix}/{role}/profile/:id
//	PUT    {prefix}/{role}/update/:id
//	PUT    {prefix}/{role}/password/:id
//	GET    {prefix}/admin/users
//	DELETE {prefix}/admin/users/:id
func RegisterRoutes(app fiber.Router, auther *Auther, gate *RouteAuthenticator, opts RouteOptions) {
	if opts.Prefix == "" {
		opts.Prefix = "/api"
	}

	authOpts := append([]AuthControllerOption{WithAuthControllerLogger(opts.Logger)}, opts.Auth...)
	accountOpts := append([]AccountControllerOption{WithAccountControllerLogger(opts.Logger)}, opts.Account...)

	authController := NewAuthController(auther, authOpts...)
	accounts := NewAccountController(auther, accountOpts...)

	api := app.Group(opts.Prefix)

	authGroup := api.Group("/auth")
	authGroup.Post(authController.Routes.Register, authController.Register)
	authGroup.Post(authController.Routes.Login, authController.Login)
	authGroup.Get(authController.Routes.Me, gate.Protected(), authController.Me)

	for _, role := range ProfileRoles {
		g := api.Group("/"+role.String(), gate.RequireRole(role))
		g.Get("/profile/:id", accounts.Profile(role))
		g.Put("/update/:id", accounts.UpdateProfile(role))
		g.Put("/password/:id", accounts.ChangePassword(role))
	}

	admin := api.Group("/admin", gate.RequireRole(RoleAdmin))
	admin.Get("/users", accounts.ListUsers)
	admin.Delete("/users/:id", accounts.DeleteUser)
}
