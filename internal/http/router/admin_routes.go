package router

import (
	"github.com/go-chi/chi/v5"

	adminctrl "github.com/dropDatabas3/sideline/internal/http/controllers/admin"
)

// registerAdminRoutes registra las rutas del panel admin. El caller ya montó
// RequireAdmin sobre el subrouter.
func registerAdminRoutes(r chi.Router, c *adminctrl.Controllers) {
	// ---------- LIGAS ----------
	r.Route("/leagues", func(lr chi.Router) {
		lr.Post("/", c.Leagues.Create)
		lr.Get("/", c.Leagues.List)
		lr.Get("/{leagueID}", c.Leagues.Get)
		lr.Patch("/{leagueID}", c.Leagues.Update)
		lr.Delete("/{leagueID}", c.Leagues.Delete)
		lr.Get("/{leagueID}/stats", c.Leagues.Stats)
	})

	// ---------- ADMINS ----------
	r.Route("/admins", func(ar chi.Router) {
		ar.Get("/", c.Admins.List)
		ar.Post("/", c.Admins.Grant)
		ar.Delete("/{email}", c.Admins.Revoke)
		ar.Patch("/{email}/role", c.Admins.SetRole)
	})
}
