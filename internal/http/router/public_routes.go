package router

import (
	"github.com/go-chi/chi/v5"

	publicctrl "github.com/dropDatabas3/sideline/internal/http/controllers/public"
)

// registerPublicRoutes registra la vista pública de ligas: solo lectura,
// sin autenticación.
func registerPublicRoutes(r chi.Router, c *publicctrl.LeaguesController) {
	r.Route("/leagues", func(lr chi.Router) {
		lr.Get("/", c.List)
		lr.Get("/{leagueID}", c.Get)
		lr.Get("/{leagueID}/stats", c.Stats)
		lr.Get("/{leagueID}/schedule", c.Schedule)
		lr.Get("/{leagueID}/standings", c.Standings)
	})
}
