package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/sideline/internal/audit"
	httpx "github.com/dropDatabas3/sideline/internal/http"
	"github.com/dropDatabas3/sideline/internal/http/dto"
	mw "github.com/dropDatabas3/sideline/internal/http/middlewares"
	"github.com/dropDatabas3/sideline/internal/observability/logger"
	"github.com/dropDatabas3/sideline/internal/store/core"
	"github.com/dropDatabas3/sideline/internal/validation"
)

// AdminsController gestiona el trust store de admins: quién puede entrar al
// panel y con qué rol.
type AdminsController struct {
	admins core.AdminRepository
}

func NewAdminsController(admins core.AdminRepository) *AdminsController {
	return &AdminsController{admins: admins}
}

// List maneja GET /api/admin/admins
func (c *AdminsController) List(w http.ResponseWriter, r *http.Request) {
	gs, err := c.admins.ListActive(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, dto.FromAdminGrants(gs))
}

// Grant maneja POST /api/admin/admins. Upsert: si el email ya tuvo un grant
// revocado, lo reactiva con el rol nuevo.
func (c *AdminsController) Grant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req dto.GrantAdminRequest
	if !httpx.ReadJSON(w, r, &req) {
		return
	}

	email := core.NormalizeEmail(req.Email)
	if !validation.ValidEmail(email) {
		httpx.WriteError(w, httpx.ErrBadRequest.WithDetail("valid email is required"))
		return
	}

	role := core.AdminRole(req.Role)
	if req.Role == "" {
		role = core.RoleAdmin
	}
	if !role.Valid() {
		httpx.WriteError(w, httpx.ErrBadRequest.WithDetail("role must be admin or super_admin"))
		return
	}

	g, err := c.admins.Grant(ctx, email, role)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	audit.Event(ctx, actorEmail(ctx), "admin.grant",
		logger.String("granted_email", g.Email), logger.Role(string(g.Role)))
	httpx.WriteJSON(w, http.StatusCreated, dto.FromAdminGrant(g))
}

// Revoke maneja DELETE /api/admin/admins/{email}. Soft delete: la fila queda,
// el acceso muere en el próximo request.
func (c *AdminsController) Revoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	email := core.NormalizeEmail(chi.URLParam(r, "email"))

	// revocarse a uno mismo deja el panel sin ese admin al instante; se
	// permite, pero con la cuenta propia el caller sabe lo que hace
	if p := mw.GetPrincipal(ctx); p != nil && p.Email == email {
		logger.From(ctx).Warn("admin revoking own grant", logger.Email(email))
	}

	ok, err := c.admins.Revoke(ctx, email)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if !ok {
		httpx.WriteError(w, httpx.ErrNotFound)
		return
	}

	audit.Event(ctx, actorEmail(ctx), "admin.revoke",
		logger.String("revoked_email", email))
	w.WriteHeader(http.StatusNoContent)
}

// SetRole maneja PATCH /api/admin/admins/{email}/role
func (c *AdminsController) SetRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	email := core.NormalizeEmail(chi.URLParam(r, "email"))

	var req dto.SetAdminRoleRequest
	if !httpx.ReadJSON(w, r, &req) {
		return
	}

	role := core.AdminRole(req.Role)
	if !role.Valid() {
		httpx.WriteError(w, httpx.ErrBadRequest.WithDetail("role must be admin or super_admin"))
		return
	}

	ok, err := c.admins.SetRole(ctx, email, role)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if !ok {
		httpx.WriteError(w, httpx.ErrNotFound)
		return
	}

	audit.Event(ctx, actorEmail(ctx), "admin.set_role",
		logger.String("target_email", email), logger.Role(string(role)))
	w.WriteHeader(http.StatusNoContent)
}
