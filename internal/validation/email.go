// Package validation agrupa las validaciones de entrada que se comparten
// entre la API y la CLI.
package validation

import "regexp"

// Reglas de email, deliberadamente laxas: local@dominio.tld con al menos un
// punto en el dominio. La verdad última la tiene Clerk (el email viene de un
// token verificado); esto solo frena typos obvios en grants manuales.
//
// Válidos: maria@club.com, m.perez+liga@club.com.ar
// Inválidos: maria, maria@, @club.com, maria@club, "con espacios@club.com"
var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidEmail reporta si s tiene forma de email. No hace lookup de DNS ni
// nada por el estilo.
func ValidEmail(s string) bool {
	return len(s) <= 254 && emailRe.MatchString(s)
}
