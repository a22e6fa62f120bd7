package core

import "strings"

// NormalizeEmail normaliza un identificador de contacto en el borde:
// trim + minúsculas. Toda lookup y todo insert pasan por acá, así
// "Admin@X.com" y "admin@x.com" resuelven a la misma fila.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
