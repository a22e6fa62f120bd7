package authn

import "errors"

// Errores del verifier. Distinguibles con errors.Is para diagnóstico;
// la capa HTTP los colapsa todos en un 401 con cuerpo fijo.
var (
	// ErrKeyFetch: el publisher de claves no responde y nunca hubo un fetch
	// exitoso. Con cache previo (aunque esté vencido) no se falla: se sirve stale.
	ErrKeyFetch = errors.New("signing key set unavailable")

	// ErrMalformedToken: el token no tiene la estructura JWT esperada.
	ErrMalformedToken = errors.New("malformed token")

	// ErrUnknownKey: el kid del header no está en el key set publicado.
	// Este es el límite de confianza: un atacante no puede hacer que
	// aceptemos una clave arbitraria.
	ErrUnknownKey = errors.New("unknown signing key")

	// ErrSignatureInvalid: la firma no verifica con la clave publicada
	// (incluye intentos de cambiar el alg declarado).
	ErrSignatureInvalid = errors.New("invalid token signature")

	// ErrIssuerMismatch: el claim iss no coincide textualmente con el
	// issuer configurado.
	ErrIssuerMismatch = errors.New("issuer mismatch")

	// ErrExpired: exp no está en el futuro.
	ErrExpired = errors.New("token expired")
)

// Errores del gate de autorización.
var (
	// ErrUnauthenticated: cualquier fallo del verifier, colapsado.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrNoEmail: el token verificó pero no trae direcciones de contacto.
	ErrNoEmail = errors.New("token carries no email address")

	// ErrNotAuthorized: identidad válida, pero sin grant activo en el
	// trust store. Sale como 403, no 401: quién-sos vs. qué-podés.
	ErrNotAuthorized = errors.New("admin access required")
)
