// Package authn es el núcleo de autorización del servicio: verificación de
// bearer tokens emitidos por Clerk contra su JWKS publicado, y el gate de
// admin que cruza la identidad verificada con el trust store local.
//
// # Piezas
//
//   - KeySetCache: baja el JWKS remoto, lo cachea 1h y sirve el snapshot viejo
//     si el publisher está caído (serve-stale-on-error). Swap atómico: los
//     lectores nunca ven una lista a medio reemplazar.
//   - Verifier: token string → ClaimSet verificado, o un error tipado. Sin
//     estado entre llamadas.
//   - Gate: ClaimSet → decisión admin (email vs. admin_grants). Solo lectura.
//
// # Fail closed
//
// Cualquier duda termina en rechazo: clave desconocida, issuer distinto,
// token vencido, JWKS inalcanzable sin cache previo. Los errores tipados
// existen para los logs; hacia afuera todo colapsa en un 401 genérico
// (ver internal/http) para no dar oráculos sobre la validación.
package authn
