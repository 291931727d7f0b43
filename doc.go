// Package iocaop is an inversion-of-control container with an aspect weaver.
//
// The module is split by concern:
//
//   - di: the module-namespaced instance registry and the resolver with its
//     scopes, backups and type inference
//   - aop: pointcuts, advice, aspect ordering and the weaver that dispatches
//     calls through per-method interceptor chains
//   - aspects: ready-made logging, metrics, tracing and deadline advice
//   - config: YAML and environment configuration
//   - container: the composition of all of the above with a Clear lifecycle
//   - cmd/weaveplan: prints the chain every method would get from a manifest
//   - examples/userapi: an end-to-end runnable example
//
// Registration happens once at startup and ends with Weave, which seals the
// registry. After that the dispatch table is read-only apart from Revoke.
package iocaop
