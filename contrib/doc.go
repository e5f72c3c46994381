// Package contrib holds helpers that sit outside the core jongo API.
//
// [github.com/jongo-go/jongo/contrib/testenv] connects tests to a live MongoDB server
// configured through the environment and provides a deterministic slog handler.
//
// Packages under contrib are outside the compatibility guarantees of the core module.
package contrib
