// Package gym defines the core value types and the lifecycle event bus of
// the debuggym runtime.
//
// # Entities
//
//   - [Observation]: a sourced text result returned to the agent after an
//     action or event. Value type, compared by equality.
//   - [EvalOutput]: the outcome of one evaluation run (success flag plus
//     captured output).
//   - [Event]: a closed enumeration of lifecycle moments. The member set is
//     fixed at compile time; Hooks rejects anything outside it.
//
// # Event hooks
//
// [Hooks] is an ordered publish/subscribe registry keyed by Event. Each
// event carries its own handler interface ([EnvStartHandler],
// [EnvResetHandler], ...); Subscribe performs the capability check by type
// assertion and fails when the subscriber does not implement the handler
// for that event. Notification is synchronous: handlers run in subscription
// order on the caller's goroutine, their observations are collected in
// order, and a handler error aborts the fan-out and propagates.
//
// Hooks is not safe for concurrent use. The environment protocol is
// strictly request/response, so all notification happens on the goroutine
// driving step/reset.
package gym
