// Package toolbox defines the tool contract the environment dispatches
// agent actions through, the registry that owns the tools, and the built
// in tools.
//
// # Tools
//
// A [Tool] is one named unit of agent capability: it declares a schema for
// its arguments and produces a sourced [gym.Observation] when used. Tools
// carry a [Kind] tag so the engine can react to behavior classes without
// knowing concrete types: it counts attempted rewrites by [KindRewrite]
// and mirrors breakpoint tables from [KindDebugger] tools. Any other Kind
// value is opaque to the engine, which keeps the tool set open.
//
// # Resolution
//
// Agent actions arrive as [ToolCall] records. [Registry.Resolve] matches a
// call against the registered tools; an unknown name is an agent mistake,
// not a wiring error, so Resolve reports it as text for the step
// observation instead of failing. Arguments are validated against the
// tool's declared schema with [ValidateArgs] before the tool runs, and
// tools decode the argument map into their own typed structs with
// [DecodeArgs].
//
// # Built in tools
//
//   - [Rewrite] replaces a whole file or a line range and reports a diff.
//   - [View] shows a file with line numbers and breakpoint markers.
//   - [ListDir] renders the working tree rooted at a relative path.
//   - [Eval] triggers an evaluation run on demand.
//   - [Debug] keeps the live breakpoint table through pdb style commands.
//
// Every tool publishes a definition via [Registry.Definitions] in the
// model.Tool shape, namespaced under "debuggym".
package toolbox
