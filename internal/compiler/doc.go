// Package compiler classifies parsed elements and lowers them to output.
//
// Analyze decides once per element whether it is a simple tag, a custom
// component or a fragment, and applies the attribute rules that depend on
// that decision. Lower then walks the tree and hands every element to an
// Emitter. Two emitters exist: Interpreter builds an evaluator that
// produces node trees at render time, and Generator builds Go source that
// produces the same trees when compiled.
package compiler
