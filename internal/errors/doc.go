// Package errors provides structured diagnostics for rsx templates.
//
// Every diagnostic carries a code from the registry, a severity, and
// optionally a source location with the surrounding lines:
//
//   - R001-R099: compile warnings. The template still compiles.
//   - R100-R109: compile errors. No template is produced.
//   - R110-R119: render errors raised while evaluating a template.
//   - R120-R139: configuration errors.
//   - R140-R159: command line errors.
//
// # Usage
//
//	err := errors.New("R100", "div").
//	    WithSource("page.rsx", src, 3, 1).
//	    WithSuggestion("Close the element with </div>")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR R100: Unexpected end of input: missing closing tag for <div>
//	//
//	//   page.rsx:3:1
//	//
//	//       1 │ <div>
//	//       2 │   <p>Hello</p>
//	//   →   3 │
//	//         │ ^
//	//
//	//   Hint: Close the element with </div>
//	//
//	//   Learn more: https://vango.dev/docs/rsx/errors/R100
//
// A List gathers the diagnostics of one compilation so callers can report
// warnings and still tell whether compilation failed.
package errors
