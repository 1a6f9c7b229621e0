// Package rsx compiles JSX-like templates and renders them to HTML.
//
// A template mixes markup with embedded expressions:
//
//	<Page title={title}>
//	    <ul class="items">
//	        {items}
//	    </ul>
//	    <p data-count={len(items)}>Total</p>
//	</Page>
//
// Lower-case tags are HTML elements. Capitalized tags are components,
// looked up in a Registry when the template is compiled. Expressions are
// evaluated against the Scope passed to Render.
//
// # Usage
//
//	reg := rsx.NewRegistry()
//	reg.Register("Card", rsx.Struct[Card]("Card"))
//
//	tpl, err := rsx.Compile("page.rsx", src, rsx.WithRegistry(reg))
//	if err != nil {
//	    errors.PrintError(err)
//	    return
//	}
//	err = tpl.Render(ctx, w, rsx.Scope{"title": "Home", "items": items})
//
// Generate produces Go source instead, for templates compiled ahead of
// time. The generated function returns a *node.Node that any renderer in
// pkg/render can write.
package rsx
