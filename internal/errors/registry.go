package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Severity Severity
	Message  string
	Detail   string
	DocURL   string
}

const docBase = "https://vango.dev/docs/rsx/errors/"

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Compile Warnings (R001-R099)
	// ============================================

	"R001": {
		Category: CategoryCompile,
		Severity: SeverityWarning,
		Message:  "Expected closing tag for <%s>, found </%s>",
		Detail:   "The element is still built from its opening tag, but the template is marked tainted and will not compile unless tainted results are allowed.",
		DocURL:   docBase + "R001",
	},
	"R002": {
		Category: CategoryCompile,
		Severity: SeverityWarning,
		Message:  "There is a previous definition of the %s attribute",
		Detail:   "An attribute key may only appear once on a tag. The first definition is kept and later ones are ignored.",
		DocURL:   docBase + "R002",
	},
	"R003": {
		Category: CategoryCompile,
		Severity: SeverityWarning,
		Message:  "Can't use dash-delimited values on custom components. Did you mean `%s`?",
		Detail:   "Custom component props become Go identifiers, which cannot contain dashes. The attribute is dropped.",
		DocURL:   docBase + "R003",
	},
	"R004": {
		Category: CategoryCompile,
		Severity: SeverityWarning,
		Message:  "Can't pun a dash-delimited attribute %q",
		Detail:   "A punned attribute reads the variable of the same name, and dashed names are not valid variables. The attribute is dropped.",
		DocURL:   docBase + "R004",
	},
	"R005": {
		Category: CategoryCompile,
		Severity: SeverityWarning,
		Message:  "Fragments do not take attributes",
		Detail:   "A fragment renders only its children. Its attributes are dropped.",
		DocURL:   docBase + "R005",
	},

	// ============================================
	// Compile Errors (R100-R109)
	// ============================================

	"R100": {
		Category: CategoryCompile,
		Message:  "Unexpected end of input: missing closing tag for <%s>",
		Detail:   "The template ended while an element was still open. Every element needs a closing tag or must self-close with />.",
		DocURL:   docBase + "R100",
	},
	"R101": {
		Category: CategoryCompile,
		Message:  "Malformed attribute: %s",
		Detail:   "Attributes take the form key, key=\"text\", key={expression} or a dash-delimited key.",
		DocURL:   docBase + "R101",
	},
	"R102": {
		Category: CategoryCompile,
		Message:  "Unterminated expression block",
		Detail:   "An opening { was never closed. Braces inside expressions must balance, and strings must be terminated.",
		DocURL:   docBase + "R102",
	},
	"R103": {
		Category: CategoryCompile,
		Message:  "Expected %s, found %s",
		Detail:   "The template does not follow the tag grammar at this position.",
		DocURL:   docBase + "R103",
	},
	"R104": {
		Category: CategoryCompile,
		Message:  "Invalid expression %q",
		Detail:   "The embedded expression could not be compiled.",
		DocURL:   docBase + "R104",
	},
	"R105": {
		Category: CategoryCompile,
		Message:  "Unknown component <%s>",
		Detail:   "Capitalized tags refer to custom components, which must be registered before the template is compiled or rendered.",
		DocURL:   docBase + "R105",
	},
	"R106": {
		Category: CategoryCompile,
		Message:  "No import for package %q of component <%s>",
		Detail:   "Generated code refers to dotted components as package.Type, so every package qualifier needs an import path.",
		DocURL:   docBase + "R106",
	},

	// ============================================
	// Render Errors (R110-R119)
	// ============================================

	"R110": {
		Category: CategoryRender,
		Message:  "Expression %q failed",
		Detail:   "Evaluating an embedded expression against the render scope returned an error.",
		DocURL:   docBase + "R110",
	},
	"R111": {
		Category: CategoryRender,
		Message:  "Component <%s> failed",
		Detail:   "The component factory returned an error while building its tree.",
		DocURL:   docBase + "R111",
	},
	"R112": {
		Category: CategoryRender,
		Message:  "Unknown prop %q for component <%s>",
		Detail:   "Struct components only accept props that map onto one of their fields.",
		DocURL:   docBase + "R112",
	},

	// ============================================
	// Config Errors (R120-R139)
	// ============================================

	"R120": {
		Category: CategoryConfig,
		Message:  "Config file not found",
		Detail:   "Could not find rsx.json or rsx.yaml in the current directory or any parent directory.",
		DocURL:   docBase + "R120",
	},
	"R121": {
		Category: CategoryConfig,
		Message:  "Invalid config file",
		Detail:   "The configuration file could not be decoded.",
		DocURL:   docBase + "R121",
	},
	"R122": {
		Category: CategoryConfig,
		Message:  "Invalid config value",
		Detail:   "A configuration value is out of range or has the wrong form.",
		DocURL:   docBase + "R122",
	},

	// ============================================
	// CLI Errors (R140-R159)
	// ============================================

	"R140": {
		Category: CategoryCLI,
		Message:  "Template file not found",
		Detail:   "The template path passed on the command line does not exist.",
		DocURL:   docBase + "R140",
	},
	"R141": {
		Category: CategoryCLI,
		Message:  "Invalid scope data",
		Detail:   "The --data file must hold a JSON or YAML object.",
		DocURL:   docBase + "R141",
	},
	"R142": {
		Category: CategoryCLI,
		Message:  "Publish failed",
		Detail:   "The rendered output could not be written to its destination.",
		DocURL:   docBase + "R142",
	},
}

// GetAllCodes returns all registered error codes in ascending order.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
