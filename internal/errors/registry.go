package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Configuration Errors (E100-E199)
	// ============================================

	"E101": {
		Category: CategoryConfig,
		Message:  "Invalid husk.json",
		Detail:   "The husk.json configuration file could not be parsed. Comments are allowed, but the remaining content must be valid JSON.",
		DocURL:   "https://husk.build/docs/errors/E101",
	},
	"E102": {
		Category: CategoryConfig,
		Message:  "Not a husk project",
		Detail:   "No husk.json was found in this directory or any parent directory.",
		DocURL:   "https://husk.build/docs/errors/E102",
	},
	"E103": {
		Category: CategoryConfig,
		Message:  "Invalid port number",
		Detail:   "Ports must be between 1 and 65535.",
		DocURL:   "https://husk.build/docs/errors/E103",
	},
	"E104": {
		Category: CategoryConfig,
		Message:  "Configuration file unreadable",
		Detail:   "husk.json exists but could not be read.",
		DocURL:   "https://husk.build/docs/errors/E104",
	},

	// ============================================
	// Build Errors (E200-E299)
	// ============================================

	"E201": {
		Category: CategoryBuild,
		Message:  "Bundling failed",
		Detail:   "The bundler reported errors while compiling the front-end.",
		DocURL:   "https://husk.build/docs/errors/E201",
	},
	"E202": {
		Category: CategoryBuild,
		Message:  "Entry document not found",
		Detail:   "A configured entry HTML document does not exist in the project.",
		DocURL:   "https://husk.build/docs/errors/E202",
	},
	"E203": {
		Category: CategoryBuild,
		Message:  "No module scripts in entry document",
		Detail:   "The entry HTML contains no <script type=\"module\" src=...> tag for the bundler to start from.",
		DocURL:   "https://husk.build/docs/errors/E203",
	},
	"E204": {
		Category: CategoryBuild,
		Message:  "Output directory not writable",
		Detail:   "The build output directory could not be created or written.",
		DocURL:   "https://husk.build/docs/errors/E204",
	},

	// ============================================
	// Dev Server Errors (E300-E399)
	// ============================================

	"E301": {
		Category: CategoryDev,
		Message:  "Port unavailable",
		Detail:   "The development server requires its exact configured port and never substitutes another one.",
		DocURL:   "https://husk.build/docs/errors/E301",
	},
	"E302": {
		Category: CategoryDev,
		Message:  "File watcher failed",
		Detail:   "The file system watcher could not be started.",
		DocURL:   "https://husk.build/docs/errors/E302",
	},
	"E303": {
		Category: CategoryDev,
		Message:  "Dev server failed",
		Detail:   "The development server stopped unexpectedly.",
		DocURL:   "https://husk.build/docs/errors/E303",
	},

	// ============================================
	// Deploy Errors (E400-E499)
	// ============================================

	"E401": {
		Category: CategoryDeploy,
		Message:  "AWS configuration failed",
		Detail:   "AWS credentials or region could not be resolved from the environment.",
		DocURL:   "https://husk.build/docs/errors/E401",
	},
	"E402": {
		Category: CategoryDeploy,
		Message:  "Upload failed",
		Detail:   "One or more files could not be uploaded to the deployment bucket.",
		DocURL:   "https://husk.build/docs/errors/E402",
	},
	"E403": {
		Category: CategoryDeploy,
		Message:  "No deployment target configured",
		Detail:   "husk.json has no deploy.bucket and none was given on the command line.",
		DocURL:   "https://husk.build/docs/errors/E403",
	},
	"E404": {
		Category: CategoryDeploy,
		Message:  "Nothing to deploy",
		Detail:   "The build output directory is missing or empty. Run 'husk build' first.",
		DocURL:   "https://husk.build/docs/errors/E404",
	},

	// ============================================
	// CLI Errors (E500-E599)
	// ============================================

	"E501": {
		Category: CategoryCLI,
		Message:  "Project directory already exists",
		Detail:   "A directory with this name already exists.",
		DocURL:   "https://husk.build/docs/errors/E501",
	},
	"E502": {
		Category: CategoryCLI,
		Message:  "Invalid project name",
		Detail:   "Project names must be non-empty and contain no path separators.",
		DocURL:   "https://husk.build/docs/errors/E502",
	},
	"E503": {
		Category: CategoryCLI,
		Message:  "Entry document missing",
		Detail:   "A resolved entry point does not exist on disk.",
		DocURL:   "https://husk.build/docs/errors/E503",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
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
