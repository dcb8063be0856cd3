package config

import (
	"fmt"
	"strings"
)

// DashboardURL is where a project's URL and anon key are found.
const DashboardURL = "https://supabase.com/dashboard"

// SetupSteps lists what an operator must do before the supabase backend
// can start.
func SetupSteps() []string {
	return []string{
		"Open the Supabase dashboard at " + DashboardURL,
		"Create a project or pick an existing one",
		"Copy the project URL and the anon public key from Settings > API",
		"Add them to .env:\n\n    VITE_SUPABASE_URL=your_project_url\n    VITE_SUPABASE_ANON_KEY=your_anon_key",
		"Or store them locally:\n\n    storefront config:set supabase_url your_project_url\n    storefront config:set supabase_anon_key your_anon_key",
	}
}

// SetupInstructions renders SetupSteps as a numbered plain-text notice.
func SetupInstructions() string {
	var b strings.Builder
	b.WriteString("Supabase configuration required\n\n")
	for i, s := range SetupSteps() {
		fmt.Fprintf(&b, "%d. %s\n", i+1, s)
	}
	return b.String()
}
