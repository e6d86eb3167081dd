package cli

import (
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"taskforge/internal/config"
	"taskforge/internal/target"
)

// timeUnit is the rounding granularity for reported durations.
const timeUnit = time.Millisecond

// renderHelp lists documented targets grouped under their section headers,
// in declaration order. Purely presentational.
func renderHelp(tf *config.Taskfile, reg *target.Registry) {
	if tf.Project.Name != "" {
		out.Println("Available targets for %s:", tf.Project.Name)
	} else {
		out.Println("Available targets:")
	}

	titleCase := cases.Title(language.English)
	for _, entry := range reg.Documented() {
		if entry.Section != "" {
			out.Section(titleCase.String(entry.Section))
			continue
		}
		out.HelpEntry(entry.Name, entry.Desc)
	}
	out.Println("")
}

// printUsage prints the CLI usage text.
func printUsage() {
	out.Println("Usage: taskforge [flags] [target ...]")
	out.Println("")
	out.Println("Runs the requested targets and their prerequisites in dependency order.")
	out.Println("With no targets, runs the taskfile's default target.")
	out.Println("")
	out.Println("Flags:")
	out.Println("  -f, --file <path>      taskfile to use (default: discovered taskfile.yml)")
	out.Println("  -C, --directory <dir>  start taskfile discovery from this directory")
	out.Println("  -q, --quiet            suppress progress output")
	out.Println("  -h, --help             show this help")
	out.Println("      --version          show version")
	out.Println("")
	out.Println("Built-in targets:")
	out.Println("  help     list documented targets")
	out.Println("  targets  list every registered target")
	out.Println("  version  show version")
}
