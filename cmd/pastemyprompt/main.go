package main

import (
	"os"
	"strings"

	"github.com/AstralShardio/pastemyprompt/internal/cli"
	"github.com/AstralShardio/pastemyprompt/internal/store"
)

func isPromptID(s string) bool {
	s = strings.TrimSpace(s)
	prefix := store.PromptIDPrefix + "-"
	return strings.HasPrefix(s, prefix) && len(s) > len(prefix)
}

// rewriteDirectCopyArgs turns `pastemyprompt <prompt-id>` into `pastemyprompt prompts copy <prompt-id>`.
// Cobra treats the first positional token as a subcommand, so argv is rewritten before parsing.
// Persistent flags may come first, so the first positional token is searched for.
func rewriteDirectCopyArgs(argv []string) []string {
	if len(argv) < 2 {
		return argv
	}
	valueFlags := map[string]bool{
		"--dir":    true,
		"--config": true,
		"--format": true,
	}

	insert := func(i int) []string {
		out := make([]string, 0, len(argv)+2)
		out = append(out, argv[:i]...)
		out = append(out, "prompts", "copy")
		return append(out, argv[i:]...)
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		switch {
		case a == "":
			continue
		case a == "--":
			if i+1 < len(argv) && isPromptID(argv[i+1]) {
				return insert(i + 1)
			}
			return argv
		case strings.HasPrefix(a, "-"):
			// Unknown and bool flags never consume the next token.
			if !strings.Contains(a, "=") && valueFlags[a] {
				i++
			}
			continue
		case isPromptID(a):
			return insert(i)
		default:
			return argv
		}
	}
	return argv
}

func main() {
	os.Args = rewriteDirectCopyArgs(os.Args)

	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
