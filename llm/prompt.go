package llm

import (
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/kbukum/llmaid/config"
	"github.com/kbukum/llmaid/errors"
)

// PromptFile returns a copy of the client bound to the contents of the
// named files, read from the resolved prompt directory (LLMAID_PROMPT_DIR
// or WithPromptDir). Several files are joined with a newline after one
// trailing newline is removed from each.
func (c *Client) PromptFile(names ...string) (*Client, error) {
	if len(names) == 0 {
		return nil, errors.Config(config.FieldPromptDir, "no prompt file named")
	}
	s, err := config.ResolvePartial(c.defaults, c.env, c.overrides, config.Overrides{})
	if err != nil {
		return nil, err
	}
	if s.PromptDir == "" {
		return nil, errors.Config(config.FieldPromptDir, "is required to load prompt files; set it on the client or "+config.EnvPromptDir)
	}

	tmpl, err := readPrompts(os.DirFS(s.PromptDir), s.PromptDir, names)
	if err != nil {
		return nil, err
	}
	return c.PromptTemplate(tmpl), nil
}

// readPrompts reads names from fsys and joins them.
func readPrompts(fsys fs.FS, dir string, names []string) (string, error) {
	parts := make([]string, 0, len(names))
	for _, name := range names {
		clean := path.Clean(strings.TrimPrefix(name, "/"))
		data, err := fs.ReadFile(fsys, clean)
		if err != nil {
			full := path.Join(dir, name)
			return "", errors.Config(config.FieldPromptDir, "cannot read prompt file "+full).
				WithCause(err).
				WithDetail("path", full)
		}
		parts = append(parts, trimNewline(string(data)))
	}
	return strings.Join(parts, "\n"), nil
}

func trimNewline(s string) string {
	s = strings.TrimSuffix(s, "\n")
	return strings.TrimSuffix(s, "\r")
}
