package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// LoadKDL reads and parses a `.cxxd.kdl` document at kdlPath, overlaying it
// onto the defaults for projectRoot. A missing file is not an error: the
// caller gets Default(projectRoot) back unchanged.
func LoadKDL(kdlPath, projectRoot string) (*Config, error) {
	cfg := Default(projectRoot)

	content, err := os.ReadFile(kdlPath)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", kdlPath, err)
	}

	doc, err := kdl.Parse(strings.NewReader(string(content)))
	if err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", kdlPath, err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "project":
			for _, cn := range n.Children {
				assignSimpleString(cn, "root", func(v string) { cfg.Project.Root = v })
				assignSimpleString(cn, "compiler_flags", func(v string) { cfg.Project.CompilerFlags = v })
			}
		case "index":
			for _, cn := range n.Children {
				assignSimpleInt(cn, "worker_count", func(v int) { cfg.Index.WorkerCount = v })
				assignSimpleInt(cn, "cache_capacity", func(v int) { cfg.Index.CacheCapacity = v })
				if nodeName(cn) == "extensions" {
					var exts []string
					for _, a := range cn.Arguments {
						if s, ok := a.Value.(string); ok {
							exts = append(exts, s)
						}
					}
					if len(exts) > 0 {
						cfg.Index.Extensions = exts
					}
				}
			}
		case "tools":
			for _, cn := range n.Children {
				assignSimpleString(cn, "format_binary", func(v string) { cfg.Tools.FormatBinary = v })
				assignSimpleString(cn, "format_config", func(v string) { cfg.Tools.FormatConfig = v })
				assignSimpleString(cn, "lint_binary", func(v string) { cfg.Tools.LintBinary = v })
				assignSimpleString(cn, "lint_database", func(v string) { cfg.Tools.LintDatabase = v })
				assignSimpleString(cn, "build_dir", func(v string) { cfg.Tools.BuildDir = v })
				assignSimpleString(cn, "build_tag", func(v string) { cfg.Tools.BuildTag = v })
			}
		case "log":
			for _, cn := range n.Children {
				assignSimpleString(cn, "path", func(v string) { cfg.Log.Path = v })
			}
		}
	}

	if cfg.Project.Root != "" && !filepath.IsAbs(cfg.Project.Root) {
		cfg.Project.Root = filepath.Clean(filepath.Join(filepath.Dir(kdlPath), cfg.Project.Root))
	}

	return cfg, nil
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	s, ok := n.Arguments[0].Value.(string)
	return s, ok
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func assignSimpleString(n *document.Node, target string, set func(string)) {
	if nodeName(n) == target {
		if s, ok := firstStringArg(n); ok {
			set(s)
		}
	}
}

func assignSimpleInt(n *document.Node, target string, set func(int)) {
	if nodeName(n) == target {
		if v, ok := firstIntArg(n); ok {
			set(v)
		}
	}
}
