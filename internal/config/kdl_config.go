package config

import (
	"os"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"

	"github.com/standardbeagle/trecsearch/internal/codec"
	"github.com/standardbeagle/trecsearch/internal/xerrors"
)

// Load reads build and query settings from a KDL config file at path,
// layering any present "build"/"query" nodes over the documented defaults.
// A missing file is not an error: Load returns the defaults unchanged.
func Load(path string) (BuildConfig, QueryConfig, error) {
	build := DefaultBuildConfig()
	query := DefaultQueryConfig()

	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return build, query, nil
	}
	if err != nil {
		return build, query, xerrors.NewIOError("read", path, err)
	}

	doc, err := kdl.Parse(strings.NewReader(string(content)))
	if err != nil {
		return build, query, xerrors.NewFormatError("parse_config:"+path, 0, err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "build":
			applyBuildNode(&build, n)
		case "query":
			applyQueryNode(&query, n)
		}
	}
	return build, query, nil
}

func applyBuildNode(cfg *BuildConfig, n *document.Node) {
	for _, cn := range n.Children {
		switch nodeName(cn) {
		case "buffer_size":
			if v, ok := firstIntArg(cn); ok {
				cfg.BufferSize = int64(v)
			}
		case "output_entry_size":
			if v, ok := firstIntArg(cn); ok {
				cfg.OutputEntrySize = v
			}
		case "input_index_chunk_size":
			if v, ok := firstIntArg(cn); ok {
				cfg.InputIndexChunkSize = v
			}
		case "format":
			if v, ok := firstStringArg(cn); ok {
				cfg.Format = parseFormat(v)
			}
		}
	}
}

func applyQueryNode(cfg *QueryConfig, n *document.Node) {
	for _, cn := range n.Children {
		switch nodeName(cn) {
		case "cache_capacity":
			if v, ok := firstIntArg(cn); ok {
				cfg.CacheCapacity = v
			}
		case "n_results":
			if v, ok := firstIntArg(cn); ok {
				cfg.NResults = v
			}
		case "workers":
			if v, ok := firstIntArg(cn); ok {
				cfg.Workers = v
			}
		case "bm25":
			for _, bn := range cn.Children {
				switch nodeName(bn) {
				case "k1":
					if v, ok := firstFloatArg(bn); ok {
						cfg.BM25.K1 = v
					}
				case "b":
					if v, ok := firstFloatArg(bn); ok {
						cfg.BM25.B = v
					}
				}
			}
		}
	}
}

func parseFormat(s string) codec.Format {
	if strings.EqualFold(s, "bin") {
		return codec.Bin
	}
	return codec.Vbyte
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
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

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstFloatArg(n *document.Node) (float64, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}
