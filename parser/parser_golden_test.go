package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/tools/txtar"

	"github.com/koto-lang/koto-go/ast"
)

// kindNames covers only the node kinds exercised by testdata/*.txtar;
// it stands in for a Stringer on ast.Kind that the grammar doesn't
// otherwise need.
var kindNames = map[ast.Kind]string{
	ast.MainBlock: "MainBlock",
	ast.Assign:    "Assign",
	ast.BinaryOp:  "BinaryOp",
	ast.Block:     "Block",
	ast.Number:    "Number",
	ast.Id:        "Id",
}

func kindName(k ast.Kind) string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// topLevelStatements returns the MainBlock's immediate statements,
// unwrapping the single-statement collapse that blockOf performs.
func topLevelStatements(arena *ast.Arena, mainBlock *ast.Node) []ast.Index {
	body := arena.Node(mainBlock.Body)
	if body.Kind == ast.Block {
		return body.Children
	}
	return []ast.Index{mainBlock.Body}
}

func summarize(arena *ast.Arena) string {
	entry := arena.Node(arena.EntryPoint())
	var top []string
	for _, idx := range topLevelStatements(arena, entry) {
		top = append(top, kindName(arena.Node(idx).Kind))
	}
	return fmt.Sprintf("entry=%s\ntop=[%s]\n", kindName(entry.Kind), strings.Join(top, " "))
}

func TestParserGolden(t *testing.T) {
	matches, err := filepath.Glob("testdata/*.txtar")
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) == 0 {
		t.Fatal("no testdata/*.txtar fixtures found")
	}
	for _, path := range matches {
		path := path
		t.Run(filepath.Base(path), func(t *testing.T) {
			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			archive := txtar.Parse(data)
			var source, want string
			for _, f := range archive.Files {
				switch f.Name {
				case "source.koto":
					source = string(f.Data)
				case "summary.txt":
					want = string(f.Data)
				}
			}
			if source == "" {
				t.Fatalf("%s: missing source.koto section", path)
			}

			arena, _, perr := ParseSource(source)
			if perr != nil {
				t.Fatalf("ParseSource: %v", perr)
			}
			got := summarize(arena)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("summary mismatch for %s (-want +got):\n%s", path, diff)
			}
		})
	}
}
