// Package explore implements "cilgraft explore": a read-only diagnostic
// REPL that reports what the resolver policy would decide for a type
// full name and what the clone maps already contain, without performing
// any real clone. Grounded on internal/repl/repl.go's liner-driven loop
// (history file, completer, prompt) and its fatih/color conventions,
// stripped down to a single query/answer cycle.
package explore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	"github.com/cilgraft/cilgraft/internal/clonemap"
	"github.com/cilgraft/cilgraft/internal/resolve"
)

var (
	green = color.New(color.FgGreen).SprintFunc()
	red   = color.New(color.FgRed).SprintFunc()
	cyan  = color.New(color.FgCyan).SprintFunc()
	bold  = color.New(color.Bold).SprintFunc()
	dim   = color.New(color.Faint).SprintFunc()
)

// Explorer answers "mergeable or external" and "already cloned" queries
// against a live classifier and clone map. It clones nothing and leaves
// the clone map untouched; a mergeability query goes through the
// classifier's policy, which may open and register the queried assembly
// or record a negative cache entry.
type Explorer struct {
	Classifier *resolve.Classifier
	Maps       *clonemap.Maps
}

// Start runs the explore REPL until EOF or ":quit".
func (e *Explorer) Start(out io.Writer) {
	line := liner.NewLiner()
	defer line.Close()

	historyFile := filepath.Join(os.TempDir(), ".cilgraft_explore_history")
	if f, err := os.Open(historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}

	fmt.Fprintf(out, "%s\n", bold("cilgraft explore"))
	fmt.Fprintln(out, dim("Enter 'assembly!Namespace.Type' to check mergeability, or a bare source full name to check the clone map. :quit to exit."))

	line.SetCompleter(func(in string) (c []string) {
		if strings.HasPrefix(in, ":") {
			for _, cmd := range []string{":help", ":quit"} {
				if strings.HasPrefix(cmd, in) {
					c = append(c, cmd)
				}
			}
		}
		return
	})

	for {
		input, err := line.Prompt("cilgraft> ")
		if err == io.EOF {
			fmt.Fprintln(out, green("Goodbye!"))
			break
		}
		if err != nil {
			fmt.Fprintf(out, "%s: %v\n", red("Error"), err)
			continue
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		switch input {
		case ":quit":
			return
		case ":help":
			fmt.Fprintln(out, dim("Enter 'assembly!Namespace.Type' to query the resolver, or a bare source full name to check the clone map."))
		default:
			e.answer(out, input)
		}
	}
}

func (e *Explorer) answer(out io.Writer, query string) {
	if cloned, ok := e.Maps.LookupType(query); ok {
		fmt.Fprintf(out, "%s already cloned as %s\n", cyan(query), green(cloned.FullName()))
		return
	}

	assembly, typeFull, ok := splitAssemblyQuery(query)
	if !ok {
		fmt.Fprintln(out, dim("not yet cloned; provide 'assembly!Type' to check mergeability"))
		return
	}
	if e.Classifier.IsExternal(nil, assembly) {
		fmt.Fprintf(out, "%s in %s: %s\n", cyan(typeFull), assembly, red("external"))
		return
	}
	fmt.Fprintf(out, "%s in %s: %s\n", cyan(typeFull), assembly, green("mergeable"))
}

func splitAssemblyQuery(query string) (assembly, typeFull string, ok bool) {
	bang := strings.IndexByte(query, '!')
	if bang < 0 {
		return "", "", false
	}
	return query[:bang], query[bang+1:], true
}
