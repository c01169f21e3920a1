package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	g "github.com/reoring/goshadow"
)

// report summarizes the Meta of one input.
type report struct {
	Input   string        `json:"input"`
	Errors  []issueEntry  `json:"errors"`
	Remarks []remarkEntry `json:"remarks"`
}

type issueEntry struct {
	Path    string            `json:"path"`
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Params  map[string]string `json:"params,omitempty"`
}

type remarkEntry struct {
	Path           string `json:"path"`
	Type           string `json:"type"`
	Rule           string `json:"rule"`
	Start          *int   `json:"start,omitempty"`
	End            *int   `json:"end,omitempty"`
	OriginalLength *int   `json:"original_length,omitempty"`
}

func newReport(name string, doc g.Annotated[g.Value]) report {
	tree := g.ExtractMeta(doc)
	r := report{Input: name, Errors: []issueEntry{}, Remarks: []remarkEntry{}}
	for _, it := range tree.Issues() {
		r.Errors = append(r.Errors, issueEntry{Path: it.Path, Code: it.Code, Message: it.Message, Params: it.Params})
	}
	tree.Walk(func(p g.Path, m *g.Meta) {
		var origLen *int
		if n, ok := m.OriginalLength(); ok {
			origLen = &n
		}
		for _, rem := range m.Remarks() {
			e := remarkEntry{Path: p.Pointer(), Type: rem.Type.String(), Rule: rem.RuleID, OriginalLength: origLen}
			if rem.Range != nil {
				e.Start, e.End = &rem.Range.Start, &rem.Range.End
			}
			r.Remarks = append(r.Remarks, e)
		}
	})
	return r
}

func newExplainCmd(a *app) *cobra.Command {
	var (
		asJSON       bool
		fromDocument bool
		failOnIssues bool
	)

	cmd := &cobra.Command{
		Use:   "explain [file...]",
		Short: "Report the errors and remarks recorded for each input",
		Long: `Run the same pipeline as "parse" and print what the metadata says about
each input: validation errors with localized messages, and the remarks left
by scrubbing rules.

With --document the inputs are combined documents previously written by
"goshadow parse" and their "_meta" entries are explained as-is.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.pipeline()
			if err != nil {
				return err
			}
			p.documents = fromDocument
			results, err := p.runAll(cmd.Context(), args, a.stdin)
			if err != nil {
				return err
			}
			reports := make([]report, 0, len(results))
			issues := 0
			for _, r := range results {
				rep := newReport(r.name, r.doc)
				issues += len(rep.Errors)
				reports = append(reports, rep)
			}
			if asJSON {
				enc := json.NewEncoder(a.stdout)
				enc.SetIndent("", "  ")
				if err := enc.Encode(reports); err != nil {
					return err
				}
			} else {
				for _, rep := range reports {
					printReport(a.stdout, rep, a.cfg.NoColor)
				}
			}
			if failOnIssues && issues > 0 {
				return errIssuesFound
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output reports as JSON")
	cmd.Flags().BoolVar(&fromDocument, "document", false, "inputs are combined documents with a _meta entry")
	cmd.Flags().BoolVar(&failOnIssues, "fail-on-issues", false, "exit with status 2 when any input has errors")
	return cmd
}

func printReport(w io.Writer, rep report, noColor bool) {
	header := color.New(color.Bold)
	errColor := color.New(color.FgRed)
	remColor := color.New(color.FgYellow)
	okColor := color.New(color.FgGreen)
	dim := color.New(color.Faint)
	if noColor {
		for _, c := range []*color.Color{header, errColor, remColor, okColor, dim} {
			c.DisableColor()
		}
	}

	header.Fprintf(w, "%s\n", rep.Input)
	if len(rep.Errors) == 0 && len(rep.Remarks) == 0 {
		okColor.Fprintf(w, "  ✓ clean\n")
		return
	}
	for _, e := range rep.Errors {
		errColor.Fprintf(w, "  ✗ %s  %s: %s", e.Path, e.Code, e.Message)
		if len(e.Params) > 0 {
			dim.Fprintf(w, " (%s)", formatParams(e.Params))
		}
		fmt.Fprintln(w)
	}
	for _, r := range rep.Remarks {
		remColor.Fprintf(w, "  ~ %s  %s by %s", r.Path, r.Type, r.Rule)
		if r.Start != nil {
			dim.Fprintf(w, " [%d,%d)", *r.Start, *r.End)
		}
		if r.OriginalLength != nil {
			dim.Fprintf(w, " len=%d", *r.OriginalLength)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "  %d error(s), %d remark(s)\n", len(rep.Errors), len(rep.Remarks))
}

func formatParams(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+params[k])
	}
	return strings.Join(parts, ", ")
}
