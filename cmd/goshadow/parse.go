package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	g "github.com/reoring/goshadow"
)

func newParseCmd(a *app) *cobra.Command {
	var failOnIssues bool

	cmd := &cobra.Command{
		Use:   "parse [file...]",
		Short: "Parse inputs and write them with their metadata",
		Long: `Parse JSON or YAML inputs (standard input when none or "-" is given),
validate them against --schema, apply --rules and write one document per input.

Output modes:
  clean     the payload only
  embedded  the payload with a "_meta" entry (non-object payloads are wrapped
            as {"value": ..., "_meta": ...})
  split     the payload, then the meta document on the next line`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.pipeline()
			if err != nil {
				return err
			}
			results, err := p.runAll(cmd.Context(), args, a.stdin)
			if err != nil {
				return err
			}
			issues := 0
			for _, r := range results {
				if err := writeDocument(a.stdout, r.doc, a.cfg.Mode, a.cfg.Indent); err != nil {
					return fmt.Errorf("%s: %w", r.name, err)
				}
				issues += len(g.ExtractMeta(r.doc).Issues())
			}
			if failOnIssues && issues > 0 {
				fmt.Fprintf(a.stderr, "%d issue(s) found\n", issues)
				return errIssuesFound
			}
			return nil
		},
	}
	cmd.Flags().StringP("mode", "m", "embedded", "output mode (clean, embedded, split)")
	cmd.Flags().Int("indent", 0, "indent output by this many spaces")
	cmd.Flags().BoolVar(&failOnIssues, "fail-on-issues", false, "exit with status 2 when any input has errors")
	_ = a.v.BindPFlag("output.mode", cmd.Flags().Lookup("mode"))
	_ = a.v.BindPFlag("output.indent", cmd.Flags().Lookup("indent"))
	return cmd
}

func writeDocument(w io.Writer, doc g.Annotated[g.Value], mode string, indent int) error {
	s := g.Serializable(doc)
	if indent > 0 {
		s = s.Indent("", strings.Repeat(" ", indent))
	}
	var out [][]byte
	switch mode {
	case "clean":
		payload, _, err := s.Split()
		if err != nil {
			return err
		}
		out = append(out, payload)
	case "split":
		payload, meta, err := s.Split()
		if err != nil {
			return err
		}
		out = append(out, payload, meta)
	default:
		b, err := s.MarshalJSON()
		if err != nil {
			return err
		}
		out = append(out, b)
	}
	for _, b := range out {
		if _, err := fmt.Fprintf(w, "%s\n", b); err != nil {
			return err
		}
	}
	return nil
}
