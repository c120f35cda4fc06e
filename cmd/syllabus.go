package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/xlab/treeprint"
	"gopkg.in/yaml.v3"

	"github.com/karolswdev/careplan/internal/syllabus"
)

func newSyllabusCmd() *cobra.Command {
	var asSpecs bool
	syllabusCmd := &cobra.Command{
		Use:   "syllabus [subject]",
		Short: "List the subjects, papers and chapters you can plan for",
		Long: `Lists the syllabus catalog as a tree. The built-in catalog is used unless
a syllabus.yaml exists in the configuration directory. Pass a subject name to
list only that subject. With --specs, every chapter is printed in the
Subject/Paper/Chapter form accepted by 'careplan generate --chapter'.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}
			subject := ""
			if len(args) == 1 {
				subject = args[0]
			}
			return syllabusRunE(&DefaultConfigProvider{}, cmd.OutOrStdout(), format, subject, asSpecs)
		},
	}
	syllabusCmd.Flags().BoolVar(&asSpecs, "specs", false, "Print one Subject/Paper/Chapter line per chapter")
	return syllabusCmd
}

// syllabusRunE contains the core logic for the syllabus command.
func syllabusRunE(cp ConfigProvider, out io.Writer, format, subject string, asSpecs bool) error {
	catalog, err := cp.LoadSyllabus()
	if err != nil {
		return fmt.Errorf("error loading syllabus: %w", err)
	}

	subjects := catalog.Subjects
	if subject != "" {
		s, ok := catalog.Subject(subject)
		if !ok {
			return fmt.Errorf("%w: unknown subject %q", syllabus.ErrUnknownChapter, subject)
		}
		subjects = []syllabus.Subject{*s}
	}
	view := syllabus.Catalog{Subjects: subjects}

	switch {
	case asSpecs:
		for _, s := range subjects {
			for _, p := range s.Papers {
				for _, ch := range p.Chapters {
					fmt.Fprintln(out, syllabus.SelectedChapter{Subject: s.Name, Paper: p.Name, ChapterName: ch}.String())
				}
			}
		}
	case format == outputJSON:
		data, err := json.MarshalIndent(view, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format syllabus as JSON: %w", err)
		}
		fmt.Fprintln(out, string(data))
	case format == outputYAML:
		data, err := yaml.Marshal(view)
		if err != nil {
			return fmt.Errorf("failed to format syllabus as YAML: %w", err)
		}
		fmt.Fprint(out, string(data))
	default:
		fmt.Fprint(out, syllabusTree(view).String())
	}
	return nil
}

func syllabusTree(c syllabus.Catalog) treeprint.Tree {
	tree := treeprint.NewWithRoot(fmt.Sprintf("Syllabus (%d chapters)", c.ChapterCount()))
	for _, s := range c.Subjects {
		subject := tree.AddBranch(s.Name)
		for _, p := range s.Papers {
			paper := subject.AddBranch(p.Name)
			for _, ch := range p.Chapters {
				paper.AddNode(ch)
			}
		}
	}
	return tree
}
