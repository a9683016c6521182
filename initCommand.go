package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"bundlebuilder/specification"
	"bundlebuilder/utilities/fileManagement"
	"bundlebuilder/utilities/logger"
)

// question is one value the init command asks for.
type question struct {
	Key     string
	Prompt  string
	Default string
}

// promptAnswers asks the questions interactively. Tests replace it.
var promptAnswers = promptQuestions

var errPromptCancelled = errors.New("prompt cancelled")

func (c *cli) initCmd() *cobra.Command {
	var (
		name       string
		identifier string
		version    string
		force      bool
	)
	cmd := &cobra.Command{
		Use:   "init [specification]",
		Short: "Write a new specification document",
		Long: `Write a new specification document (default application.yaml; a .toml
name writes TOML). Values not given as flags are asked for interactively.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := specPath(args)
			if fileManagement.Exists(path) && !force {
				return fmt.Errorf("%s already exists (use --force to replace it)", path)
			}

			doc := specification.Document{
				Name:       name,
				Identifier: identifier,
				Version:    version,
				Sources:    []string{"lib/**/*.rb"},
				Resources:  []string{"resources/**/*.*"},
			}

			var questions []question
			if doc.Name == "" {
				questions = append(questions, question{Key: "name", Prompt: "Application name"})
			}
			if doc.Identifier == "" {
				questions = append(questions, question{Key: "identifier", Prompt: "Bundle identifier (e.g. com.example.app)"})
			}
			if doc.Version == "" {
				questions = append(questions, question{Key: "version", Prompt: "Version", Default: specification.DefaultVersion})
			}
			if len(questions) > 0 {
				answers, err := promptAnswers(questions, c.stderr)
				if err != nil {
					return err
				}
				applyAnswers(&doc, questions, answers)
			}

			// Validate before anything is written
			absolute, err := filepath.Abs(path)
			if err != nil {
				return err
			}
			if _, err := specification.New(doc, filepath.Dir(absolute)); err != nil {
				return err
			}

			data, err := specification.Encode(doc, specification.FormatOf(path))
			if err != nil {
				return &ExitError{Code: 2, Message: fmt.Sprintf("cannot write %s: %v", path, err)}
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("write specification: %w", err)
			}
			logger.Info("Wrote specification %s", absolute)
			fmt.Fprintln(c.stdout, absolute)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Application name")
	cmd.Flags().StringVar(&identifier, "identifier", "", "Bundle identifier")
	cmd.Flags().StringVar(&version, "version", "", "Application version")
	cmd.Flags().BoolVar(&force, "force", false, "Replace an existing document")
	return cmd
}

func applyAnswers(doc *specification.Document, questions []question, answers map[string]string) {
	for _, q := range questions {
		value := answers[q.Key]
		if value == "" {
			value = q.Default
		}
		switch q.Key {
		case "name":
			doc.Name = value
		case "identifier":
			doc.Identifier = value
		case "version":
			doc.Version = value
		}
	}
}

// promptModel is a bubbletea model that asks one question at a time.
type promptModel struct {
	questions []question
	idx       int
	inputs    []textinput.Model
	done      bool
}

func newPromptModel(questions []question) promptModel {
	inputs := make([]textinput.Model, len(questions))
	for i, q := range questions {
		ti := textinput.New()
		ti.Placeholder = q.Default
		ti.CharLimit = 256
		inputs[i] = ti
	}
	m := promptModel{
		questions: questions,
		inputs:    inputs,
	}
	if len(inputs) > 0 {
		m.inputs[0].Focus()
	}
	return m
}

func (m promptModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if m.idx < len(m.inputs)-1 {
				m.inputs[m.idx].Blur()
				m.idx++
				m.inputs[m.idx].Focus()
				return m, textinput.Blink
			}
			m.done = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.inputs[m.idx], cmd = m.inputs[m.idx].Update(msg)
	return m, cmd
}

func (m promptModel) View() string {
	if m.done || len(m.questions) == 0 {
		return ""
	}
	q := m.questions[m.idx]
	return fmt.Sprintf("%s: %s\n", q.Prompt, m.inputs[m.idx].View())
}

// answers returns the entered values keyed by question.
func (m promptModel) answers() map[string]string {
	answers := make(map[string]string, len(m.questions))
	for i, q := range m.questions {
		answers[q.Key] = m.inputs[i].Value()
	}
	return answers
}

// promptQuestions runs the prompt on the terminal, drawing to out.
func promptQuestions(questions []question, out io.Writer) (map[string]string, error) {
	if len(questions) == 0 {
		return map[string]string{}, nil
	}
	p := tea.NewProgram(newPromptModel(questions), tea.WithOutput(out))
	result, err := p.Run()
	if err != nil {
		return nil, err
	}
	final, ok := result.(promptModel)
	if !ok || !final.done {
		return nil, errPromptCancelled
	}
	return final.answers(), nil
}
