// Command survey runs the AI readiness questionnaire in a terminal.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/stemsi/aiready-backend/internal/config"
	"github.com/stemsi/aiready-backend/internal/logger"
	"github.com/stemsi/aiready-backend/internal/model"
	"github.com/stemsi/aiready-backend/internal/repository"
	"github.com/stemsi/aiready-backend/internal/service"
	"golang.org/x/term"
)

// terminalLogLevel keeps info-level service logs out of the prompts.
const terminalLogLevel = "warn"

func main() {
	cfg := config.Load()
	log := logger.New(os.Stderr, terminalLogLevel, "pretty")

	app, err := newSurveyApp(cfg, log, os.Stdin, os.Stdout, func() (string, error) {
		b, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		return string(b), err
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to start survey")
	}

	if err := app.run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newSurveyApp(
	cfg *config.Config,
	log zerolog.Logger,
	in io.Reader,
	out io.Writer,
	readPassword func() (string, error),
) (*surveyApp, error) {
	catalog, err := model.LoadCatalog()
	if err != nil {
		return nil, err
	}

	secret, err := service.NewSecretVerifier(cfg)
	if err != nil {
		return nil, err
	}

	sessions := repository.NewMemorySessionRepository()
	return &surveyApp{
		sessions:     service.NewSessionService(cfg, sessions),
		gate:         service.NewGateService(sessions, secret, log),
		scoring:      service.NewScoringService(catalog, log),
		catalog:      catalog,
		in:           bufio.NewReader(in),
		out:          out,
		readPassword: readPassword,
	}, nil
}

type surveyApp struct {
	sessions *service.SessionService
	gate     *service.GateService
	scoring  *service.ScoringService
	catalog  *model.Catalog

	in           *bufio.Reader
	out          io.Writer
	readPassword func() (string, error)
}

func (a *surveyApp) run(ctx context.Context) error {
	opened, err := a.sessions.Open(ctx)
	if err != nil {
		return err
	}

	if err := a.unlock(ctx, opened.SessionID); err != nil {
		return err
	}

	req, err := a.collect()
	if err != nil {
		return err
	}

	result, err := a.scoring.Evaluate(req)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, "AI Readiness Score:")
	fmt.Fprintln(a.out, result.ScoreText)
	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, "Recommendations:")
	fmt.Fprintln(a.out, result.Recommendation)
	return nil
}

// unlock prompts until the gate accepts the password.
func (a *surveyApp) unlock(ctx context.Context, sessionID string) error {
	for {
		fmt.Fprint(a.out, "Password: ")
		pw, err := a.readPassword()
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}

		_, err = a.gate.Unlock(ctx, sessionID, pw)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, service.ErrIncorrectSecret):
			fmt.Fprintln(a.out, "Password incorrect")
		default:
			return err
		}
	}
}

func (a *surveyApp) collect() (*model.SubmitSurveyRequest, error) {
	fmt.Fprintln(a.out, "AI Readiness Survey")

	var (
		req model.SubmitSurveyRequest
		err error
	)

	if req.Name, err = a.ask("1. Name of the person answering"); err != nil {
		return nil, err
	}
	if req.Organization, err = a.ask("2. Organization Name"); err != nil {
		return nil, err
	}
	if req.Industry, err = a.choose("3. Industry Vertical", a.catalog.Industries); err != nil {
		return nil, err
	}
	if req.JobLevel, err = a.choose("4. Your job level", a.catalog.JobLevels); err != nil {
		return nil, err
	}
	if req.Revenue, err = a.choose("5. Your company revenue", a.catalog.RevenueBands); err != nil {
		return nil, err
	}

	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, "Survey Questions:")

	req.Answers = make(model.AnswerSet, len(a.catalog.Questions))
	for _, q := range a.catalog.Questions {
		labels := make([]string, len(q.Choices))
		descriptions := make([]string, len(q.Choices))
		for i, ch := range q.Choices {
			labels[i] = ch.Label
			descriptions[i] = ch.Description
		}

		idx, err := a.chooseIndex(q.ID+". "+q.Prompt, descriptions)
		if err != nil {
			return nil, err
		}
		req.Answers[q.ID] = labels[idx]
	}

	if req.ProblemAreas, err = a.chooseMany("Typical areas/problems that you face with", a.catalog.ProblemAreas); err != nil {
		return nil, err
	}

	return &req, nil
}

func (a *surveyApp) ask(prompt string) (string, error) {
	fmt.Fprintf(a.out, "%s: ", prompt)
	line, err := a.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (a *surveyApp) choose(prompt string, options []string) (string, error) {
	idx, err := a.chooseIndex(prompt, options)
	if err != nil {
		return "", err
	}
	return options[idx], nil
}

// chooseIndex re-prompts until a listed number is entered. An empty answer
// picks the first option.
func (a *surveyApp) chooseIndex(prompt string, options []string) (int, error) {
	fmt.Fprintln(a.out, prompt)
	for i, o := range options {
		fmt.Fprintf(a.out, "  %d) %s\n", i+1, o)
	}

	for {
		raw, err := a.ask(fmt.Sprintf("Choose 1-%d", len(options)))
		if err != nil {
			return 0, err
		}
		if raw == "" {
			return 0, nil
		}
		n, err := strconv.Atoi(raw)
		if err == nil && n >= 1 && n <= len(options) {
			return n - 1, nil
		}
		fmt.Fprintln(a.out, "Please enter one of the listed numbers.")
	}
}

// chooseMany accepts a comma-separated list of option numbers; empty selects none.
func (a *surveyApp) chooseMany(prompt string, options []string) ([]string, error) {
	fmt.Fprintln(a.out, prompt)
	for i, o := range options {
		fmt.Fprintf(a.out, "  %d) %s\n", i+1, o)
	}

	for {
		raw, err := a.ask("Choose any, comma separated")
		if err != nil {
			return nil, err
		}
		if raw == "" {
			return nil, nil
		}

		picked, ok := parseSelection(raw, options)
		if ok {
			return picked, nil
		}
		fmt.Fprintln(a.out, "Please enter listed numbers separated by commas.")
	}
}

func parseSelection(raw string, options []string) ([]string, bool) {
	seen := make(map[int]bool)
	var picked []string
	for _, part := range strings.Split(raw, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 1 || n > len(options) {
			return nil, false
		}
		if seen[n] {
			continue
		}
		seen[n] = true
		picked = append(picked, options[n-1])
	}
	return picked, true
}
