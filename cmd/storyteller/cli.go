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

	"storyforge/internal/models"
	"storyforge/internal/session"
)

const helpText = `Welcome to the AI Story Generator
Create a unique, illustrated adventure, one step at a time.

1. Use /language <name> and /level <1-5> to select a language and writing style.
2. Write a single sentence to begin your epic tale.
3. After each chapter, choose one of the AI's paths, or write your own to continue the journey!

Commands: /restart, /quit. Press Ctrl-C while a chapter is loading to start over.`

// cli - терминальный интерфейс поверх session.Session.
type cli struct {
	sess       *session.Session
	out        io.Writer
	interrupts <-chan os.Signal
}

type outcome struct {
	story *models.StoryData
	err   error
}

// run читает команды построчно до /quit, EOF или Ctrl-C вне загрузки.
func (c *cli) run(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- strings.TrimSpace(scanner.Text())
		}
	}()

	fmt.Fprintln(c.out, helpText)
	for {
		c.printPrompt()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.interrupts:
			fmt.Fprintln(c.out)
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if quit := c.handle(ctx, line); quit {
				return nil
			}
		}
	}
}

func (c *cli) printPrompt() {
	language, level := c.sess.Settings()
	switch c.sess.State().Phase {
	case session.PhaseDisplay:
		fmt.Fprint(c.out, "\nChoose 1 or 2, or write what happens next > ")
	default:
		fmt.Fprintf(c.out, "\n[%s, style %d] Start your story > ", language, level)
	}
}

// handle выполняет одну команду. Возвращает true для выхода.
func (c *cli) handle(ctx context.Context, line string) bool {
	if line == "" {
		return false
	}

	switch {
	case line == "/quit":
		return true
	case line == "/restart":
		if err := c.sess.Restart(); err != nil {
			fmt.Fprintln(c.out, "Nothing to restart.")
			return false
		}
		fmt.Fprintln(c.out, session.InitialText)
		return false
	case strings.HasPrefix(line, "/language "):
		c.report(c.sess.SetLanguage(strings.TrimPrefix(line, "/language ")))
		return false
	case strings.HasPrefix(line, "/level "):
		level, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "/level ")))
		if err != nil || level < models.MinStyleLevel || level > models.MaxStyleLevel {
			fmt.Fprintf(c.out, "Writing style must be a number from %d to %d.\n", models.MinStyleLevel, models.MaxStyleLevel)
			return false
		}
		c.report(c.sess.SetLevel(level))
		return false
	case strings.HasPrefix(line, "/"):
		fmt.Fprintln(c.out, "Unknown command. Use /restart or /quit.")
		return false
	}

	if c.sess.State().Phase == session.PhaseDisplay {
		if line == "1" || line == "2" {
			index := int(line[0] - '0')
			c.generate(ctx, func(ctx context.Context) (*models.StoryData, error) {
				return c.sess.Choose(ctx, index)
			})
			return false
		}
		c.generate(ctx, func(ctx context.Context) (*models.StoryData, error) {
			return c.sess.Continue(ctx, line)
		})
		return false
	}

	c.generate(ctx, func(ctx context.Context) (*models.StoryData, error) {
		return c.sess.Start(ctx, line)
	})
	return false
}

// generate запускает запрос и ждет либо ответа, либо Ctrl-C (Restart).
func (c *cli) generate(ctx context.Context, fn func(context.Context) (*models.StoryData, error)) {
	done := make(chan outcome, 1)
	go func() {
		story, err := fn(ctx)
		done <- outcome{story, err}
	}()

	fmt.Fprintln(c.out, session.LoadingText)
	select {
	case res := <-done:
		c.render(res)
	case <-c.interrupts:
		if err := c.sess.Restart(); err == nil {
			fmt.Fprintln(c.out, "\nStory restarted.")
			fmt.Fprintln(c.out, session.InitialText)
		}
		// Опоздавший ответ вернет ErrStale, его не показываем.
		go func() { <-done }()
	}
}

func (c *cli) render(res outcome) {
	switch {
	case res.err == nil:
		fmt.Fprintf(c.out, "\n%s\n\nIllustration: %s\n\n", res.story.Story, res.story.ImageURL)
		for i, choice := range res.story.Choices() {
			fmt.Fprintf(c.out, "  [%d] %s\n", i+1, choice)
		}
		fmt.Fprintln(c.out, "...or write what happens next.")
	case errors.Is(res.err, session.ErrStale):
	case errors.Is(res.err, session.ErrBusy), errors.Is(res.err, session.ErrEmptyPrompt),
		errors.Is(res.err, session.ErrInvalidTransition), errors.Is(res.err, session.ErrInvalidChoice):
		fmt.Fprintln(c.out, res.err)
	default:
		fmt.Fprintln(c.out, session.FailureAlert)
		fmt.Fprintf(c.out, "(%v)\n", res.err)
		fmt.Fprintln(c.out, c.sess.State().Text())
	}
}

func (c *cli) report(err error) {
	if err != nil {
		fmt.Fprintln(c.out, err)
		return
	}
	language, level := c.sess.Settings()
	fmt.Fprintf(c.out, "Language: %s, writing style: %d\n", language, level)
}
