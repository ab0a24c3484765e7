package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/starford/promptloom/internal/client"
	"github.com/starford/promptloom/internal/composer"
	"github.com/starford/promptloom/internal/models"
)

func composeCommand() *cli.Command {
	return &cli.Command{
		Name:      "compose",
		Usage:     "Chain prompts from a running server and print the combined text",
		ArgsUsage: "PROMPT_ID...",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "url",
				Usage:   "Server base URL",
				Value:   "http://localhost:8080",
				Sources: cli.EnvVars("PROMPTLOOM_URL"),
			},
			&cli.StringFlag{
				Name:    "token",
				Usage:   "Bearer token for servers running with auth",
				Sources: cli.EnvVars("AUTH_TOKEN"),
			},
			&cli.StringSliceFlag{
				Name:  "move",
				Usage: "Move the item at SRC to DST, as SRC:DST (repeatable, applied in order)",
			},
			&cli.StringFlag{
				Name:  "save",
				Usage: "Save the result as a combination with this name",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ids, err := parseIDs(cmd.Args().Slice())
			if err != nil {
				return err
			}
			var moves [][2]int
			for _, m := range cmd.StringSlice("move") {
				mv, err := parseMove(m)
				if err != nil {
					return err
				}
				moves = append(moves, mv)
			}
			opts := []client.Option{}
			if tok := cmd.String("token"); tok != "" {
				opts = append(opts, client.WithToken(tok))
			}
			c, err := client.New(cmd.String("url"), opts...)
			if err != nil {
				return err
			}
			return runCompose(ctx, c, ids, moves, cmd.String("save"), cmd.Root().Writer, cmd.Root().ErrWriter)
		},
	}
}

// promptSource is the part of the client compose needs.
type promptSource interface {
	composer.Bridge
	GetPrompt(ctx context.Context, id int64) (*models.Prompt, error)
}

func runCompose(ctx context.Context, src promptSource, ids []int64, moves [][2]int, saveAs string, out, errOut io.Writer) error {
	comp := composer.New(src, composer.WithLogger(slog.Default()))
	for _, id := range ids {
		p, err := src.GetPrompt(ctx, id)
		if err != nil {
			return fmt.Errorf("fetch prompt %d: %w", id, err)
		}
		if _, err := comp.Add(composer.CandidateFromPrompt(*p)); err != nil {
			return fmt.Errorf("add prompt %d: %w", id, err)
		}
	}
	for _, mv := range moves {
		if !comp.Move(mv[0], mv[1]) {
			fmt.Fprintf(errOut, "move %d:%d ignored\n", mv[0], mv[1])
		}
	}

	fmt.Fprintln(out, comp.CombinedText())

	if saveAs == "" {
		return nil
	}
	saved, err := comp.SaveAs(ctx, saveAs)
	if err != nil {
		return err
	}
	fmt.Fprintf(errOut, "saved combination %d %q\n", saved.ID, saved.Name)
	return nil
}

func parseIDs(args []string) ([]int64, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("at least one prompt id is required")
	}
	ids := make([]int64, 0, len(args))
	for _, a := range args {
		id, err := strconv.ParseInt(a, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid prompt id %q", a)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseMove(s string) ([2]int, error) {
	src, dst, ok := strings.Cut(s, ":")
	if !ok {
		return [2]int{}, fmt.Errorf("invalid move %q: want SRC:DST", s)
	}
	from, err1 := strconv.Atoi(strings.TrimSpace(src))
	to, err2 := strconv.Atoi(strings.TrimSpace(dst))
	if err1 != nil || err2 != nil {
		return [2]int{}, fmt.Errorf("invalid move %q: positions must be integers", s)
	}
	return [2]int{from, to}, nil
}
