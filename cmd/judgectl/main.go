// judgectl drives a running judgerun server from the command line.
//
// Usage:
//
//	judgectl settings set --language python --api-key $JUDGE0_KEY
//	judgectl run --cases cases.yaml solution.py
//	judgectl cancel
//	judgectl keygen
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/gsarma/judgerun/internal/crypto"
	judgerun "github.com/gsarma/judgerun/sdk"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newApp(os.Stdout).Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.Command {
	serverFlags := []cli.Flag{
		&cli.StringFlag{Name: "server", Value: "http://localhost:8080", Usage: "judgerun base URL", Sources: cli.EnvVars("JUDGERUN_URL")},
		&cli.StringFlag{Name: "token", Usage: "API token of the server", Sources: cli.EnvVars("API_TOKEN")},
	}
	client := func(cmd *cli.Command) *judgerun.Client {
		return judgerun.New(cmd.String("server"), cmd.String("token"))
	}

	return &cli.Command{
		Name:   "judgectl",
		Usage:  "run code against test cases on a remote judge",
		Writer: out,
		Flags:  serverFlags,
		Commands: []*cli.Command{
			{
				Name:      "run",
				Usage:     "load test cases and run a source file against them",
				ArgsUsage: "<source file>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "cases", Usage: "YAML file with input/expected_output pairs"},
					&cli.StringFlag{Name: "problem", Usage: "problem slug, e.g. 1000/A"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runAction(ctx, cmd, client(cmd), out)
				},
			},
			{
				Name:  "cancel",
				Usage: "cancel the run in flight",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					resp, err := client(cmd).Runs.Cancel(ctx)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "cancelled: %t\n", resp.Cancelled)
					return nil
				},
			},
			{
				Name:  "settings",
				Usage: "show or change the language and judge API key",
				Commands: []*cli.Command{
					{
						Name: "show",
						Action: func(ctx context.Context, cmd *cli.Command) error {
							s, err := client(cmd).Settings.Get(ctx)
							if err != nil {
								return err
							}
							fmt.Fprintf(out, "language: %s\napi key:  %s\n", s.Language, s.APIKey)
							return nil
						},
					},
					{
						Name: "set",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "language"},
							&cli.StringFlag{Name: "api-key", Sources: cli.EnvVars("JUDGE0_API_KEY")},
						},
						Action: func(ctx context.Context, cmd *cli.Command) error {
							s, err := client(cmd).Settings.Update(ctx, judgerun.Settings{
								Language: cmd.String("language"),
								APIKey:   cmd.String("api-key"),
							})
							if err != nil {
								return err
							}
							fmt.Fprintf(out, "language: %s\napi key:  %s\n", s.Language, s.APIKey)
							return nil
						},
					},
				},
			},
			{
				Name:  "keygen",
				Usage: "print a fresh SETTINGS_KEY",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					key, err := crypto.GenerateKey()
					if err != nil {
						return err
					}
					fmt.Fprintln(out, key)
					return nil
				},
			},
		},
	}
}

func runAction(ctx context.Context, cmd *cli.Command, c *judgerun.Client, out io.Writer) error {
	if cmd.Args().Len() != 1 {
		return errors.New("expected exactly one source file")
	}
	src, err := os.ReadFile(cmd.Args().First())
	if err != nil {
		return err
	}

	if path := cmd.String("cases"); path != "" {
		cases, err := readCases(path)
		if err != nil {
			return err
		}
		if _, err := c.TestCases.Load(ctx, cases); err != nil {
			return err
		}
	}

	start := time.Now()
	resp, err := c.Runs.Run(ctx, judgerun.RunRequest{Code: string(src), Problem: cmd.String("problem")})
	if judgerun.IsRateLimited(err) {
		return errors.New("judge API limit reached, try again later")
	}
	if err != nil {
		return err
	}
	if resp.Aborted {
		return errors.New("run was cancelled")
	}

	printResults(out, resp)
	fmt.Fprintf(out, "%s in %s\n", verdict(resp), time.Since(start).Round(time.Millisecond))
	if !resp.AllPassed {
		return errors.New("some test cases failed")
	}
	return nil
}

func readCases(path string) ([]judgerun.TestCaseInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cases file failed: %w", err)
	}
	var cases []judgerun.TestCaseInput
	if err := yaml.Unmarshal(data, &cases); err != nil {
		return nil, fmt.Errorf("parse cases file failed: %w", err)
	}
	return cases, nil
}

func printResults(out io.Writer, resp *judgerun.RunResponse) {
	for i, tc := range resp.TestCases {
		status := "ok"
		if tc.ErrorLabel != "" {
			status = tc.ErrorLabel
		}
		fmt.Fprintf(out, "#%d  %-22s %ss  %sMB\n", i+1, status, tc.Time, tc.Memory)
		fmt.Fprintf(out, "    output: %q\n", tc.Output)
	}
}

func verdict(resp *judgerun.RunResponse) string {
	switch {
	case resp.Report.Verdict != "":
		return resp.Report.Verdict
	case resp.RunLabel != "":
		return resp.RunLabel
	case resp.AllPassed:
		return "Accepted"
	default:
		return "Wrong Answer"
	}
}
