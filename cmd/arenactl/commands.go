package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/vytor/codearena/internal/challengeapi"
	"github.com/vytor/codearena/internal/config"
	"github.com/vytor/codearena/internal/logger"
	"github.com/vytor/codearena/internal/services"
	"github.com/vytor/codearena/internal/session"
)

// env is the per-invocation wiring: one client, the services over it and a
// throwaway session holding what the command loaded.
type env struct {
	out         io.Writer
	st          *session.State
	portal      services.PortalService
	challenges  services.ChallengeService
	submissions services.SubmissionService
	leaderboard services.LeaderboardService
	external    services.ExternalService
	participant services.ParticipantService
}

func newEnv(c *cli.Context) *env {
	log := logger.New(
		logger.WithOutput(c.App.ErrWriter),
		logger.WithLevel(logger.ParseLevel(c.String("log-level"))),
	)
	logger.SetDefault(log)

	client := challengeapi.New(c.String("api"), challengeapi.WithTimeout(c.Duration("timeout")))
	challenges := services.NewChallengeService(client, nil)
	leaderboard := services.NewLeaderboardService(client, nil)
	return &env{
		out:         c.App.Writer,
		st:          session.New("cli"),
		portal:      services.NewPortalService(client, challenges, leaderboard),
		challenges:  challenges,
		submissions: services.NewSubmissionService(client, nil, nil, services.DefaultResultDisplay),
		leaderboard: leaderboard,
		external:    services.NewExternalService(client, nil),
		participant: services.NewParticipantService(nil),
	}
}

// failure turns the last error notice into the command's exit error.
func (e *env) failure(err error) error {
	notices := e.st.Notices()
	for i := len(notices) - 1; i >= 0; i-- {
		if notices[i].Kind == session.NoticeError {
			return cli.Exit(fmt.Sprintf("%s (%v)", notices[i].Message, err), 1)
		}
	}
	return cli.Exit(err.Error(), 1)
}

func newApp(out, errOut io.Writer) *cli.App {
	cfg := config.Load()

	return &cli.App{
		Name:      "arenactl",
		Usage:     "talk to a coding challenge server from the terminal",
		Writer:    out,
		ErrWriter: errOut,
		// main reports the error; never exit from inside Run.
		ExitErrHandler: func(*cli.Context, error) {},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "api",
				Usage:   "challenge API base URL",
				Value:   cfg.APIBaseURL,
				EnvVars: []string{"API_BASE_URL"},
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "per-request timeout",
				Value: cfg.HTTPTimeout,
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "DEBUG, INFO, WARN or ERROR",
				Value: "WARN",
			},
		},
		Commands: []*cli.Command{
			healthCommand(),
			challengesCommand(),
			submitCommand(),
			submissionCommand(),
			leaderboardCommand(),
			externalCommand(),
		},
	}
}

func healthCommand() *cli.Command {
	return &cli.Command{
		Name:  "health",
		Usage: "check that the challenge server is up",
		Action: func(c *cli.Context) error {
			e := newEnv(c)
			h, err := e.portal.Health(c.Context)
			if err != nil {
				return cli.Exit(fmt.Sprintf("challenge server unavailable: %v", err), 1)
			}
			fmt.Fprintf(e.out, "status:  %s\nservice: %s\ntime:    %s\n", h.Status, h.Service, formatTime(h.Timestamp.Time))
			return nil
		},
	}
}

func challengesCommand() *cli.Command {
	return &cli.Command{
		Name:  "challenges",
		Usage: "list challenges",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "difficulty", Aliases: []string{"d"}, Usage: "easy, medium or hard"},
		},
		Action: func(c *cli.Context) error {
			e := newEnv(c)
			if err := e.challenges.LoadChallenges(c.Context, e.st); err != nil {
				return e.failure(err)
			}
			list := e.challenges.FilterChallenges(e.st, c.String("difficulty"))
			if len(list) == 0 {
				fmt.Fprintln(e.out, "No challenges found")
				return nil
			}

			tw := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE\tDIFFICULTY\tPOINTS")
			for _, ch := range list {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%d\n", ch.ID, ch.Title, ch.Difficulty, ch.Points)
			}
			return tw.Flush()
		},
	}
}

func submitCommand() *cli.Command {
	return &cli.Command{
		Name:  "submit",
		Usage: "submit a solution",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "participant", Aliases: []string{"p"}, Required: true, EnvVars: []string{"PARTICIPANT_NAME"}},
			&cli.IntFlag{Name: "challenge", Aliases: []string{"c"}, Required: true},
			&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "solution file, - for stdin", Required: true},
		},
		Action: func(c *cli.Context) error {
			e := newEnv(c)

			solution, err := readSolution(c.String("file"), c.App.Reader)
			if err != nil {
				return cli.Exit(fmt.Sprintf("read solution: %v", err), 1)
			}
			if err := e.participant.SetParticipant(c.Context, e.st, c.String("participant")); err != nil {
				return e.failure(err)
			}

			receipt, err := e.submissions.SubmitSolution(c.Context, e.st, services.SubmissionForm{
				ChallengeID: c.Int("challenge"),
				Solution:    solution,
			})
			if err != nil {
				if r := e.st.Result(e.st.Now()); r != nil && !r.Success {
					msg := "Submission Failed: " + r.Message
					if len(r.MissingFields) > 0 {
						msg += " (missing fields: " + strings.Join(r.MissingFields, ", ") + ")"
					}
					return cli.Exit(msg, 1)
				}
				return e.failure(err)
			}

			fmt.Fprintln(e.out, "Solution Submitted Successfully!")
			fmt.Fprintf(e.out, "submission: %s\nchallenge:  %s\nstatus:     %s\nscore:      %d/100\ntime:       %s\n",
				receipt.SubmissionID, receipt.ChallengeTitle, receipt.Status, receipt.Score, formatTime(receipt.Timestamp.Time))
			return nil
		},
	}
}

func submissionCommand() *cli.Command {
	return &cli.Command{
		Name:      "submission",
		Usage:     "show one submission",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			id := c.Args().First()
			if id == "" {
				return cli.Exit("submission id required", 2)
			}
			e := newEnv(c)
			d, err := e.submissions.GetSubmissionDetails(c.Context, e.st, id)
			if err != nil {
				return e.failure(err)
			}
			fmt.Fprintf(e.out, "id:        %s\nchallenge: %s\nstatus:    %s\nscore:     %d/100\nsubmitted: %s\n",
				d.ID, d.ChallengeTitle, d.Status, d.Score, formatTime(d.SubmittedAt.Time))
			if d.ErrorMessage != "" {
				fmt.Fprintf(e.out, "error:     %s\n", d.ErrorMessage)
			}
			return nil
		},
	}
}

func leaderboardCommand() *cli.Command {
	return &cli.Command{
		Name:  "leaderboard",
		Usage: "show the leaderboard",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "participant", Aliases: []string{"p"}, Usage: "mark rows with this name", EnvVars: []string{"PARTICIPANT_NAME"}},
		},
		Action: func(c *cli.Context) error {
			e := newEnv(c)
			if err := e.leaderboard.LoadLeaderboard(c.Context, e.st); err != nil {
				return e.failure(err)
			}
			entries, _ := e.st.Leaderboard()
			if len(entries) == 0 {
				fmt.Fprintln(e.out, "No participants yet. Be the first to submit a solution!")
				return nil
			}

			me := c.String("participant")
			tw := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "RANK\tPARTICIPANT\tSCORE\tSOLVED\tLAST ACTIVE")
			for _, en := range entries {
				name := en.ParticipantName
				if me != "" && name == me {
					name += " (You)"
				}
				fmt.Fprintf(tw, "#%d\t%s\t%d\t%d\t%s\n", en.Rank, name, en.TotalScore, en.ChallengesSolved, formatTime(en.LastSubmission.Time))
			}
			return tw.Flush()
		},
	}
}

func externalCommand() *cli.Command {
	return &cli.Command{
		Name:  "external",
		Usage: "run the external API demos through the server proxy",
		Subcommands: []*cli.Command{
			{
				Name:  "posts",
				Usage: "fetch sample posts",
				Action: func(c *cli.Context) error {
					e := newEnv(c)
					return e.printPanel(session.ExternalPosts, e.external.FetchPosts(c.Context, e.st))
				},
			},
			{
				Name:  "httpbin",
				Usage: "echo a test request",
				Action: func(c *cli.Context) error {
					e := newEnv(c)
					return e.printPanel(session.ExternalHTTPBin, e.external.FetchHTTPBin(c.Context, e.st))
				},
			},
			{
				Name:  "weather",
				Usage: "fetch the weather for a city",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "city", Value: services.DefaultWeatherCity},
				},
				Action: func(c *cli.Context) error {
					e := newEnv(c)
					return e.printPanel(session.ExternalWeather, e.external.FetchWeather(c.Context, e.st, c.String("city")))
				},
			},
			{
				Name:  "custom",
				Usage: "send a custom request",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "url", Required: true},
					&cli.StringFlag{Name: "method", Value: "GET"},
					&cli.StringFlag{Name: "body", Usage: "JSON body, sent for POST only"},
				},
				Action: func(c *cli.Context) error {
					e := newEnv(c)
					err := e.external.CustomRequest(c.Context, e.st, services.CustomForm{
						URL:    c.String("url"),
						Method: c.String("method"),
						Body:   c.String("body"),
					})
					return e.printPanel(session.ExternalCustom, err)
				},
			},
		},
	}
}

// printPanel prints a demo panel the way the portal shows it.
func (e *env) printPanel(kind session.ExternalKind, err error) error {
	p := e.st.Panel(kind)
	if p.State == session.PanelError {
		return cli.Exit("Error: "+p.Error, 1)
	}
	if err != nil {
		return e.failure(err)
	}
	if p.Result == nil {
		return cli.Exit("no result", 1)
	}
	fmt.Fprintf(e.out, "%s\nsource: %s  time: %s  status: %s\n\n%s\n",
		p.Title, p.Result.Source, formatTime(p.Result.Timestamp.Time), p.Result.Status, p.Result.Pretty)
	return nil
}

func readSolution(path string, stdin io.Reader) (string, error) {
	if path == "-" {
		if stdin == nil {
			stdin = os.Stdin
		}
		b, err := io.ReadAll(stdin)
		return string(b), err
	}
	b, err := os.ReadFile(path)
	return string(b), err
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04:05")
}
