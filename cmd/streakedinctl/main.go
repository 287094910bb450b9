package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/streakedin/streakedin/internal/client"
	"github.com/streakedin/streakedin/internal/model"
	"github.com/streakedin/streakedin/internal/services"
)

var (
	serviceURL string
	token      string
	debug      bool
)

const requestTimeout = 15 * time.Second

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// NewRootCmd constructs the root CLI command; exposed for unit testing.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "streakedinctl",
		Short:        "Command-line client for the StreakedIn API",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.Logger = log.Output(zerolog.ConsoleWriter{
				Out:        os.Stderr,
				TimeFormat: "2006-01-02 15:04:05",
				NoColor:    true,
			})
			if debug {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			} else {
				zerolog.SetGlobalLevel(zerolog.InfoLevel)
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&serviceURL, "service-url", getEnv("STREAKEDIN_URL", "http://localhost:8080"), "Base URL of the StreakedIn API")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("STREAKEDIN_TOKEN"), "Bearer token; empty uses the dev key")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable verbose debug output")

	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newGoalsCmd())
	rootCmd.AddCommand(newTasksCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newSuggestCmd())
	rootCmd.AddCommand(newHealthCmd())
	return rootCmd
}

func newClient() *client.Client {
	if token == "" {
		return client.NewWithDevMode(serviceURL)
	}
	return client.New(serviceURL, token)
}

func withTimeout(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), requestTimeout)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func newLoginCmd() *cobra.Command {
	var email, password string
	var signup bool
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and print a bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withTimeout(cmd)
			defer cancel()
			c := client.New(serviceURL, "")
			var (
				sess *services.Session
				err  error
			)
			if signup {
				sess, err = c.SignUp(ctx, email, password)
			} else {
				sess, err = c.SignIn(ctx, email, password)
			}
			if err != nil {
				return err
			}
			log.Debug().Str("user_id", sess.User.ID).Time("expires_at", sess.ExpiresAt).Msg("signed in")
			_, err = fmt.Fprintln(cmd.OutOrStdout(), sess.Token)
			return err
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	cmd.Flags().BoolVar(&signup, "signup", false, "Create the account first")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newGoalsCmd() *cobra.Command {
	goals := &cobra.Command{Use: "goals", Short: "Manage goals"}

	goals.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List goals",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withTimeout(cmd)
			defer cancel()
			list, err := newClient().ListGoals(ctx)
			if err != nil {
				return err
			}
			for _, g := range list {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%3d%%\t%-9s\t%s\n", g.ID, g.Progress, g.Status, g.Title)
			}
			return nil
		},
	})

	var in services.GoalInput
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a goal",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withTimeout(cmd)
			defer cancel()
			g, err := newClient().CreateGoal(ctx, in)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), g)
		},
	}
	create.Flags().StringVar(&in.Title, "title", "", "Goal title")
	create.Flags().StringVar(&in.Description, "description", "", "Goal description")
	create.Flags().StringVar(&in.Deadline, "deadline", "", "Deadline (YYYY-MM-DD)")
	create.Flags().StringVar(&in.Category, "category", "", "Category")
	_ = create.MarkFlagRequired("title")
	goals.AddCommand(create)

	var progress int
	progressCmd := &cobra.Command{
		Use:   "progress <goal-id>",
		Short: "Set a goal's progress percentage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withTimeout(cmd)
			defer cancel()
			g, err := newClient().UpdateGoal(ctx, args[0], model.GoalPatch{Progress: &progress})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), g)
		},
	}
	progressCmd.Flags().IntVar(&progress, "set", 0, "Progress 0-100")
	_ = progressCmd.MarkFlagRequired("set")
	goals.AddCommand(progressCmd)

	return goals
}

func newTasksCmd() *cobra.Command {
	tasks := &cobra.Command{Use: "tasks", Short: "Manage tasks"}

	tasks.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withTimeout(cmd)
			defer cancel()
			list, err := newClient().ListTasks(ctx)
			if err != nil {
				return err
			}
			for _, t := range list {
				mark := " "
				if t.Completed {
					mark = "x"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\t%-6s\t%s\n", mark, t.ID, t.Priority, t.Title)
			}
			return nil
		},
	})

	var in services.TaskInput
	var priority string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withTimeout(cmd)
			defer cancel()
			in.Priority = model.Priority(priority)
			t, err := newClient().CreateTask(ctx, in)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), t)
		},
	}
	create.Flags().StringVar(&in.Title, "title", "", "Task title")
	create.Flags().StringVar(&priority, "priority", "", "low, medium or high")
	_ = create.MarkFlagRequired("title")
	tasks.AddCommand(create)

	tasks.AddCommand(&cobra.Command{
		Use:   "done <task-id>",
		Short: "Mark a task completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withTimeout(cmd)
			defer cancel()
			t, err := newClient().CompleteTask(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "completed %s\n", t.Title)
			return nil
		},
	})
	return tasks
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show productivity stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withTimeout(cmd)
			defer cancel()
			st, err := newClient().Stats(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), st)
		},
	}
}

func newSuggestCmd() *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "suggest <prompt>",
		Short: "Ask the assistant for a reminder or goal draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withTimeout(cmd)
			defer cancel()
			c := newClient()
			switch kind {
			case "reminder":
				res, err := c.GenerateReminder(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), res)
			case "goal":
				res, err := c.GenerateGoal(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), res)
			default:
				return fmt.Errorf("unknown kind %q: want reminder or goal", kind)
			}
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "reminder", "reminder or goal")
	return cmd
}

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withTimeout(cmd)
			defer cancel()
			status, err := newClient().Health(ctx)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), status)
			return err
		},
	}
}
