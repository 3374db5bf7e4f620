package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/projecthub/submission-backend/internal/uploadclient"
)

type options struct {
	server          string
	credentialsPath string
	timeout         time.Duration
	verbose         bool
}

func rootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit projects for review",
		Long: `Submit projects to the review portal and check their status.

Examples:
  submit login --token <token>
  submit create --title "My project" --description "What it does" --file ./doc.pdf
  submit status
  submit logout
`,
		SilenceUsage: true,
	}

	server := os.Getenv("PROJECTHUB_SERVER")
	if server == "" {
		server = uploadclient.DefaultBaseURL
	}

	cmd.PersistentFlags().StringVar(&opts.server, "server", server, "Backend base URL")
	cmd.PersistentFlags().StringVar(&opts.credentialsPath, "credentials", "", "Credentials file (default $HOME/.projecthub/credentials.yaml)")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 5*time.Minute, "Request timeout")
	cmd.PersistentFlags().BoolVar(&opts.verbose, "verbose", false, "Log request errors to stderr")

	cmd.AddCommand(loginCmd(opts), logoutCmd(opts), createCmd(opts), statusCmd(opts))
	return cmd
}

func (o *options) store() (*uploadclient.CredentialStore, error) {
	path := o.credentialsPath
	if path == "" {
		var err error
		if path, err = uploadclient.DefaultCredentialsPath(); err != nil {
			return nil, err
		}
	}
	return uploadclient.NewCredentialStore(path), nil
}

func (o *options) logger() *zap.Logger {
	if !o.verbose {
		return zap.NewNop()
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

func (o *options) context() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	return ctx, func() {
		stop()
		cancel()
	}
}

func loginCmd(opts *options) *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store a bearer token (reads stdin when --token is omitted)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && !errors.Is(err, io.EOF) {
					return fmt.Errorf("read token: %w", err)
				}
				token = line
			}
			token = strings.TrimSpace(token)
			if token == "" {
				return errors.New("token is empty")
			}

			store, err := opts.store()
			if err != nil {
				return err
			}
			if err := store.Save(token); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Token saved to %s\n", store.Path())
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Bearer token")
	return cmd
}

func logoutCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.store()
			if err != nil {
				return err
			}
			if err := store.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

func createCmd(opts *options) *cobra.Command {
	var title, description, file string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Submit a new project",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.store()
			if err != nil {
				return err
			}
			session, err := store.Load()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			form := uploadclient.NewForm(session, uploadclient.NewClient(opts.server, nil), opts.logger())

			if v := form.View(); v.Blocked {
				fmt.Fprintln(out, v.Message)
				return uploadclient.ErrNotLoggedIn
			}

			form.SetTitle(title)
			form.SetDescription(description)
			if file != "" {
				form.SetFile(uploadclient.LocalFile(file))
			}

			ctx, cancel := opts.context()
			defer cancel()

			fmt.Fprintln(out, uploadclient.LabelSubmitting)
			if err := form.Submit(ctx); err != nil {
				if errors.Is(err, uploadclient.ErrIncompleteForm) {
					return err
				}
				fmt.Fprintln(out, form.View().Error)
				return err
			}

			fmt.Fprintln(out, "Project created.")
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Project title")
	cmd.Flags().StringVar(&description, "description", "", "Project description")
	cmd.Flags().StringVar(&file, "file", "", "Path to the project file")
	return cmd
}

func statusCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show approved and rejected projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.store()
			if err != nil {
				return err
			}
			session, err := store.Load()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			token, ok := session.Token()
			if !ok {
				fmt.Fprintln(out, uploadclient.MsgNotLoggedIn)
				return uploadclient.ErrNotLoggedIn
			}

			ctx, cancel := opts.context()
			defer cancel()

			report, err := uploadclient.NewClient(opts.server, nil).Status(ctx, token)
			if err != nil {
				return err
			}

			fmt.Fprintln(out, "Approved:")
			for _, p := range report.Accepted {
				fmt.Fprintf(out, "  %s  %s\n", p.ID, p.Title)
			}
			fmt.Fprintln(out, "Rejected:")
			for _, p := range report.Rejected {
				fmt.Fprintf(out, "  %s  %s\n", p.ID, p.Title)
			}
			return nil
		},
	}
}
