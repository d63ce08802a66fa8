package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	humanize "github.com/dustin/go-humanize"
	"github.com/golang-cafe/saved-jobs/internal/remote"
	"github.com/golang-cafe/saved-jobs/internal/savedjob"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type options struct {
	api       string
	jobSeeker string
	token     string
	timeout   time.Duration
	verbose   bool
	page      int
	perPage   int
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:          "savedjobs",
		Short:        "List and manage the jobs a job seeker has saved",
		SilenceUsage: true,
	}
	root.SetOut(out)
	root.SetErr(errOut)

	def := os.Getenv("SAVED_JOBS_API")
	if def == "" {
		def = remote.DefaultBaseURL
	}
	root.PersistentFlags().StringVar(&opts.api, "api", def, "job seeker API base url (env SAVED_JOBS_API)")
	root.PersistentFlags().StringVar(&opts.jobSeeker, "job-seeker", "", "job seeker id")
	root.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("SAVED_JOBS_TOKEN"), "bearer token (env SAVED_JOBS_TOKEN)")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "request timeout")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log store transitions")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Show saved jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := newStore(opts, errOut)
			if err != nil {
				return err
			}
			view := savedjob.NewView(store, opts.perPage)
			view.Mount(cmd.Context())
			defer view.Unmount()
			return printPage(cmd.OutOrStdout(), view.Page(opts.page))
		},
	}
	listCmd.Flags().IntVar(&opts.page, "page", 1, "page to show")
	listCmd.Flags().IntVar(&opts.perPage, "per-page", savedjob.DefaultPerPage, "jobs per page")

	saveCmd := &cobra.Command{
		Use:   "save <job-id>",
		Short: "Save a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := newStore(opts, errOut)
			if err != nil {
				return err
			}
			if err := store.RequestSave(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved job %s\n", args[0])
			return nil
		},
	}

	removeCmd := &cobra.Command{
		Use:   "remove <job-id>",
		Short: "Remove a job from the saved list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := newStore(opts, errOut)
			if err != nil {
				return err
			}
			if err := store.RequestRemove(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed job %s\n", args[0])
			return nil
		},
	}

	root.AddCommand(listCmd, saveCmd, removeCmd)
	return root
}

func newStore(opts *options, errOut io.Writer) (*savedjob.Store, error) {
	if opts.jobSeeker == "" {
		return nil, errors.New("--job-seeker is required")
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: errOut, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger().Level(zerolog.WarnLevel)
	if opts.verbose {
		logger = logger.Level(zerolog.DebugLevel)
	}
	client := remote.NewClient(opts.api, remote.WithTimeout(opts.timeout))
	return savedjob.NewStore(client.ForJobSeeker(opts.jobSeeker, opts.token), savedjob.WithLogger(logger)), nil
}

func printPage(w io.Writer, page savedjob.Page) error {
	switch page.Kind {
	case savedjob.PageFailed:
		return errors.New(page.Error)
	case savedjob.PageEmpty:
		fmt.Fprintln(w, "no saved jobs")
		return nil
	case savedjob.PageLoading:
		fmt.Fprintln(w, "loading...")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tCOMPANY\tLOCATION\tSAVED")
	for _, j := range page.Jobs {
		saved := j.SavedAt
		if t, err := j.SavedAtTime(); err == nil {
			saved = humanize.Time(t)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", j.ID, j.Title, j.Company, j.Location, saved)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "page %d of %d, %s saved jobs\n", page.CurrentPage, page.LastPage, humanize.Comma(int64(page.Total)))
	return nil
}
