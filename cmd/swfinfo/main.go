package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/flaneur2020/swf-loaderinfo/loaderinfo"
	"github.com/flaneur2020/swf-loaderinfo/loaderinfo/logger"
	"github.com/flaneur2020/swf-loaderinfo/loaderinfo/storage"
	"github.com/flaneur2020/swf-loaderinfo/loaderinfo/swfutil"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	loaderURL  string
	params     map[string]string
	credential string
	insecure   bool
	noProgress bool
	verbose    bool
	debug      bool
	logLevel   string
	jobs       int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "swfinfo",
		Short: "Inspect loaded SWF movies the way a player's LoaderInfo reports them",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level, err := resolveLogLevel(logLevel, verbose, debug)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			logger.SetLogLevel(level)
		},
	}

	rootCmd.PersistentFlags().StringVar(&loaderURL, "loader-url", "", "URL of the movie that performs the load")
	rootCmd.PersistentFlags().StringToStringVar(&params, "param", nil, "Movie parameter as KEY=VALUE (repeatable)")
	rootCmd.PersistentFlags().StringVar(&credential, "credential", "", "HTTP credential in format USER:PASSWORD")
	rootCmd.PersistentFlags().BoolVar(&insecure, "insecure", false, "Skip TLS verification for https locations")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log progress to stderr")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Log debug details to stderr")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: silent, error, warn, info or debug (overrides -v and --debug)")

	// info command
	infoCmd := &cobra.Command{
		Use:   "info <LOCATION>...",
		Short: "Print loader info properties for one or more movies",
		Args:  cobra.MinimumNArgs(1),
		Run:   runInfo,
	}
	infoCmd.Flags().IntVarP(&jobs, "jobs", "j", 4, "Number of movies to load concurrently")

	// bytes command
	bytesCmd := &cobra.Command{
		Use:   "bytes <LOCATION> <OUTPUT>",
		Short: "Write the movie's reconstructed uncompressed SWF to OUTPUT",
		Args:  cobra.ExactArgs(2),
		Run:   runBytes,
	}
	bytesCmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable progress bar (progress is enabled by default)")

	// stage command
	stageCmd := &cobra.Command{
		Use:   "stage <LOCATION>",
		Short: "Load a movie as the top-level stage content and print the stage's loader info",
		Args:  cobra.ExactArgs(1),
		Run:   runStage,
	}

	// tags command
	tagsCmd := &cobra.Command{
		Use:   "tags <LOCATION>",
		Short: "List the tag records of a movie",
		Args:  cobra.ExactArgs(1),
		Run:   runTags,
	}

	rootCmd.AddCommand(infoCmd, bytesCmd, stageCmd, tagsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveLogLevel picks the log level from --log-level, falling back to the
// -v and --debug switches.
func resolveLogLevel(name string, verbose, debug bool) (logger.LogLevel, error) {
	switch {
	case name != "":
		return logger.ParseLogLevel(name)
	case debug:
		return logger.LogLevelDebug, nil
	case verbose:
		return logger.LogLevelInfo, nil
	default:
		return logger.LogLevelError, nil
	}
}

func newSource() storage.Source {
	src := storage.NewMultiSource(insecure)
	if credential != "" {
		parts := strings.SplitN(credential, ":", 2)
		if len(parts) != 2 {
			fmt.Fprintf(os.Stderr, "Error: credential must be USER:PASSWORD\n")
			os.Exit(1)
		}
		src.HTTP = storage.NewHTTPSource(insecure).WithCredential(parts[0], parts[1])
	}
	return src
}

func loadOptions() loaderinfo.LoadOptions {
	return loaderinfo.LoadOptions{
		LoaderURL:  loaderURL,
		Parameters: params,
	}
}

func runInfo(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	loader := loaderinfo.NewLoader(newSource(), storage.NewMemoryStorage(), loaderinfo.NewRuntime(nil))

	infos := make([]*loaderinfo.LoaderInfo, len(args))
	if jobs < 1 {
		jobs = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, location := range args {
		i, location := i, location
		g.Go(func() error {
			li, err := loader.Load(gctx, location, loadOptions(), nil)
			if err != nil {
				return fmt.Errorf("%s: %w", location, err)
			}
			infos[i] = li
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	for i, li := range infos {
		if i > 0 {
			fmt.Println()
		}
		fmt.Printf("%s:\n", args[i])
		printProperties(os.Stdout, li)
	}
}

func runStage(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	movie, err := loaderinfo.FetchMovie(ctx, newSource(), args[0], loadOptions(), nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	runtime := loaderinfo.NewRuntime(&loaderinfo.Stage{Movie: movie})
	loader := loaderinfo.NewLoader(newSource(), storage.NewMemoryStorage(), runtime)

	fmt.Printf("stage (%s):\n", args[0])
	printProperties(os.Stdout, loader.StageInfo())
}

func runTags(cmd *cobra.Command, args []string) {
	movie, err := loaderinfo.FetchMovie(context.Background(), newSource(), args[0], loadOptions(), nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := printTags(os.Stdout, movie); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// printTags lists each tag record with its body length. A malformed stream
// still prints the tags read before the error.
func printTags(w io.Writer, movie *swfutil.Movie) error {
	tags, err := swfutil.ReadTags(movie.Data)
	for i, tag := range tags {
		fmt.Fprintf(w, "  %4d  code=%-4d length=%d\n", i, tag.Code, len(tag.Data))
	}
	fmt.Fprintf(w, "%d tags\n", len(tags))
	return err
}

func runBytes(cmd *cobra.Command, args []string) {
	location := args[0]
	outputPath := args[1]
	ctx := context.Background()

	// Progress bar is enabled by default
	showProgress := !noProgress

	var progressCallback loaderinfo.ProgressCallback
	var bar *progressbar.ProgressBar
	if showProgress {
		progressCallback = func(current, total int64) {
			if bar == nil {
				bar = progressbar.DefaultBytes(total, fmt.Sprintf("Loading %s", location))
			}
			bar.Set64(current)
		}
	}

	loader := loaderinfo.NewLoader(newSource(), storage.NewMemoryStorage(), loaderinfo.NewRuntime(nil))
	li, err := loader.Load(ctx, location, loadOptions(), progressCallback)
	if err != nil {
		if showProgress {
			fmt.Fprintf(os.Stderr, "\nError: %v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
	if bar != nil {
		bar.Finish()
		fmt.Println()
	}

	ba, err := li.Bytes()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile(outputPath, ba.Bytes(), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", outputPath, err)
		os.Exit(1)
	}

	total, _ := li.BytesTotal()
	fmt.Printf("Wrote %d bytes to %s (source was %d bytes)\n", ba.Len(), outputPath, total)
}

// printProperties prints every property in registration order. Properties the
// stream cannot answer are shown with their error.
func printProperties(w io.Writer, li *loaderinfo.LoaderInfo) {
	for _, name := range loaderinfo.LoaderInfoClass.PropertyNames() {
		v, err := li.GetProperty(name)
		if err != nil {
			fmt.Fprintf(w, "  %-20s <error: %v>\n", name, err)
			continue
		}
		fmt.Fprintf(w, "  %-20s %s\n", name, formatValue(v))
	}
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return fmt.Sprintf("%q", val)
	case map[string]string:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%s=%q", k, val[k])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case *loaderinfo.ApplicationDomain:
		if val.Parent != nil {
			return fmt.Sprintf("ApplicationDomain(%s < %s)", val.Name, val.Parent.Name)
		}
		return fmt.Sprintf("ApplicationDomain(%s)", val.Name)
	case loaderinfo.ContentRef:
		return fmt.Sprintf("DisplayObject(%s)", val.Name())
	case interface{ Len() int }:
		return fmt.Sprintf("ByteArray(%d bytes)", val.Len())
	default:
		return fmt.Sprintf("%v", val)
	}
}
