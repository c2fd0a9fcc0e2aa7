// Command gitjfs is a thin CLI front end over the gitjfs library: it
// opens a repository, parses a logical path from the command line,
// and runs one read-only operation against it. Its flag-parsing and
// top-level error-handling shape follows the teacher's git-sizer.go:
// a mainImplementation() that returns an error, a thin main() that
// prints it and sets the exit status.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/gitjfs/gitjfs/counts"
	"github.com/gitjfs/gitjfs/fs"
	"github.com/gitjfs/gitjfs/gitcli"
	"github.com/gitjfs/gitjfs/gpath"
	"github.com/gitjfs/gitjfs/internal/refopts"
	"github.com/gitjfs/gitjfs/isatty"
	"github.com/gitjfs/gitjfs/meter"
	"github.com/gitjfs/gitjfs/registry"
)

func main() {
	if err := mainImplementation(); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

func mainImplementation() error {
	var repoDir string
	var ref string
	var noFollow bool
	var showProgress bool
	var quiet bool

	flags := pflag.NewFlagSet("gitjfs", pflag.ContinueOnError)
	flags.StringVar(&repoDir, "repo", ".", "path to the Git repository to open")
	flags.StringVar(&ref, "ref", gpath.DefaultRef, "ref or commit id naming the tree to browse")
	flags.Var(&negatedBoolValue{&noFollow}, "follow", "follow a trailing symlink (default true)")
	flags.BoolVar(&quiet, "quiet", false, "suppress the progress meter")

	var filter refopts.Filter
	refopts.AddFlags(flags, &filter)

	if err := flags.Parse(os.Args[1:]); err != nil {
		return err
	}

	args := flags.Args()
	if len(args) == 0 {
		return fmt.Errorf("usage: gitjfs [flags] <ls|cat|stat|readlink|refs|graph|diff> [path...]")
	}
	cmd, rest := args[0], args[1:]

	tty, _ := isatty.Isatty(os.Stderr.Fd())
	showProgress = tty && !quiet

	reg := registry.New()
	store, err := gitcli.Open(repoDir)
	if err != nil {
		return fmt.Errorf("opening %s: %w", repoDir, err)
	}
	instance, err := reg.OpenFile(repoDir, func(uri string) (*fs.FileSystem, error) {
		return fs.New(uri, store, true), nil
	})
	if err != nil {
		return fmt.Errorf("registering %s: %w", repoDir, err)
	}
	defer reg.Close(instance)

	ctx := context.Background()
	root, err := gpath.ParseRevisionToken(ref)
	if err != nil {
		return fmt.Errorf("parsing --ref=%q: %w", ref, err)
	}

	switch cmd {
	case "ls":
		return runLs(ctx, instance, root, rest, noFollow)
	case "cat":
		return runCat(ctx, instance, root, rest)
	case "stat":
		return runStat(ctx, instance, root, rest, noFollow)
	case "readlink":
		return runReadlink(ctx, instance, root, rest)
	case "refs":
		return runRefs(ctx, instance, filter)
	case "graph":
		return runGraph(ctx, instance, showProgress)
	case "diff":
		return runDiff(ctx, instance, rest)
	default:
		return fmt.Errorf("unrecognized command %q", cmd)
	}
}

func pathArg(root gpath.RevisionToken, args []string, i int) (gpath.LogicalPath, error) {
	if i >= len(args) {
		return gpath.LogicalPath{}, fmt.Errorf("missing path argument")
	}
	internal, err := gpath.ParseInternal(args[i])
	if err != nil {
		return gpath.LogicalPath{}, err
	}
	return gpath.NewAbsolute(root, internal), nil
}

func runLs(ctx context.Context, instance *fs.FileSystem, root gpath.RevisionToken, args []string, noFollow bool) error {
	p, err := pathArg(root, args, 0)
	if err != nil {
		return err
	}
	stream, err := instance.NewDirectoryStream(ctx, p, nil)
	if err != nil {
		return err
	}
	defer stream.Close()

	for stream.HasNext() {
		name, mode, err := stream.Next()
		if err != nil {
			return err
		}
		fmt.Printf("%-8s %s\n", mode, name.String())
	}
	return nil
}

func runCat(ctx context.Context, instance *fs.FileSystem, root gpath.RevisionToken, args []string) error {
	p, err := pathArg(root, args, 0)
	if err != nil {
		return err
	}
	ch, err := instance.NewByteChannel(ctx, p, false)
	if err != nil {
		return err
	}
	defer ch.Close()
	_, err = io.Copy(os.Stdout, ch)
	return err
}

func runStat(ctx context.Context, instance *fs.FileSystem, root gpath.RevisionToken, args []string, noFollow bool) error {
	p, err := pathArg(root, args, 0)
	if err != nil {
		return err
	}
	attrs, err := instance.ReadAttributes(ctx, p, !noFollow)
	if err != nil {
		return err
	}
	value, unit := counts.NewCount64(uint64(attrs.Size)).Human(counts.Binary, "B")
	fmt.Printf("size: %d (%s%s)\n", attrs.Size, value, unit)
	fmt.Printf("modified: %s\n", attrs.LastModified.Format(time.RFC3339))
	fmt.Printf("directory: %v\n", attrs.IsDirectory)
	fmt.Printf("symlink: %v\n", attrs.IsSymbolicLink)
	return nil
}

func runReadlink(ctx context.Context, instance *fs.FileSystem, root gpath.RevisionToken, args []string) error {
	p, err := pathArg(root, args, 0)
	if err != nil {
		return err
	}
	target, err := instance.ReadSymbolicLink(ctx, p)
	if err != nil {
		return err
	}
	fmt.Println(target.String())
	return nil
}

func runRefs(ctx context.Context, instance *fs.FileSystem, filter refopts.Filter) error {
	refs, err := instance.Refs(ctx)
	if err != nil {
		return err
	}
	for _, r := range refs {
		root, _ := r.Root()
		name := root.String()
		if !filter.Allows(name) {
			continue
		}
		fmt.Println(name)
	}
	return nil
}

func runGraph(ctx context.Context, instance *fs.FileSystem, showProgress bool) error {
	var progress meter.Progress
	if showProgress {
		progress = meter.NewProgressMeter(100 * time.Millisecond)
	} else {
		progress = &meter.NoProgressMeter{}
	}
	progress.Start("building commit graph: %d commits")

	g, err := instance.Graph(ctx, progress)
	progress.Done()
	if err != nil {
		return err
	}
	fmt.Printf("%d commits reachable from %d refs\n", g.Len(), len(g.Roots()))
	return nil
}

func runDiff(ctx context.Context, instance *fs.FileSystem, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("diff requires exactly two revision arguments")
	}
	a, err := gpath.ParseRevisionToken(args[0])
	if err != nil {
		return err
	}
	b, err := gpath.ParseRevisionToken(args[1])
	if err != nil {
		return err
	}
	entries, err := instance.Diff(ctx, gpath.NewAbsolute(a, gpath.Root()), gpath.NewAbsolute(b, gpath.Root()))
	if err != nil {
		return err
	}
	for _, e := range entries {
		switch e.Type.String() {
		case "rename", "copy":
			fmt.Printf("%s\t%s -> %s\n", e.Type, e.OldPath, e.NewPath)
		default:
			path := e.NewPath
			if path == "" {
				path = e.OldPath
			}
			fmt.Printf("%s\t%s\n", e.Type, path)
		}
	}
	return nil
}
