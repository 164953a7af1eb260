package app

import (
	"fmt"
	"os"
	"runtime"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/matthiasclasen/flatpak/internal/installation"
	"github.com/matthiasclasen/flatpak/internal/output"
	"github.com/matthiasclasen/flatpak/internal/ref"
	"github.com/matthiasclasen/flatpak/internal/remotes"
)

var (
	lsRemoteDetails bool
	lsRemoteRuntime bool
	lsRemoteApp     bool
	lsRemoteUpdates bool
	lsRemoteArch    string
)

var lsRemoteCmd = &cobra.Command{
	Use:   "ls-remote REMOTE",
	Short: "Show available runtimes and applications",
	Long: `List the applications and runtimes a configured remote advertises,
as of the last metadata synchronization.

By default only refs matching the host architecture are shown; use
--arch to pick another one, or --arch '*' for all of them.`,
	Example: `  # Applications and runtimes in the flathub remote
  flatpak ls-remote flathub

  # Only apps, with commit and sizes
  flatpak ls-remote --app --show-details flathub

  # Refs with an update available
  flatpak ls-remote --updates flathub`,
	RunE: runLsRemote,
}

func init() {
	lsRemoteCmd.Flags().BoolVarP(&lsRemoteDetails, "show-details", "d", false, "show arches, branches and sizes")
	lsRemoteCmd.Flags().BoolVar(&lsRemoteRuntime, "runtime", false, "show only runtimes")
	lsRemoteCmd.Flags().BoolVar(&lsRemoteApp, "app", false, "show only apps")
	lsRemoteCmd.Flags().BoolVar(&lsRemoteUpdates, "updates", false, "show only refs where updates are available")
	lsRemoteCmd.Flags().StringVar(&lsRemoteArch, "arch", "", "limit to this arch (* for all)")

	RootCmd.AddCommand(lsRemoteCmd)
}

func runLsRemote(cmd *cobra.Command, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("REMOTE must be specified")
	}
	if len(args) > 1 {
		return fmt.Errorf("too many arguments")
	}
	remote := args[0]

	dir, err := installation.DirForCommand(optUser, optSystem, optInstallations)
	if err != nil {
		return err
	}

	st, err := remotes.Open(remotes.MetadataPath(dir.Path))
	if err != nil {
		return err
	}
	defer st.Close()

	opts := lsRemoteOptions{
		details:  lsRemoteDetails,
		apps:     lsRemoteApp,
		runtimes: lsRemoteRuntime,
		updates:  lsRemoteUpdates,
		arch:     lsRemoteArch,
	}

	table, err := listRemoteRefs(st, remote, opts)
	if err != nil {
		return err
	}
	table.Print()

	return nil
}

type lsRemoteOptions struct {
	details  bool
	apps     bool
	runtimes bool
	updates  bool
	arch     string
}

// listRemoteRefs builds the ls-remote report. Refs that fail to decompose
// are skipped; with neither --app nor --runtime both kinds are shown. Rows
// are deduplicated by display name, keeping the first checksum seen, and
// sorted.
func listRemoteRefs(st *remotes.Store, remote string, opts lsRemoteOptions) (*output.Table, error) {
	refs, err := st.ListRemoteRefs(remote)
	if err != nil {
		return nil, err
	}

	if !opts.apps && !opts.runtimes {
		opts.apps = true
		opts.runtimes = true
	}

	arches := []string{hostArch()}
	switch opts.arch {
	case "":
	case "*":
		arches = nil
	default:
		arches = []string{opts.arch}
	}

	seen := make(map[string]remotes.RemoteRef)
	for _, r := range refs {
		parts, err := ref.Decompose(r.Ref)
		if err != nil {
			if optVerbose {
				fmt.Fprintf(os.Stderr, "invalid remote ref %s\n", r.Ref)
			}
			continue
		}

		if opts.updates {
			deployed, ok, err := st.ActiveCommit(r.Ref)
			if err != nil {
				return nil, err
			}
			if !ok || deployed == r.Checksum {
				continue
			}
		}

		if arches != nil && !containsString(arches, parts.Arch) {
			continue
		}
		if parts.Kind == ref.KindRuntime && !opts.runtimes {
			continue
		}
		if parts.Kind == ref.KindApp && !opts.apps {
			continue
		}

		name := parts.Name
		if opts.details {
			name = r.Ref
		}
		if _, ok := seen[name]; !ok {
			seen[name] = r
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)

	var table *output.Table
	if opts.details {
		table = output.NewTable("Ref", "Commit", "Installed size", "Download size")
	} else {
		table = output.NewTable("Name")
	}

	for _, name := range names {
		r := seen[name]
		if !opts.details {
			table.Row([]string{name})
			continue
		}

		commit := r.Checksum
		if len(commit) > 12 {
			commit = commit[:12]
		}
		table.Row([]string{
			name,
			commit,
			humanize.IBytes(r.InstalledSize),
			humanize.IBytes(r.DownloadSize),
		})
	}

	return table, nil
}

// hostArch maps the Go architecture name to the flatpak one.
func hostArch() string {
	switch runtime.GOARCH {
	case "amd64":
		return "x86_64"
	case "arm64":
		return "aarch64"
	case "386":
		return "i386"
	default:
		return runtime.GOARCH
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
