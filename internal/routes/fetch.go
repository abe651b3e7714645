package routes

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/zeebo/xxh3"
)

// DefaultRoutesFile is the workspace-relative path of the pre-generated
// route listing (the output of `rails routes` dumped by the project).
const DefaultRoutesFile = "tmp/routes_file.txt"

const fetchTimeout = 10 * time.Second

// Fetcher filters the workspace's route listing for a single controller
// by running grep as an external process.
type Fetcher struct {
	Workspace  string
	RoutesFile string // workspace-relative; DefaultRoutesFile when empty
}

// ListingPath returns the absolute path of the route listing file.
func (f *Fetcher) ListingPath() string {
	rel := f.RoutesFile
	if rel == "" {
		rel = DefaultRoutesFile
	}
	return filepath.Join(f.Workspace, rel)
}

// Fetch returns the raw listing lines containing "<controller>#".
// No matching lines is not an error: it returns ("", nil).
func (f *Fetcher) Fetch(ctx context.Context, controller string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "grep", "-F", controller+"#", f.ListingPath())
	out, err := cmd.Output()
	if err != nil {
		// grep exits 1 when no lines match
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return "", nil
		}
		return "", fmt.Errorf("grep routes: %w", err)
	}
	return string(out), nil
}

// FetchParsed fetches and parses routes for a controller in one step.
func (f *Fetcher) FetchParsed(ctx context.Context, controller string) ([]Route, error) {
	raw, err := f.Fetch(ctx, controller)
	if err != nil {
		return nil, err
	}
	return Parse(raw), nil
}

// ListingHash returns the xxh3 content hash of the route listing file,
// used as the cache invalidation key.
func (f *Fetcher) ListingHash() (string, error) {
	fh, err := os.Open(f.ListingPath())
	if err != nil {
		return "", err
	}
	defer fh.Close()
	h := xxh3.New()
	if _, err := io.Copy(h, fh); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
