package scaffold

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"github.com/spark-development/puzzle-cli/internal/manifest"
	"github.com/spark-development/puzzle-cli/internal/platform"
	"github.com/spark-development/puzzle-cli/internal/release"
	"github.com/spf13/afero"
)

// stripComponents drops the "<owner>-<repo>-<sha>/" wrapper GitHub puts
// around archive contents.
const stripComponents = 1

// ReleaseFetcher resolves release metadata.
type ReleaseFetcher interface {
	Fetch(ctx context.Context, sel release.Selector) (*release.Release, error)
}

// ArchiveFetcher downloads an archive and extracts it into dest.
type ArchiveFetcher interface {
	FetchAndExtract(ctx context.Context, url, dest string, strip int) error
}

// Request is the user input for one run.
type Request struct {
	Folder  string // destination, relative to WorkDir unless absolute
	Lite    bool
	Force   bool
	Version string // "", "latest" or a semantic version
	WorkDir string // defaults to the process working directory
}

// Result is the state of a run, returned on success and on failure.
type Result struct {
	State        State
	OutputFolder string
	StagingPath  string
	Version      string
	Release      *release.Release
	Name         string
	Author       string
	PreviousName string
}

// Scaffolder runs the project workflow against a filesystem and a release
// source.
type Scaffolder struct {
	fs          afero.Fs
	releases    ReleaseFetcher
	archives    ArchiveFetcher
	stagingRoot string
	identity    func() (platform.Identity, error)
	authorName  string
	authorEmail string
	token       func() string
	log         zerolog.Logger
}

// Option configures a Scaffolder.
type Option func(*Scaffolder)

// WithStagingRoot sets the private directory runs are staged under.
func WithStagingRoot(dir string) Option {
	return func(s *Scaffolder) {
		if dir != "" {
			s.stagingRoot = dir
		}
	}
}

// WithIdentity replaces the OS user lookup.
func WithIdentity(fn func() (platform.Identity, error)) Option {
	return func(s *Scaffolder) {
		s.identity = fn
	}
}

// WithAuthor overrides the author name and email written to package.json.
// Empty values keep the identity-derived defaults.
func WithAuthor(name, email string) Option {
	return func(s *Scaffolder) {
		s.authorName = name
		s.authorEmail = email
	}
}

// WithTokenSource replaces the staging directory name generator.
func WithTokenSource(fn func() string) Option {
	return func(s *Scaffolder) {
		s.token = fn
	}
}

// WithLogger sets the debug logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Scaffolder) {
		s.log = l
	}
}

// New creates a Scaffolder.
func New(fs afero.Fs, releases ReleaseFetcher, archives ArchiveFetcher, opts ...Option) *Scaffolder {
	s := &Scaffolder{
		fs:          fs,
		releases:    releases,
		archives:    archives,
		stagingRoot: filepath.Join(os.TempDir(), "pfcli"),
		identity:    platform.CurrentIdentity,
		token:       func() string { return ulid.Make().String() },
		log:         zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type step struct {
	state State
	kind  error
	run   func(context.Context, *run) error
}

type run struct {
	req Request
	sel release.Selector
	res Result
}

// Run executes the workflow. Steps run in order and the first failure
// stops the run with the result in StateFailed.
func (s *Scaffolder) Run(ctx context.Context, req Request) (*Result, error) {
	r := &run{req: req, res: Result{State: StateStart}}

	steps := []step{
		{StateValidating, ErrUsage, s.validate},
		{StateFetching, ErrFetch, s.fetch},
		{StateExtracting, ErrFetch, s.extract},
		{StatePromoting, ErrPromote, s.promote},
		{StatePatching, ErrManifestPatch, s.patch},
	}

	for _, st := range steps {
		r.res.State = st.state
		s.log.Debug().Str("state", st.state.String()).Msg("scaffold step")

		if err := st.run(ctx, r); err != nil {
			r.res.State = StateFailed
			var se *StepError
			if !errors.As(err, &se) {
				se = stepErr(st.state, st.kind, err)
			}
			s.log.Debug().Err(se.Err).Str("state", se.State.String()).Msg("scaffold failed")
			return &r.res, se
		}
	}

	r.res.State = StateDone
	return &r.res, nil
}

// validate checks the request and prepares the destination. It performs no
// network calls.
func (s *Scaffolder) validate(_ context.Context, r *run) error {
	if strings.TrimSpace(r.req.Folder) == "" {
		return stepErr(StateValidating, ErrUsage, errors.New("missing project folder"))
	}

	version, err := release.NormalizeVersion(r.req.Version)
	if err != nil {
		return stepErr(StateValidating, ErrUsage, err)
	}
	r.res.Version = version
	r.sel = release.Selector{Lite: r.req.Lite, Version: version}

	out := r.req.Folder
	if !filepath.IsAbs(out) {
		wd := r.req.WorkDir
		if wd == "" {
			if wd, err = os.Getwd(); err != nil {
				return stepErr(StateValidating, ErrUsage, fmt.Errorf("resolving working directory: %w", err))
			}
		}
		out = filepath.Join(wd, out)
	}
	r.res.OutputFolder = filepath.Clean(out)
	r.res.Name = filepath.Base(r.res.OutputFolder)

	if err := s.fs.MkdirAll(s.stagingRoot, 0700); err != nil {
		return stepErr(StateValidating, ErrPromote, fmt.Errorf("creating staging root %s: %w", s.stagingRoot, err))
	}
	r.res.StagingPath = filepath.Join(s.stagingRoot, s.token())

	exists, err := afero.Exists(s.fs, r.res.OutputFolder)
	if err != nil {
		return stepErr(StateValidating, ErrDestinationExists, fmt.Errorf("checking %s: %w", r.res.OutputFolder, err))
	}
	if !exists {
		return nil
	}
	if !r.req.Force {
		return stepErr(StateValidating, ErrDestinationExists, fmt.Errorf("%s already exists, use --force to replace it", r.res.OutputFolder))
	}

	s.log.Debug().Str("path", r.res.OutputFolder).Msg("removing existing destination")
	if err := s.fs.RemoveAll(r.res.OutputFolder); err != nil {
		return stepErr(StateValidating, ErrDestinationExists, fmt.Errorf("removing %s: %w", r.res.OutputFolder, err))
	}
	return nil
}

func (s *Scaffolder) fetch(ctx context.Context, r *run) error {
	rel, err := s.releases.Fetch(ctx, r.sel)
	if err != nil {
		return err
	}
	r.res.Release = rel
	s.log.Debug().Str("tag", rel.TagName).Str("zipball", rel.ZipballURL).Msg("release resolved")
	return nil
}

func (s *Scaffolder) extract(ctx context.Context, r *run) error {
	return s.archives.FetchAndExtract(ctx, r.res.Release.ZipballURL, r.res.StagingPath, stripComponents)
}

func (s *Scaffolder) patch(_ context.Context, r *run) error {
	id, err := s.identity()
	if err != nil {
		return err
	}
	r.res.Author = platform.Author(id, s.authorName, s.authorEmail)

	path := filepath.Join(r.res.OutputFolder, manifest.FileName)
	pr, err := manifest.PatchFile(s.fs, path, manifest.Patch{Name: r.res.Name, Author: r.res.Author})
	if err != nil {
		return err
	}
	for _, issue := range pr.Issues {
		s.log.Debug().Str("path", issue.Path).Str("issue", issue.Message).Msg("package.json schema issue")
	}
	r.res.PreviousName = pr.PreviousName
	return nil
}
