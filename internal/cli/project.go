package cli

import (
	"context"
	"errors"

	"github.com/spark-development/puzzle-cli/internal/archive"
	"github.com/spark-development/puzzle-cli/internal/command"
	"github.com/spark-development/puzzle-cli/internal/config"
	"github.com/spark-development/puzzle-cli/internal/logging"
	"github.com/spark-development/puzzle-cli/internal/release"
	"github.com/spark-development/puzzle-cli/internal/runtime"
	"github.com/spark-development/puzzle-cli/internal/scaffold"
	"github.com/spark-development/puzzle-cli/internal/ui"
	"github.com/spf13/afero"
)

// projectCommand installs a sample project:
//
//	puzzle project <folder> [--lite|-l] [--force|-f] [--version|-v <version>]
type projectCommand struct {
	options *command.OptionRegistry
	fs      afero.Fs
	store   func() *config.Store
	node    runtime.Detector
}

func newProjectCommand() *projectCommand {
	opts := command.NewOptionRegistry()
	opts.Add("lite", "Lite version of the framework", command.TypeBoolean, "l", false)
	opts.Add("force", "Force the project creation", command.TypeBoolean, "f", false)
	opts.Add("version", "The version you want to install (without the v prefix)", command.TypeString, "v", release.Latest)

	return &projectCommand{
		options: opts,
		fs:      afero.NewOsFs(),
		store:   config.Load,
	}
}

func (c *projectCommand) Name() string        { return "project" }
func (c *projectCommand) Description() string { return "Project template install command" }

func (c *projectCommand) Options() *command.OptionRegistry { return c.options }

func (c *projectCommand) Run(ctx context.Context, inv command.Invocation) error {
	rep := ui.New(inv.Out, inv.Err, inv.NoColor)
	settings := c.store().Settings()
	log := logging.Logger

	releases := release.New(
		release.WithAPIBase(settings.APIBase),
		release.WithOwner(settings.Owner),
		release.WithProject(settings.Project),
		release.WithToken(settings.GitHubToken),
	)
	archives := archive.New(c.fs,
		archive.WithHTTPClient(releases.HTTPClient()),
		archive.WithToken(settings.GitHubToken),
		archive.WithProgress(inv.Err),
		archive.WithLogger(log),
	)
	s := scaffold.New(c.fs, releases, archives,
		scaffold.WithStagingRoot(settings.StagingDir),
		scaffold.WithAuthor(settings.AuthorName, settings.AuthorEmail),
		scaffold.WithLogger(log),
	)

	res, err := s.Run(ctx, scaffold.Request{
		Folder:  inv.Arg(0),
		Lite:    inv.Options.Bool("lite"),
		Force:   inv.Options.Bool("force"),
		Version: inv.Options.String("version"),
	})
	if err != nil {
		switch {
		case errors.Is(err, scaffold.ErrUsage) && inv.Arg(0) == "":
			rep.Error("Specify the project folder")
		case errors.Is(err, scaffold.ErrDestinationExists):
			rep.Error("Destination folder already exists. Either use --force (-f) or delete the existing project.")
		}
		rep.Error("Unable to create the project!")
		log.Debug().Err(err).Str("staging", res.StagingPath).Msg("project creation failed")
		return err
	}

	log.Debug().Str("release", res.Release.TagName).Str("previous_name", res.PreviousName).Msg("manifest patched")
	rep.OK("Project installed here: %s", res.OutputFolder)
	rep.OK("Please run `npm install` inside the project to install all the dependencies.")

	tc := c.node.Detect(ctx)
	log.Debug().Str("node", tc.Node).Str("node_version", tc.NodeVersion).Str("npm", tc.NPM).Msg("node toolchain")
	if !tc.Ready() {
		rep.Info("Node.js and npm were not found on PATH. Install them before running the project.")
	}
	return nil
}
