package scaffold_test

import (
	"context"
	"net/http"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/afero"

	"github.com/spark-development/puzzle-cli/internal/archive"
	"github.com/spark-development/puzzle-cli/internal/platform"
	"github.com/spark-development/puzzle-cli/internal/release"
	"github.com/spark-development/puzzle-cli/internal/scaffold"
	"github.com/spark-development/puzzle-cli/internal/testutil"
)

const wrapper = "spark-development-puzzle-framework-sample-1a2b3c4/"

func sampleEntries() []testutil.Entry {
	return []testutil.Entry{
		{Name: wrapper},
		{Name: wrapper + "package.json", Body: `{"name":"puzzle-framework-sample","version":"1.0.0","author":"Spark Development","scripts":{"start":"node src/index.js"}}`},
		{Name: wrapper + "src/"},
		{Name: wrapper + "src/index.js", Body: "require('puzzle-framework')\n"},
		{Name: wrapper + "bin/start.sh", Body: "#!/bin/sh\nnode src/index.js\n", Mode: 0755},
	}
}

const patchedManifest = `{
  "name": "demo",
  "version": "1.0.0",
  "author": "alice <alice@localhost>",
  "scripts": {
    "start": "node src/index.js"
  }
}
`

var _ = Describe("Project workflow", func() {
	var (
		gh      *testutil.GitHub
		work    string
		staging string
		s       *scaffold.Scaffolder
		ctx     context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		gh = testutil.NewGitHub(testutil.Zip(sampleEntries()...))
		DeferCleanup(gh.Close)

		root := GinkgoT().TempDir()
		work = filepath.Join(root, "work")
		staging = filepath.Join(root, "staging")
		Expect(os.MkdirAll(work, 0755)).To(Succeed())

		fs := afero.NewOsFs()
		releases := release.New(release.WithHTTPClient(gh.Client()), release.WithAPIBase(gh.URL()))
		archives := archive.New(fs, archive.WithHTTPClient(gh.Client()))
		s = scaffold.New(fs, releases, archives,
			scaffold.WithStagingRoot(staging),
			scaffold.WithIdentity(func() (platform.Identity, error) {
				return platform.Identity{Username: "alice"}, nil
			}),
		)
	})

	run := func(req scaffold.Request) (*scaffold.Result, error) {
		req.WorkDir = work
		return s.Run(ctx, req)
	}

	It("creates the project and patches package.json", func() {
		res, err := run(scaffold.Request{Folder: "demo"})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.State).To(Equal(scaffold.StateDone))
		Expect(res.OutputFolder).To(Equal(filepath.Join(work, "demo")))

		data, err := os.ReadFile(filepath.Join(work, "demo", "package.json"))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(Equal(patchedManifest))

		Expect(filepath.Join(work, "demo", "src", "index.js")).To(BeARegularFile())
		Expect(filepath.Join(work, "demo", wrapper)).NotTo(BeAnExistingFile())

		Expect(gh.MetadataPaths()).To(Equal([]string{
			"/repos/spark-development/puzzle-framework-sample/releases/latest",
		}))
	})

	It("leaves nothing behind in the staging root", func() {
		_, err := run(scaffold.Request{Folder: "demo"})
		Expect(err).NotTo(HaveOccurred())

		entries, err := os.ReadDir(staging)
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(BeEmpty())
	})

	It("requests a tagged release when a version is given", func() {
		_, err := run(scaffold.Request{Folder: "demo", Version: "2.3.0"})
		Expect(err).NotTo(HaveOccurred())
		Expect(gh.MetadataPaths()).To(ConsistOf(
			"/repos/spark-development/puzzle-framework-sample/releases/tags/v2.3.0",
		))
	})

	It("uses the lite sample repository", func() {
		_, err := run(scaffold.Request{Folder: "demo", Lite: true})
		Expect(err).NotTo(HaveOccurred())
		Expect(gh.MetadataPaths()).To(ConsistOf(
			"/repos/spark-development/puzzle-framework-lite-sample/releases/latest",
		))
	})

	It("extracts gzip tarballs as well", func() {
		gh.SetArchive(testutil.TarGz(sampleEntries()...))

		_, err := run(scaffold.Request{Folder: "demo"})
		Expect(err).NotTo(HaveOccurred())

		data, err := os.ReadFile(filepath.Join(work, "demo", "package.json"))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(Equal(patchedManifest))
	})

	Context("when the destination exists", func() {
		BeforeEach(func() {
			Expect(os.MkdirAll(filepath.Join(work, "demo"), 0755)).To(Succeed())
			Expect(os.WriteFile(filepath.Join(work, "demo", "notes.txt"), []byte("keep"), 0644)).To(Succeed())
		})

		It("refuses without force and makes no HTTP request", func() {
			_, err := run(scaffold.Request{Folder: "demo"})
			Expect(err).To(MatchError(scaffold.ErrDestinationExists))
			Expect(gh.Requests()).To(BeZero())
			Expect(filepath.Join(work, "demo", "notes.txt")).To(BeARegularFile())
		})

		It("replaces it with force, and a second forced run gives the same tree", func() {
			_, err := run(scaffold.Request{Folder: "demo", Force: true})
			Expect(err).NotTo(HaveOccurred())
			Expect(filepath.Join(work, "demo", "notes.txt")).NotTo(BeAnExistingFile())

			first, err := os.ReadFile(filepath.Join(work, "demo", "package.json"))
			Expect(err).NotTo(HaveOccurred())

			_, err = run(scaffold.Request{Folder: "demo", Force: true})
			Expect(err).NotTo(HaveOccurred())
			second, err := os.ReadFile(filepath.Join(work, "demo", "package.json"))
			Expect(err).NotTo(HaveOccurred())
			Expect(second).To(Equal(first))
		})
	})

	It("fails with a fetch error when the release is missing", func() {
		gh.FailMetadata(http.StatusNotFound)

		res, err := run(scaffold.Request{Folder: "demo"})
		Expect(err).To(MatchError(scaffold.ErrFetch))
		Expect(err.Error()).To(ContainSubstring("release not found"))
		Expect(res.State).To(Equal(scaffold.StateFailed))
		Expect(filepath.Join(work, "demo")).NotTo(BeAnExistingFile())
	})

	It("fails extraction for an archive that is not zip or tar.gz", func() {
		gh.SetArchive([]byte("this is not an archive"))

		_, err := run(scaffold.Request{Folder: "demo"})
		var se *scaffold.StepError
		Expect(err).To(BeAssignableToTypeOf(se))
		Expect(err).To(MatchError(scaffold.ErrFetch))
		se = err.(*scaffold.StepError)
		Expect(se.State).To(Equal(scaffold.StateExtracting))
	})

	It("reports a usage error before touching anything", func() {
		_, err := run(scaffold.Request{Folder: "", Force: true})
		Expect(err).To(MatchError(scaffold.ErrUsage))
		Expect(gh.Requests()).To(BeZero())
		Expect(staging).NotTo(BeAnExistingFile())
	})
})
