package archive

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

const userAgent = "puzzle-cli"

// Fetcher downloads and extracts archives onto an afero filesystem.
type Fetcher struct {
	fs         afero.Fs
	httpClient *http.Client
	token      string
	progress   io.Writer
	log        zerolog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient sets a custom HTTP client (useful for testing).
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.httpClient = c
	}
}

// WithToken sends a GitHub token with the download request.
func WithToken(token string) Option {
	return func(f *Fetcher) {
		f.token = token
	}
}

// WithProgress writes a percentage indicator to w while downloading when the
// server announces a content length.
func WithProgress(w io.Writer) Option {
	return func(f *Fetcher) {
		f.progress = w
	}
}

// WithLogger sets the debug logger.
func WithLogger(l zerolog.Logger) Option {
	return func(f *Fetcher) {
		f.log = l
	}
}

// New creates a Fetcher writing to fs.
func New(fs afero.Fs, opts ...Option) *Fetcher {
	f := &Fetcher{
		fs:         fs,
		httpClient: http.DefaultClient,
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchAndExtract downloads url next to dest, extracts it into dest with
// strip leading components removed, and deletes the downloaded file.
func (f *Fetcher) FetchAndExtract(ctx context.Context, url, dest string, strip int) error {
	archivePath, err := f.Download(ctx, url, filepath.Dir(dest))
	if err != nil {
		return err
	}
	defer f.fs.Remove(archivePath)

	return Extract(f.fs, archivePath, dest, strip, f.log)
}

// Download saves url into a new temporary file inside dir and returns its path.
func (f *Fetcher) Download(ctx context.Context, url, dir string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("creating download request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	if f.token != "" {
		req.Header.Set("Authorization", "token "+f.token)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("downloading %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download returned status %d", resp.StatusCode)
	}

	if err := f.fs.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating download directory: %w", err)
	}
	out, err := afero.TempFile(f.fs, dir, "download-*.archive")
	if err != nil {
		return "", fmt.Errorf("creating download file: %w", err)
	}
	name := out.Name()

	downloaded, err := f.copyBody(out, resp)
	if closeErr := out.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("closing download file: %w", closeErr)
	}
	if err != nil {
		if rmErr := f.fs.Remove(name); rmErr != nil {
			f.log.Debug().Err(rmErr).Str("file", name).Msg("removing partial download")
		}
		return "", err
	}

	f.log.Debug().Str("url", url).Str("file", name).Int64("bytes", downloaded).Msg("archive downloaded")
	return name, nil
}

func (f *Fetcher) copyBody(out io.Writer, resp *http.Response) (int64, error) {
	total := resp.ContentLength
	var downloaded int64
	lastPercent := -1

	buf := make([]byte, 32*1024)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, writeErr := out.Write(buf[:n]); writeErr != nil {
				return downloaded, fmt.Errorf("writing download: %w", writeErr)
			}
			downloaded += int64(n)
			if f.progress != nil && total > 0 {
				percent := int(downloaded * 100 / total)
				if percent != lastPercent {
					fmt.Fprintf(f.progress, "\rDownloading... %d%%", percent)
					lastPercent = percent
				}
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return downloaded, fmt.Errorf("reading download stream: %w", readErr)
		}
	}
	if f.progress != nil && total > 0 {
		fmt.Fprintln(f.progress)
	}
	return downloaded, nil
}
