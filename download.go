package clipsave

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// A Download is the byte sink for one save-to-disk operation: it tracks
// progress, owns a cancellable context, and writes the final file under
// its target directory.
type Download interface {
	// AddDownloadedBytes increases how many bytes have been successfully downloaded so far.
	AddDownloadedBytes(n int)

	// AddExpectedBytes increases how many bytes are expected to be downloaded.
	AddExpectedBytes(n int)

	// Cancel the Download, stopping any in-progress I/O activity.
	Cancel()

	// Close cleans up any resources associated with the Download.
	Close() error

	// Context is the cancellable context of this Download.
	Context() context.Context

	CreateFile(filename string) (io.WriteCloser, error)

	// Progress returns the downloaded and expected bytes of the download.
	Progress() (int, int)

	// SaveHTTPRequest will execute the http.Request with Context() and then download the resulting stream like SaveStream.
	SaveHTTPRequest(filename string, req *http.Request) error

	// SaveStream will download the stream to the named file, calling AddDownloadedBytes as necessary.
	SaveStream(filename string, stream io.Reader) error

	// SaveURL will make a GET request to the URL and then download the resulting stream like SaveStream.
	SaveURL(filename string, url string) error

	// Write will ignore the data but will send the byte count to AddDownloadedBytes. Allows progress tracking using
	// io.MultiWriter (but ensure the Download is the last writer to avoid counting failed writes).
	Write(p []byte) (n int, err error)
}

type download struct {
	ctx              context.Context
	cancel           context.CancelFunc
	client           *http.Client
	progressCallback func(int, int)
	targetDir        string
	expectedBytes    int
	downloadedBytes  int
}

func (d *download) AddDownloadedBytes(n int) {
	d.downloadedBytes += n
	if d.progressCallback != nil {
		d.progressCallback(d.Progress())
	}
}

func (d *download) AddExpectedBytes(n int) {
	d.expectedBytes += n
	if d.progressCallback != nil {
		d.progressCallback(d.Progress())
	}
}

func (d *download) Cancel() {
	d.cancel()
}

func (d *download) Close() error {
	d.cancel()
	return nil
}

func (d *download) Context() context.Context {
	return d.ctx
}

func (d *download) CreateFile(filename string) (io.WriteCloser, error) {
	targetPath := filepath.Join(d.targetDir, SanitizeFilename(filename))
	if err := os.MkdirAll(filepath.Dir(targetPath), 0775); err != nil {
		return nil, err
	}
	return os.Create(targetPath)
}

func (d *download) Progress() (int, int) {
	return d.downloadedBytes, d.expectedBytes
}

func (d *download) SaveHTTPRequest(filename string, req *http.Request) error {
	if req == nil {
		return fmt.Errorf("nil request")
	}
	req = req.WithContext(d.Context())
	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("download failed: unexpected status %d", resp.StatusCode)
	}
	if resp.ContentLength > 0 {
		d.AddExpectedBytes(int(resp.ContentLength))
	}
	return d.SaveStream(filename, resp.Body)
}

func (d *download) SaveStream(filename string, stream io.Reader) error {
	f, err := d.CreateFile(filename)
	if err != nil {
		return fmt.Errorf("failed to open target file: %w", err)
	}
	defer f.Close()

	_, err = io.Copy(io.MultiWriter(f, d), &readerContext{ctx: d.ctx, r: stream})
	if err != nil {
		return fmt.Errorf("failed to save stream: %w", err)
	}
	return nil
}

func (d *download) SaveURL(filename string, url string) error {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return d.SaveHTTPRequest(filename, req)
}

func (d *download) Write(p []byte) (n int, err error) {
	n = len(p)
	d.AddDownloadedBytes(n)
	return n, nil
}

type DownloadBuilder interface {
	Build() (Download, error)
	WithContext(ctx context.Context) DownloadBuilder
	WithClient(client *http.Client) DownloadBuilder
	WithProgressCallback(f func(downloaded int, expected int)) DownloadBuilder
	WithTargetDir(dir string) DownloadBuilder
}

type downloadBuilder struct {
	ctx              context.Context
	client           *http.Client
	progressCallback func(int, int)
	targetDir        string
}

func NewDownloadBuilder() DownloadBuilder {
	return &downloadBuilder{
		ctx:       context.Background(),
		client:    http.DefaultClient,
		targetDir: ".",
	}
}

func (b *downloadBuilder) Build() (Download, error) {
	d := download{}
	d.ctx, d.cancel = context.WithCancel(b.ctx)
	d.client = b.client
	d.progressCallback = b.progressCallback
	d.targetDir = b.targetDir
	return &d, nil
}

func (b *downloadBuilder) WithContext(ctx context.Context) DownloadBuilder {
	b.ctx = ctx
	return b
}

func (b *downloadBuilder) WithClient(client *http.Client) DownloadBuilder {
	if client != nil {
		b.client = client
	}
	return b
}

func (b *downloadBuilder) WithProgressCallback(f func(int, int)) DownloadBuilder {
	b.progressCallback = f
	return b
}

func (b *downloadBuilder) WithTargetDir(dir string) DownloadBuilder {
	b.targetDir = dir
	return b
}

// readerContext aborts reads once the download's context is cancelled,
// since io.Copy itself cannot be interrupted.
type readerContext struct {
	ctx context.Context
	r   io.Reader
}

func (r *readerContext) Read(p []byte) (n int, err error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}
