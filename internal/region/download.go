package region

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/sells-group/vetverify/internal/fetcher"
)

// downloadTemp saves url into a fresh directory under tempDir. The returned
// cleanup removes the directory and everything extracted into it.
func downloadTemp(ctx context.Context, f fetcher.Fetcher, region, url, tempDir, filename string) (string, string, func(), error) {
	dir, err := os.MkdirTemp(tempDir, region+"-*")
	if err != nil {
		return "", "", func() {}, eris.Wrapf(err, "%s: create temp dir", region)
	}
	cleanup := func() { _ = os.RemoveAll(dir) }

	path := filepath.Join(dir, filename)
	if _, err := f.DownloadToFile(ctx, url, path); err != nil {
		cleanup()
		return "", "", func() {}, fetchErr(region, url, err)
	}
	return dir, path, cleanup, nil
}
