package main

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const maxUploadBytes = 10 << 20

var errUnsupportedImage = errors.New("only jpg, jpeg and png images are accepted")

// validImageUpload accepts a file when both its extension and its declared
// content type look like a jpg/jpeg/png image. The bytes themselves are not
// sniffed.
func validImageUpload(filename, contentType string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg", ".png":
	default:
		return false
	}

	switch contentType {
	case "image/jpeg", "image/png":
		return true
	default:
		return false
	}
}

// uploadFileName prefixes the base name with a millisecond timestamp so
// repeated uploads of the same file never collide.
func uploadFileName(now time.Time, original string) string {
	return fmt.Sprintf("%d-%s", now.UnixMilli(), filepath.Base(original))
}

// saveUploadedFile persists the named multipart file under
// <UploadDir>/<category>/ and returns the public /uploads path. A missing file
// field returns (nil, nil) so handlers can treat the upload as optional.
func (app *application) saveUploadedFile(r *http.Request, field, category string) (*string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	if !validImageUpload(header.Filename, header.Header.Get("Content-Type")) {
		return nil, errUnsupportedImage
	}

	name := uploadFileName(time.Now(), header.Filename)

	dir := filepath.Join(app.config.UploadDir, category)
	err = os.MkdirAll(dir, 0o755)
	if err != nil {
		return nil, err
	}

	err = writeFile(file, filepath.Join(dir, name))
	if err != nil {
		return nil, err
	}

	path := "/uploads/" + category + "/" + name
	return &path, nil
}

func writeFile(src multipart.File, dst string) error {
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, src)
	return err
}
