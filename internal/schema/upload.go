package schema

import (
	"io"
	"mime/multipart"

	"github.com/goccy/go-json"
)

// Upload is a file received through a multipart form.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64

	header *multipart.FileHeader
}

func NewUpload(fh *multipart.FileHeader) *Upload {
	return &Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		header:      fh,
	}
}

// Open returns the file contents; the caller closes it.
func (u *Upload) Open() (multipart.File, error) {
	return u.header.Open()
}

// Bytes reads the whole file.
func (u *Upload) Bytes() ([]byte, error) {
	f, err := u.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(f)
}

func (u *Upload) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.Filename)
}
