package media

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"wardrobe/internal/services"
)

// File is a user-supplied file with its declared content type.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Source is one of FilePicked, Dropped or Captured.
type Source interface {
	origin() string
}

// FilePicked is a file chosen through a file picker.
type FilePicked struct{ File File }

// Dropped is the file list of a drag-and-drop gesture; only the first file
// is used.
type Dropped struct{ Files []File }

// Captured is a still produced by the camera path.
type Captured struct{ File File }

func (FilePicked) origin() string { return "file-picker" }
func (Dropped) origin() string    { return "drop" }
func (Captured) origin() string   { return "camera" }

// Payload is a validated image ready for upload. Data is forwarded unchanged.
type Payload struct {
	Name        string
	ContentType string
	Data        []byte
	Origin      string
}

// Size renders the payload size for display.
func (p Payload) Size() string {
	return humanize.Bytes(uint64(len(p.Data)))
}

// Acquire validates src and produces exactly one payload.
func Acquire(src Source) (Payload, error) {
	var file File
	switch s := src.(type) {
	case FilePicked:
		file = s.File
	case Dropped:
		if len(s.Files) == 0 {
			return Payload{}, services.Wrap(services.ErrValidation, "acquire", "drop", "no file was dropped", nil)
		}
		file = s.Files[0]
	case Captured:
		file = s.File
	case nil:
		return Payload{}, services.Wrap(services.ErrValidation, "acquire", "", "no image source", nil)
	default:
		return Payload{}, services.Wrap(services.ErrValidation, "acquire", "", fmt.Sprintf("unsupported source %T", src), nil)
	}

	if !IsImageType(file.ContentType) {
		declared := file.ContentType
		if declared == "" {
			declared = "unknown"
		}
		return Payload{}, services.Wrap(services.ErrInvalidMediaType, "acquire", src.origin(),
			fmt.Sprintf("请选择图片文件 (%s is %s)", file.Name, declared), nil)
	}
	return Payload{
		Name:        file.Name,
		ContentType: file.ContentType,
		Data:        file.Data,
		Origin:      src.origin(),
	}, nil
}

// IsImageType reports whether a declared content type names an image.
func IsImageType(contentType string) bool {
	mediaType := strings.ToLower(strings.TrimSpace(contentType))
	if parsed, _, err := mime.ParseMediaType(mediaType); err == nil {
		mediaType = parsed
	}
	return strings.HasPrefix(mediaType, "image/")
}

// OpenFile reads path and declares its content type from the extension,
// falling back to content sniffing when the extension is unknown.
func OpenFile(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, services.Wrap(services.ErrValidation, "acquire", "open file", path, err)
	}
	return File{
		Name:        filepath.Base(path),
		ContentType: DeclaredType(path, data),
		Data:        data,
	}, nil
}

// DeclaredType derives the content type a browser would declare for a file.
func DeclaredType(name string, data []byte) string {
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); byExt != "" {
		return byExt
	}
	if len(data) == 0 {
		return ""
	}
	return http.DetectContentType(data)
}
