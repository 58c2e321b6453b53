package product

import (
	"errors"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pankajredekar/shopadmin/internal/validate"
)

const (
	maxUploadBody = 64 << 20
	maxFormMemory = 32 << 20
)

// formReader reads typed fields from a parsed multipart or urlencoded body.
// Values that do not parse are recorded in errs and read as absent.
type formReader struct {
	values url.Values
	files  map[string][]*multipart.FileHeader
	errs   validate.FieldErrors
}

func readForm(w http.ResponseWriter, r *http.Request) (*formReader, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)

	err := r.ParseMultipartForm(maxFormMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse form: %w", err)
	}

	f := &formReader{
		values: r.PostForm,
		errs:   validate.FieldErrors{},
	}
	if r.MultipartForm != nil {
		f.files = r.MultipartForm.File
	}
	return f, nil
}

// lookup accepts both key and key[]
func (f *formReader) lookup(key string) ([]string, bool) {
	for _, k := range []string{key, key + "[]"} {
		if v, ok := f.values[k]; ok && len(v) > 0 {
			return v, true
		}
	}
	return nil, false
}

func (f *formReader) str(key string) string {
	v, _ := f.lookup(key)
	if len(v) == 0 {
		return ""
	}
	return v[0]
}

func (f *formReader) strPtr(key string) *string {
	v, ok := f.lookup(key)
	if !ok {
		return nil
	}
	s := v[0]
	return &s
}

// present returns the trimmed value, recording a required error when blank
func (f *formReader) present(key string) (string, bool) {
	v, ok := f.lookup(key)
	if !ok {
		return "", false
	}
	s := strings.TrimSpace(v[0])
	if s == "" {
		f.errs.Set(key, validate.Required(key))
		return "", false
	}
	return s, true
}

func (f *formReader) floatPtr(key string) *float64 {
	s, ok := f.present(key)
	if !ok {
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(n, 0) || math.IsNaN(n) {
		f.errs.Set(key, validate.Number(key))
		return nil
	}
	return &n
}

func (f *formReader) intPtr(key string) *int {
	s, ok := f.present(key)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		f.errs.Set(key, validate.Integer(key))
		return nil
	}
	return &n
}

func (f *formReader) uintPtr(key string) *uint {
	s, ok := f.present(key)
	if !ok {
		return nil
	}
	n, err := strconv.ParseUint(s, 10, 0)
	if err != nil {
		f.errs.Set(key, validate.Invalid(key))
		return nil
	}
	id := uint(n)
	return &id
}

// uints keeps positions: a value that does not parse reads as 0
func (f *formReader) uints(key string) []uint {
	v, ok := f.lookup(key)
	if !ok {
		return nil
	}
	ids := make([]uint, len(v))
	for i, s := range v {
		n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 0)
		if err == nil {
			ids[i] = uint(n)
		}
	}
	return ids
}

// images reads every file under key, stopping short of oversized content
func (f *formReader) images(key string) ([]ImageUpload, error) {
	headers := append(append([]*multipart.FileHeader(nil), f.files[key]...), f.files[key+"[]"]...)
	uploads := make([]ImageUpload, 0, len(headers))
	for _, fh := range headers {
		file, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open upload %s: %w", fh.Filename, err)
		}
		data, err := io.ReadAll(io.LimitReader(file, MaxImageSize+1))
		file.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read upload %s: %w", fh.Filename, err)
		}
		uploads = append(uploads, ImageUpload{
			Filename: fh.Filename,
			Size:     fh.Size,
			Data:     data,
		})
	}
	return uploads, nil
}

func parseCreateRequest(w http.ResponseWriter, r *http.Request) (*CreateProductRequest, error) {
	f, err := readForm(w, r)
	if err != nil {
		return nil, err
	}

	images, err := f.images("images")
	if err != nil {
		return nil, err
	}

	req := &CreateProductRequest{
		Name:         f.str("name"),
		Price:        f.floatPtr("price"),
		Stock:        f.intPtr("stock"),
		Status:       strings.TrimSpace(f.str("status")),
		CategoryID:   f.uintPtr("category_id"),
		Images:       images,
		PrimaryImage: f.intPtr("primary_image"),
	}
	req.BindErrors = f.errs
	return req, nil
}

func parseUpdateRequest(w http.ResponseWriter, r *http.Request) (*UpdateProductRequest, error) {
	f, err := readForm(w, r)
	if err != nil {
		return nil, err
	}

	images, err := f.images("images")
	if err != nil {
		return nil, err
	}

	req := &UpdateProductRequest{
		Name:         f.strPtr("name"),
		Price:        f.floatPtr("price"),
		Stock:        f.intPtr("stock"),
		Status:       f.strPtr("status"),
		CategoryID:   f.uintPtr("category_id"),
		Images:       images,
		PrimaryImage: f.intPtr("primary_image"),
		DeleteImages: f.uints("delete_images"),
	}
	if req.Status != nil {
		status := strings.TrimSpace(*req.Status)
		req.Status = &status
	}
	req.BindErrors = f.errs
	return req, nil
}
