package product

import (
	"fmt"
	"net/http"

	"github.com/pankajredekar/shopadmin/internal/validate"
)

// MaxImageSize is the largest accepted image file
const MaxImageSize = 2048 * 1024

// imageFolder is where product images are kept in the store
const imageFolder = "products"

// sniffed content type to stored extension; covers jpeg, png, jpg and gif
var imageTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
}

// checkImages validates every upload, recording failures as images.<i>, and
// returns the extension each file is stored with.
func checkImages(fields validate.FieldErrors, images []ImageUpload) []string {
	exts := make([]string, len(images))
	for i, img := range images {
		key := fmt.Sprintf("images.%d", i)

		if img.Size > MaxImageSize || len(img.Data) > MaxImageSize {
			fields.Add(key, fmt.Sprintf("The %s may not be greater than %d kilobytes.", key, MaxImageSize/1024))
			continue
		}

		ext, ok := imageTypes[http.DetectContentType(img.Data)]
		if !ok {
			fields.Add(key, fmt.Sprintf("The %s must be a file of type: jpeg, png, jpg, gif.", key))
			continue
		}
		exts[i] = ext
	}
	return exts
}
